package application

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/florax/florax-dashboard/internal/pkg/application/session"
	"github.com/florax/florax-dashboard/internal/pkg/application/views"
	"github.com/joho/godotenv"
	yaml "gopkg.in/yaml.v2"
)

const DefaultBaseURL string = "http://localhost:8081/florax/api"

const (
	StoreFile  string = "file"
	StoreRedis string = "redis"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type APIConfig struct {
	BaseURL string        `yaml:"baseURL"`
	Timeout time.Duration `yaml:"timeout"`
}

type SessionConfig struct {
	Store string              `yaml:"store"`
	File  string              `yaml:"file"`
	Redis session.RedisConfig `yaml:"redis"`
}

type DashboardConfig struct {
	RecentAlertsLimit     int           `yaml:"recentAlertsLimit"`
	RecentIrrigationLimit int           `yaml:"recentIrrigationLimit"`
	RefreshInterval       time.Duration `yaml:"refreshInterval"`
}

type ServerConfig struct {
	ListenAddress string `yaml:"listenAddress"`
	Port          string `yaml:"port"`
}

type Config struct {
	API       APIConfig       `yaml:"api"`
	Session   SessionConfig   `yaml:"session"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Server    ServerConfig    `yaml:"server"`
}

func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
		},
		Session: SessionConfig{
			Store: StoreFile,
			File:  session.DefaultFilePath(session.DefaultKey),
			Redis: session.RedisConfig{
				Addr: "localhost:6379",
			},
		},
		Dashboard: DashboardConfig{
			RecentAlertsLimit:     views.DefaultRecentAlertsLimit,
			RecentIrrigationLimit: 10,
		},
		Server: ServerConfig{
			ListenAddress: "127.0.0.1",
			Port:          "8080",
		},
	}
}

// LoadConfiguration reads a yaml document on top of DefaultConfig.
func LoadConfiguration(data io.Reader) (*Config, error) {
	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Load reads the optional config file at path, then a .env file if there is
// one, and finally applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	c := &cfg

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open configuration file: %w", err)
		}
		defer f.Close()

		c, err = LoadConfiguration(f)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration from %s: %w", path, err)
		}
	}

	_ = godotenv.Load()

	if err := ApplyEnvironment(c, os.LookupEnv); err != nil {
		return nil, err
	}

	return c, c.Validate()
}

// ApplyEnvironment overrides cfg with any of the supported variables found
// through lookup.
func ApplyEnvironment(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, target *string) {
		if v, ok := lookup(name); ok && v != "" {
			*target = v
		}
	}

	str("FLORAX_API_URL", &cfg.API.BaseURL)
	str("FLORAX_SESSION_STORE", &cfg.Session.Store)
	str("FLORAX_SESSION_FILE", &cfg.Session.File)
	str("REDIS_ADDR", &cfg.Session.Redis.Addr)
	str("REDIS_PASSWORD", &cfg.Session.Redis.Password)
	str("LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	str("SERVICE_PORT", &cfg.Server.Port)

	if v, ok := lookup("REDIS_DB"); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: REDIS_DB %q is not a number", ErrInvalidConfig, v)
		}
		cfg.Session.Redis.DB = db
	}

	if v, ok := lookup("FLORAX_REFRESH_INTERVAL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: FLORAX_REFRESH_INTERVAL %q: %w", ErrInvalidConfig, v, err)
		}
		cfg.Dashboard.RefreshInterval = d
	}

	return nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("%w: api.baseURL is required", ErrInvalidConfig)
	}

	switch c.Session.Store {
	case StoreFile, StoreRedis:
	default:
		return fmt.Errorf("%w: unknown session store %q", ErrInvalidConfig, c.Session.Store)
	}

	if c.API.Timeout < 0 || c.Dashboard.RefreshInterval < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidConfig)
	}

	return nil
}
