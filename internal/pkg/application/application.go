package application

import (
	"context"
	"fmt"

	"github.com/florax/florax-dashboard/internal/pkg/application/auth"
	"github.com/florax/florax-dashboard/internal/pkg/application/dashboard"
	"github.com/florax/florax-dashboard/internal/pkg/application/session"
	"github.com/florax/florax-dashboard/internal/pkg/application/views"
	"github.com/florax/florax-dashboard/internal/pkg/infrastructure/logging"
	"github.com/florax/florax-dashboard/pkg/client"
)

// App wires the session, the api client and the dashboard sections together.
type App struct {
	Config    Config
	Session   *session.Session
	Client    client.APIClient
	Auth      auth.Service
	Service   dashboard.Service
	Dashboard *views.Dashboard
	Poller    views.Poller
}

// New builds an App from cfg. onUnauthorized is called whenever the backend
// rejects the session token or a protected section is mounted without one.
func New(ctx context.Context, cfg Config, onUnauthorized func(context.Context)) (*App, error) {
	store, err := NewSessionStore(ctx, cfg.Session)
	if err != nil {
		return nil, err
	}

	return NewWithStore(ctx, cfg, store, onUnauthorized)
}

func NewWithStore(ctx context.Context, cfg Config, store session.Store, onUnauthorized func(context.Context)) (*App, error) {
	s, err := session.New(ctx, store)
	if err != nil {
		return nil, err
	}

	c := client.New(
		cfg.API.BaseURL,
		client.WithTimeout(cfg.API.Timeout),
		client.WithTokenSource(s),
		client.WithUnauthorizedHandler(client.UnauthorizedHandler(onUnauthorized)),
	)

	svc := dashboard.New(c)
	d := views.New(svc, s, onUnauthorized, views.Config{
		RecentAlertsLimit: cfg.Dashboard.RecentAlertsLimit,
	})

	return &App{
		Config:    cfg,
		Session:   s,
		Client:    c,
		Auth:      auth.New(c, s),
		Service:   svc,
		Dashboard: d,
		Poller:    views.NewPoller(d, s, cfg.Dashboard.RefreshInterval),
	}, nil
}

func NewSessionStore(ctx context.Context, cfg SessionConfig) (session.Store, error) {
	log := logging.GetLoggerFromContext(ctx)

	switch cfg.Store {
	case StoreRedis:
		log.Debug().Str("addr", cfg.Redis.Addr).Msg("using redis session store")
		return session.NewRedisStore(ctx, cfg.Redis)
	case StoreFile, "":
		path := cfg.File
		if path == "" {
			path = session.DefaultFilePath(session.DefaultKey)
		}
		log.Debug().Str("path", path).Msg("using file session store")
		return session.NewFileStore(path), nil
	}

	return nil, fmt.Errorf("%w: unknown session store %q", ErrInvalidConfig, cfg.Store)
}

func (a *App) Start(ctx context.Context) {
	a.Poller.Start(ctx)
}

func (a *App) Stop() {
	a.Poller.Stop()
}
