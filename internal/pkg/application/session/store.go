package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const DefaultKey string = "token"

// Store persists the session token under a single key.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

type fileStore struct {
	path string
}

// NewFileStore keeps the token in a single file readable only by the user.
func NewFileStore(path string) Store {
	return &fileStore{path: path}
}

// DefaultFilePath returns <user config dir>/florax/<key>.
func DefaultFilePath(key string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "florax", key)
}

func (f *fileStore) Load(_ context.Context) (string, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", err
	}

	token := strings.TrimSpace(string(b))
	if token == "" {
		return "", ErrNoToken
	}

	return token, nil
}

func (f *fileStore) Save(_ context.Context, token string) error {
	err := os.MkdirAll(filepath.Dir(f.path), 0o700)
	if err != nil {
		return err
	}

	return os.WriteFile(f.path, []byte(token), 0o600)
}

func (f *fileStore) Delete(_ context.Context) error {
	err := os.Remove(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

type memoryStore struct {
	mu    sync.Mutex
	token string
}

func NewMemoryStore(token string) Store {
	return &memoryStore{token: token}
}

func (m *memoryStore) Load(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token == "" {
		return "", ErrNoToken
	}
	return m.token, nil
}

func (m *memoryStore) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = token
	return nil
}

func (m *memoryStore) Delete(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = ""
	return nil
}
