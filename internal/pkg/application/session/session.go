package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/florax/florax-dashboard/internal/pkg/infrastructure/logging"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

var ErrNoToken = errors.New("no session token")

// State is what subscribers are told whenever the token slot changes.
type State struct {
	Authenticated bool
	Subject       string
	ExpiresAt     time.Time
}

// Claims holds the parts of a JWT session token the client cares about.
// The signature is never verified here, that is the backend's job.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// Session owns the single persisted token slot of the application. The
// store is the source of truth, the in-memory copy only detects changes.
type Session struct {
	mu          sync.RWMutex
	store       Store
	token       string
	subscribers map[int]func(State)
	nextID      int
}

// New creates a session backed by store and restores any token it already holds.
func New(ctx context.Context, store Store) (*Session, error) {
	s := &Session{
		store:       store,
		subscribers: map[int]func(State){},
	}

	token, err := store.Load(ctx)
	if err != nil && !errors.Is(err, ErrNoToken) {
		return nil, fmt.Errorf("failed to load session token: %w", err)
	}

	s.token = token

	return s, nil
}

// Token reads the bearer token from the store on every call, so a sign-in or
// sign-out made by another process sharing the store is picked up.
func (s *Session) Token(ctx context.Context) (*oauth2.Token, bool) {
	token := s.current(ctx)
	if token == "" {
		return nil, false
	}

	t := &oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}

	if c, ok := parseClaims(token); ok {
		t.Expiry = c.ExpiresAt
	}

	return t, true
}

func (s *Session) Authenticated() bool {
	_, ok := s.Token(context.Background())
	return ok
}

// current loads the stored token and notifies subscribers when it differs
// from the last one seen. A failing store falls back to the last known token.
func (s *Session) current(ctx context.Context) string {
	token, err := s.store.Load(ctx)
	if err != nil && !errors.Is(err, ErrNoToken) {
		log := logging.GetLoggerFromContext(ctx)
		log.Error().Err(err).Msg("could not read session token, using last known value")

		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.token
	}

	s.mu.Lock()
	changed := token != s.token
	s.token = token
	s.mu.Unlock()

	if changed {
		s.notify()
	}

	return token
}

func (s *Session) Set(ctx context.Context, token string) error {
	if token == "" {
		return ErrNoToken
	}

	err := s.store.Save(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to save session token: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	log := logging.GetLoggerFromContext(ctx)
	log.Debug().Msg("session token stored")

	s.notify()
	return nil
}

// Clear drops the token from memory and from the store. The in-memory token
// is dropped even if the store fails.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	hadToken := s.token != ""
	s.token = ""
	s.mu.Unlock()

	err := s.store.Delete(ctx)

	if hadToken {
		log := logging.GetLoggerFromContext(ctx)
		log.Debug().Msg("session token cleared")
		s.notify()
	}

	if err != nil {
		return fmt.Errorf("failed to delete session token: %w", err)
	}

	return nil
}

func (s *Session) State() State {
	return stateOf(s.current(context.Background()))
}

// Claims decodes the subject and expiry of a JWT token without verifying it.
// Opaque tokens report ok == false.
func (s *Session) Claims() (Claims, bool) {
	token := s.current(context.Background())

	if token == "" {
		return Claims{}, false
	}

	return parseClaims(token)
}

// Subscribe registers fn to be called after every change of the token slot.
// The returned function removes the subscription.
func (s *Session) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *Session) notify() {
	s.mu.RLock()
	state := stateOf(s.token)
	subscribers := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subscribers = append(subscribers, fn)
	}
	s.mu.RUnlock()

	for _, fn := range subscribers {
		fn(state)
	}
}

func stateOf(token string) State {
	if token == "" {
		return State{}
	}

	state := State{Authenticated: true}
	if c, ok := parseClaims(token); ok {
		state.Subject = c.Subject
		state.ExpiresAt = c.ExpiresAt
	}

	return state
}

func parseClaims(token string) (Claims, bool) {
	claims := jwt.MapClaims{}

	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return Claims{}, false
	}

	c := Claims{}

	if sub, err := claims.GetSubject(); err == nil {
		c.Subject = sub
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}

	return c, true
}
