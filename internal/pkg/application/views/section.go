package views

import (
	"context"
	"sync"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/florax/florax-dashboard/internal/pkg/infrastructure/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("florax-dashboard/views")

type Status int

const (
	Idle Status = iota
	Loading
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result is the outcome of the latest applied load. On failure Data holds the
// section's empty value so renderers can show "no data" while Err says why.
type Result[T any] struct {
	Data T
	Err  error
}

func (r Result[T]) Failed() bool {
	return r.Err != nil
}

type Loader[T any] func(ctx context.Context) (T, error)

// Section is the state machine behind one dashboard section.
//
//	idle -> loading -> ready | failed
//
// Every load takes a sequence number and only the latest one may write its
// outcome, an older response arriving late is dropped.
type Section[T any] struct {
	mu sync.RWMutex

	name  string
	empty T
	load  Loader[T]

	status    Status
	result    Result[T]
	seq       uint64
	mounted   bool
	updatedAt time.Time
}

func NewSection[T any](name string, empty T, load Loader[T]) *Section[T] {
	return &Section[T]{
		name:   name,
		empty:  empty,
		load:   load,
		result: Result[T]{Data: empty},
	}
}

func (s *Section[T]) Name() string {
	return s.name
}

// Mount performs the initial fetch. Only the first call loads, later calls
// return the error of the current result without touching the backend.
func (s *Section[T]) Mount(ctx context.Context) error {
	s.mu.Lock()
	if s.mounted {
		err := s.result.Err
		s.mu.Unlock()
		return err
	}
	s.mounted = true
	s.mu.Unlock()

	return s.Refresh(ctx)
}

func (s *Section[T]) Mounted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mounted
}

// Refresh re-enters loading from any settled state and returns the error of
// this particular load, even when its outcome was discarded as stale.
func (s *Section[T]) Refresh(ctx context.Context) (err error) {
	ctx, span := tracer.Start(ctx, "refresh-"+s.name)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	s.mu.Lock()
	s.mounted = true
	s.seq++
	seq := s.seq
	s.status = Loading
	s.mu.Unlock()

	span.SetAttributes(attribute.Int64("sequence", int64(seq)))

	log := logging.GetLoggerFromContext(ctx).With().Str("section", s.name).Uint64("seq", seq).Logger()
	log.Debug().Msg("loading section")

	data, err := s.load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		log.Debug().Uint64("latest", s.seq).Msg("discarding stale response")
		return err
	}

	s.updatedAt = time.Now()

	if err != nil {
		log.Error().Err(err).Msg("failed to load section")
		s.status = Failed
		s.result = Result[T]{Data: s.empty, Err: err}
		return err
	}

	s.status = Ready
	s.result = Result[T]{Data: data}

	return nil
}

func (s *Section[T]) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Section[T]) Result() Result[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

func (s *Section[T]) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// Model is the JSON friendly snapshot of a section.
type Model[T any] struct {
	Name      string    `json:"name"`
	Status    Status    `json:"status"`
	Data      T         `json:"data"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

func (s *Section[T]) Model() Model[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := Model[T]{
		Name:      s.name,
		Status:    s.status,
		Data:      s.result.Data,
		UpdatedAt: s.updatedAt,
	}
	if s.result.Err != nil {
		m.Error = errorMessage(s.result.Err)
	}
	return m
}
