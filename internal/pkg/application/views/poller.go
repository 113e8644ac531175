package views

import (
	"context"
	"sync"
	"time"

	"github.com/florax/florax-dashboard/internal/pkg/infrastructure/logging"
)

// Poller periodically refreshes the sections that have been mounted.
type Poller interface {
	Start(ctx context.Context)
	Stop()
}

type pollerImpl struct {
	dashboard *Dashboard
	tokens    TokenChecker
	interval  time.Duration

	mu      sync.Mutex
	done    chan struct{}
	stopped chan struct{}
}

// NewPoller returns a poller for d. Ticks are skipped while tokens reports no
// session. An interval of zero or less gives a poller whose Start and Stop do
// nothing.
func NewPoller(d *Dashboard, tokens TokenChecker, interval time.Duration) Poller {
	return &pollerImpl{
		dashboard: d,
		tokens:    tokens,
		interval:  interval,
	}
}

func (p *pollerImpl) Start(ctx context.Context) {
	if p.interval <= 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done != nil {
		return
	}

	p.done = make(chan struct{})
	p.stopped = make(chan struct{})

	go backgroundWorker(ctx, p, p.done, p.stopped)
}

// Stop blocks until the worker has exited. Stopping a poller that is not
// running does nothing.
func (p *pollerImpl) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done == nil {
		return
	}

	close(p.done)
	<-p.stopped

	p.done = nil
	p.stopped = nil
}

func backgroundWorker(ctx context.Context, p *pollerImpl, done <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	log := logging.GetLoggerFromContext(ctx)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if p.tokens != nil && !p.tokens.Authenticated() {
				log.Debug().Msg("no session token, skipping refresh")
				continue
			}
			refreshMounted(ctx, p.dashboard)
			log.Debug().Msgf("will refresh again in %s", p.interval)
		}
	}
}

func refreshMounted(ctx context.Context, d *Dashboard) {
	log := logging.GetLoggerFromContext(ctx)

	for _, v := range d.Mounted() {
		if err := v.Refresh(ctx); err != nil {
			log.Error().Err(err).Str("section", v.Name()).Msg("scheduled refresh failed")
		}
	}
}
