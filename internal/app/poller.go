package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkraev/parley/internal/core"
	"github.com/dkraev/parley/internal/domain"
)

// FetchFunc is one poll cycle's read of the authoritative message list.
type FetchFunc func(ctx context.Context) ([]domain.Message, error)

// Poller keeps one panel's thread eventually consistent with the backend.
// Ticks fire at a fixed cadence from start, not from cycle completion, so a
// slow fetch stalls only its own cycle. Stop is the hard lifetime boundary:
// once Stop returns, no cycle writes into the thread or the notifier again,
// in-flight fetches included.
type Poller struct {
	interval       time.Duration
	fetch          FetchFunc
	thread         *core.Thread
	notifier       core.PanelNotifier
	onUnauthorized func()

	mu      sync.Mutex
	stopped bool
	cancel  context.CancelFunc
}

// NewPoller builds a poller that does nothing until Start. Construct first,
// register the panel, then Start: a first cycle that immediately hits a
// terminal error must find the panel it is tearing down.
func NewPoller(
	interval time.Duration,
	fetch FetchFunc,
	thread *core.Thread,
	notifier core.PanelNotifier,
	onUnauthorized func(),
) *Poller {
	return &Poller{
		interval:       interval,
		fetch:          fetch,
		thread:         thread,
		notifier:       notifier,
		onUnauthorized: onUnauthorized,
	}
}

// Start fetches once immediately, then on every tick of the interval. A
// poller stopped before Start stays stopped.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	ctx, p.cancel = context.WithCancel(ctx)
	p.mu.Unlock()

	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		go p.cycle(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				go p.cycle(ctx)
			}
		}
	}()
}

// StartPoller is NewPoller followed by Start, for callers with no window
// between construction and launch.
func StartPoller(
	ctx context.Context,
	interval time.Duration,
	fetch FetchFunc,
	thread *core.Thread,
	notifier core.PanelNotifier,
	onUnauthorized func(),
) *Poller {
	p := NewPoller(interval, fetch, thread, notifier, onUnauthorized)
	p.Start(ctx)
	return p
}

// Stop tears the poller down synchronously. Idempotent.
func (p *Poller) Stop() { p.halt() }

// halt flips to stopped exactly once; the return value tells the caller
// whether it performed the transition.
func (p *Poller) halt() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return false
	}
	p.stopped = true
	if p.cancel != nil {
		p.cancel()
	}
	return true
}

// guarded runs f only while the poller is live, under the same lock Stop
// takes. This is what makes "no write after Stop" deterministic rather than
// best-effort.
func (p *Poller) guarded(f func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	f()
}

func (p *Poller) cycle(ctx context.Context) {
	msgs, err := p.fetch(ctx)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			return
		case errors.Is(err, domain.ErrUnauthorized):
			// Terminal: the session is gone. First transition wins; a
			// concurrent Stop means nobody is listening anymore.
			if p.halt() {
				p.onUnauthorized()
			}
			return
		case domain.IsNetwork(err):
			// Transient. Invisible to the user; next tick retries.
			log.Debug().Err(err).Str("module", "app.poller").Msg("poll fetch failed, will retry")
			return
		default:
			log.Warn().Err(err).Str("module", "app.poller").Msg("poll fetch failed")
			return
		}
	}

	p.guarded(func() {
		if p.thread.Reconcile(msgs) {
			p.notifier.NotifyMessages(p.thread.Snapshot())
		}
	})
}
