package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkraev/parley/internal/core"
	"github.com/dkraev/parley/internal/domain"
)

// Panel is the live state of one open room view: who opened it, the room,
// the roster as loaded at open time, the message thread and the poll cycle
// that feeds it.
type Panel struct {
	Room   domain.Room
	User   domain.Identity
	Roster domain.Roster
	Thread *core.Thread
	Poller *Poller
}

// Registry binds a client session to its single open panel. Binding a new
// panel over an existing one, or unbinding, stops the old poll cycle before
// anything else happens — at most one cycle per session, and never one that
// outlives its panel.
type Registry struct {
	mu     sync.RWMutex
	panels map[core.SessionID]*Panel
}

func NewRegistry() *Registry {
	return &Registry{panels: make(map[core.SessionID]*Panel)}
}

func (r *Registry) Bind(sid core.SessionID, p *Panel) {
	r.mu.Lock()
	if prev := r.panels[sid]; prev != nil {
		// The old cycle must be fully stopped before the new panel exists.
		prev.Poller.Stop()
		log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(prev.Room.ID)).Msg("replaced open panel")
	}
	r.panels[sid] = p
	r.mu.Unlock()

	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(p.Room.ID)).Msg("bound panel")
}

func (r *Registry) Get(sid core.SessionID) (*Panel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.panels[sid]
	return p, ok
}

func (r *Registry) Unbind(sid core.SessionID) {
	r.mu.Lock()
	p := r.panels[sid]
	delete(r.panels, sid)
	r.mu.Unlock()

	if p != nil {
		p.Poller.Stop()
		log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(p.Room.ID)).Msg("unbound panel")
	}
}
