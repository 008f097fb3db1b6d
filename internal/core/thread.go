package core

import (
	"sync"

	"github.com/dkraev/parley/internal/domain"
)

// Thread is the ordered message sequence of one open panel. It is the single
// merge point for both producers: the poll cycle and the local
// append-on-send / remove-on-delete operations. Thread never mutates message
// content; it only replaces, appends or removes whole entries.
type Thread struct {
	mu   sync.RWMutex
	msgs []domain.Message
}

func NewThread(initial []domain.Message) *Thread {
	t := &Thread{}
	t.msgs = append(t.msgs, initial...)
	return t
}

func (t *Thread) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.msgs)
}

// Snapshot returns a copy; callers never see the internal slice.
func (t *Thread) Snapshot() []domain.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]domain.Message, len(t.msgs))
	copy(out, t.msgs)
	return out
}

// Reconcile merges an authoritative fetch. The comparison is by count only:
// an unchanged count discards the fetch, so a poll racing a local append
// cannot clobber it with a stale read. Known limitation: edits that keep the
// count constant are not detected.
func (t *Thread) Reconcile(fetched []domain.Message) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(fetched) == len(t.msgs) {
		return false
	}
	t.msgs = make([]domain.Message, len(fetched))
	copy(t.msgs, fetched)
	return true
}

// Append adds a server-confirmed message, deduplicating by ID in case a poll
// already delivered it.
func (t *Thread) Append(msg domain.Message) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, m := range t.msgs {
		if m.ID == msg.ID {
			return false
		}
	}
	t.msgs = append(t.msgs, msg)
	return true
}

// Remove drops a message by ID after a confirmed delete.
func (t *Thread) Remove(id domain.MessageID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, m := range t.msgs {
		if m.ID == id {
			t.msgs = append(t.msgs[:i], t.msgs[i+1:]...)
			return true
		}
	}
	return false
}
