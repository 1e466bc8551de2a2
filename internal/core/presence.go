package core

import (
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatsync/internal/event"
)

// PresenceTracker holds the set of online user ids. Every broadcast replaces
// the set wholesale; there is no timeout logic of its own.
type PresenceTracker struct {
	mu     sync.RWMutex
	online map[string]struct{}

	changes event.Emitter[[]string]
	log     zerolog.Logger
}

func NewPresenceTracker(logger *zerolog.Logger) *PresenceTracker {
	return &PresenceTracker{
		online: make(map[string]struct{}),
		log:    componentLogger(logger, "presence"),
	}
}

// Replace swaps the tracked set for ids.
func (p *PresenceTracker) Replace(ids []string) {
	next := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			next[id] = struct{}{}
		}
	}

	p.mu.Lock()
	p.online = next
	p.mu.Unlock()

	p.log.Debug().Int("online", len(next)).Msg("presence replaced")
	p.changes.Emit(p.Online())
}

// IsOnline reports whether userID was in the latest broadcast.
func (p *PresenceTracker) IsOnline(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.online[userID]
	return ok
}

// Online returns the tracked ids in sorted order.
func (p *PresenceTracker) Online() []string {
	p.mu.RLock()
	out := make([]string, 0, len(p.online))
	for id := range p.online {
		out = append(out, id)
	}
	p.mu.RUnlock()
	slices.Sort(out)
	return out
}

// OnChange is called with the full sorted set after every replacement.
func (p *PresenceTracker) OnChange(fn func(online []string)) (unsubscribe func()) {
	return p.changes.Subscribe(fn)
}
