package hub

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/kiddieguard/sentinel/internal/core"
	"github.com/kiddieguard/sentinel/internal/domain"
)

// Registry maps live connection ids onto {room, role}. It is the single
// source of truth for who is in what room; role gates in the router always
// resolve through it, never through client-asserted fields.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.ConnID]domain.Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[core.ConnID]domain.Session)}
}

// Join registers the session for a connection, overwriting any previous
// entry for the same id.
func (r *Registry) Join(id core.ConnID, room domain.RoomName, role domain.Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = domain.Session{Room: room, Role: role}
	log.Info().Str("module", "hub.registry").Str("conn", string(id)).Str("room", string(room)).Str("role", string(role)).Msg("session joined")
}

func (r *Registry) Lookup(id core.ConnID) (domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove evicts the session and returns the prior entry so the caller can
// decide whether an offline transition is due.
func (r *Registry) Remove(id core.ConnID) (domain.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
		log.Info().Str("module", "hub.registry").Str("conn", string(id)).Str("room", string(s.Room)).Msg("session removed")
	}
	return s, ok
}

// Len is the number of currently-joined connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
