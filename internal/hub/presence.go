package hub

import (
	"github.com/rs/zerolog/log"

	"github.com/kiddieguard/sentinel/internal/core"
	"github.com/kiddieguard/sentinel/internal/domain"
)

// ProfileStore is the slice of the kid-profile store the hub needs. The
// hub writes only the status field; every other profile field belongs to
// the web layer, and that split is what makes the two writers safe.
type ProfileStore interface {
	UpdateStatus(id domain.KidID, status domain.Status) bool
	Kid(id domain.KidID) (domain.KidProfile, bool)
	ResetAllStatuses() int
}

// StatusChange is the presence payload fanned out to viewers.
type StatusChange struct {
	Online bool         `json:"online"`
	KidID  domain.KidID `json:"kid_id"`
}

// Presence derives online/offline from join/disconnect events and keeps
// the persisted profile status in step, so presence survives a hub restart
// without depending on in-memory state.
type Presence struct {
	store     ProfileStore
	transport core.Transport
}

func NewPresence(store ProfileStore, transport core.Transport) *Presence {
	return &Presence{store: store, transport: transport}
}

// MarkOnline persists online status for the room and broadcasts the
// transition to all parties. Idempotent.
func (p *Presence) MarkOnline(room domain.RoomName) core.DeliveryResult {
	p.store.UpdateStatus(domain.KidID(room), domain.StatusOnline)
	log.Info().Str("module", "hub.presence").Str("room", string(room)).Msg("kid portal active")
	return p.transport.Broadcast(core.EventStatusChange, StatusChange{Online: true, KidID: domain.KidID(room)})
}

// MarkOffline is invoked only when a kid-role connection departs; a parent
// disconnecting never changes device presence.
func (p *Presence) MarkOffline(room domain.RoomName) core.DeliveryResult {
	p.store.UpdateStatus(domain.KidID(room), domain.StatusOffline)
	log.Info().Str("module", "hub.presence").Str("room", string(room)).Msg("kid portal disconnected")
	return p.transport.Broadcast(core.EventStatusChange, StatusChange{Online: false, KidID: domain.KidID(room)})
}

// Current reads persisted presence, defaulting to offline when the profile
// is absent.
func (p *Presence) Current(room domain.RoomName) domain.Status {
	kid, ok := p.store.Kid(domain.KidID(room))
	if !ok || kid.Status != domain.StatusOnline {
		return domain.StatusOffline
	}
	return domain.StatusOnline
}

// SyncTo sends the room's current status to one joining viewer. This is a
// targeted sync, not a state change, so it is never broadcast.
func (p *Presence) SyncTo(id core.ConnID, room domain.RoomName) core.DeliveryResult {
	online := p.Current(room) == domain.StatusOnline
	return p.transport.ToConn(id, core.EventStatusChange, StatusChange{Online: online, KidID: domain.KidID(room)})
}

// ResetAll forces every known room offline. Run at startup: no connection
// can have survived a restart, so any persisted online status is stale.
// Idempotent by construction.
func (p *Presence) ResetAll() {
	n := p.store.ResetAllStatuses()
	log.Info().Str("module", "hub.presence").Int("rooms", n).Msg("presence reset to offline")
}
