package ws

import (
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/kiddieguard/sentinel/internal/core"
	"github.com/kiddieguard/sentinel/internal/domain"
)

// Envelope is the wire shape of every event in either direction.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Broker owns the set of live connections and their named-room
// memberships, and implements core.Transport over them. Delivery is
// best-effort: a slow or closed peer loses the frame, nothing is queued.
type Broker struct {
	mu    sync.RWMutex
	conns map[core.ConnID]*conn
	rooms map[domain.RoomName]map[core.ConnID]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		conns: make(map[core.ConnID]*conn),
		rooms: make(map[domain.RoomName]map[core.ConnID]struct{}),
	}
}

func (b *Broker) attach(id core.ConnID, c *conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conns[id] = c
	log.Info().Str("module", "adapters.ws").Str("conn", string(id)).Msg("connection attached")
}

// detach drops the connection and all of its room memberships.
func (b *Broker) detach(id core.ConnID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conns, id)
	for name, members := range b.rooms {
		delete(members, id)
		if len(members) == 0 {
			delete(b.rooms, name)
		}
	}
	log.Info().Str("module", "adapters.ws").Str("conn", string(id)).Msg("connection detached")
}

func (b *Broker) Subscribe(id core.ConnID, room domain.RoomName) {
	if room == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.conns[id]; !ok {
		return
	}
	members, ok := b.rooms[room]
	if !ok {
		members = make(map[core.ConnID]struct{})
		b.rooms[room] = members
	}
	members[id] = struct{}{}
	log.Debug().Str("module", "adapters.ws").Str("conn", string(id)).Str("room", string(room)).Msg("subscribed")
}

func (b *Broker) ToConn(id core.ConnID, event string, data any) core.DeliveryResult {
	raw, ok := encode(event, data)
	if !ok {
		return core.DeliveryResult{Outcome: core.Dropped}
	}
	b.mu.RLock()
	c, found := b.conns[id]
	b.mu.RUnlock()
	if !found {
		return core.DeliveryResult{Outcome: core.NoRecipient}
	}
	if err := c.trySend(raw); err != nil {
		return core.DeliveryResult{Outcome: core.NoRecipient}
	}
	return core.DeliveryResult{Outcome: core.Delivered, Receivers: 1}
}

func (b *Broker) ToRoom(room domain.RoomName, event string, data any) core.DeliveryResult {
	raw, ok := encode(event, data)
	if !ok {
		return core.DeliveryResult{Outcome: core.Dropped}
	}
	b.mu.RLock()
	targets := make([]*conn, 0, len(b.rooms[room]))
	for id := range b.rooms[room] {
		if c, found := b.conns[id]; found {
			targets = append(targets, c)
		}
	}
	b.mu.RUnlock()
	return deliver(targets, raw)
}

func (b *Broker) Broadcast(event string, data any) core.DeliveryResult {
	raw, ok := encode(event, data)
	if !ok {
		return core.DeliveryResult{Outcome: core.Dropped}
	}
	b.mu.RLock()
	targets := make([]*conn, 0, len(b.conns))
	for _, c := range b.conns {
		targets = append(targets, c)
	}
	b.mu.RUnlock()
	return deliver(targets, raw)
}

func encode(event string, data any) ([]byte, bool) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Error().Str("module", "adapters.ws").Str("event", event).Err(err).Msg("encode payload")
		return nil, false
	}
	raw, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		log.Error().Str("module", "adapters.ws").Str("event", event).Err(err).Msg("encode envelope")
		return nil, false
	}
	return raw, true
}

func deliver(targets []*conn, raw []byte) core.DeliveryResult {
	if len(targets) == 0 {
		return core.DeliveryResult{Outcome: core.NoRecipient}
	}
	res := core.DeliveryResult{}
	for _, c := range targets {
		if err := c.trySend(raw); err != nil {
			continue
		}
		res.Receivers++
	}
	if res.Receivers == 0 {
		res.Outcome = core.NoRecipient
		return res
	}
	res.Outcome = core.Delivered
	return res
}
