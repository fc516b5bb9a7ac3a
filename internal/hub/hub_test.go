package hub

import (
	"fmt"

	"github.com/kiddieguard/sentinel/internal/core"
	"github.com/kiddieguard/sentinel/internal/domain"
)

// emission records one outbound event for assertions.
type emission struct {
	kind   string // "conn", "room", "broadcast"
	target string
	event  string
	data   any
}

func (e emission) String() string {
	return fmt.Sprintf("%s(%s) %s", e.kind, e.target, e.event)
}

// fakeTransport simulates addressed delivery: it records every attempt and
// derives outcomes from the memberships tests set up through Subscribe.
type fakeTransport struct {
	attached map[core.ConnID]bool
	rooms    map[domain.RoomName]map[core.ConnID]bool
	sent     []emission
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		attached: make(map[core.ConnID]bool),
		rooms:    make(map[domain.RoomName]map[core.ConnID]bool),
	}
}

func (t *fakeTransport) connect(id core.ConnID) { t.attached[id] = true }

func (t *fakeTransport) Subscribe(id core.ConnID, room domain.RoomName) {
	t.connect(id)
	if t.rooms[room] == nil {
		t.rooms[room] = make(map[core.ConnID]bool)
	}
	t.rooms[room][id] = true
}

func (t *fakeTransport) ToConn(id core.ConnID, event string, data any) core.DeliveryResult {
	t.sent = append(t.sent, emission{kind: "conn", target: string(id), event: event, data: data})
	if !t.attached[id] {
		return core.DeliveryResult{Outcome: core.NoRecipient}
	}
	return core.DeliveryResult{Outcome: core.Delivered, Receivers: 1}
}

func (t *fakeTransport) ToRoom(room domain.RoomName, event string, data any) core.DeliveryResult {
	t.sent = append(t.sent, emission{kind: "room", target: string(room), event: event, data: data})
	n := len(t.rooms[room])
	if n == 0 {
		return core.DeliveryResult{Outcome: core.NoRecipient}
	}
	return core.DeliveryResult{Outcome: core.Delivered, Receivers: n}
}

func (t *fakeTransport) Broadcast(event string, data any) core.DeliveryResult {
	t.sent = append(t.sent, emission{kind: "broadcast", target: "*", event: event, data: data})
	if len(t.attached) == 0 {
		return core.DeliveryResult{Outcome: core.NoRecipient}
	}
	return core.DeliveryResult{Outcome: core.Delivered, Receivers: len(t.attached)}
}

// byEvent filters recorded emissions.
func (t *fakeTransport) byEvent(event string) []emission {
	var out []emission
	for _, e := range t.sent {
		if e.event == event {
			out = append(out, e)
		}
	}
	return out
}

// fakeStore is an in-memory ProfileStore.
type fakeStore struct {
	statuses map[domain.KidID]domain.Status
	resets   int
}

func newFakeStore(kids ...domain.KidID) *fakeStore {
	s := &fakeStore{statuses: make(map[domain.KidID]domain.Status)}
	for _, id := range kids {
		s.statuses[id] = domain.StatusOffline
	}
	return s
}

func (s *fakeStore) UpdateStatus(id domain.KidID, status domain.Status) bool {
	if _, ok := s.statuses[id]; !ok {
		return false
	}
	s.statuses[id] = status
	return true
}

func (s *fakeStore) Kid(id domain.KidID) (domain.KidProfile, bool) {
	status, ok := s.statuses[id]
	if !ok {
		return domain.KidProfile{}, false
	}
	return domain.KidProfile{Status: status}, true
}

func (s *fakeStore) ResetAllStatuses() int {
	s.resets++
	for id := range s.statuses {
		s.statuses[id] = domain.StatusOffline
	}
	return len(s.statuses)
}
