package hub

import (
	"testing"

	"github.com/kiddieguard/sentinel/internal/core"
	"github.com/kiddieguard/sentinel/internal/domain"
)

func TestPresenceMarkOnlineBroadcasts(t *testing.T) {
	transport := newFakeTransport()
	transport.connect("p1")
	store := newFakeStore("K1")
	p := NewPresence(store, transport)

	res := p.MarkOnline("K1")

	if res.Outcome != core.Delivered {
		t.Fatalf("outcome = %v, want delivered", res.Outcome)
	}
	if store.statuses["K1"] != domain.StatusOnline {
		t.Fatalf("persisted status = %s, want online", store.statuses["K1"])
	}
	changes := transport.byEvent(core.EventStatusChange)
	if len(changes) != 1 {
		t.Fatalf("status_change emissions = %d, want 1", len(changes))
	}
	if changes[0].kind != "broadcast" {
		t.Fatalf("status_change kind = %s, want broadcast", changes[0].kind)
	}
	sc := changes[0].data.(StatusChange)
	if !sc.Online || sc.KidID != "K1" {
		t.Fatalf("status_change payload = %+v", sc)
	}
}

func TestPresenceSyncToIsTargeted(t *testing.T) {
	transport := newFakeTransport()
	transport.connect("p1")
	store := newFakeStore("K1")
	store.statuses["K1"] = domain.StatusOnline
	p := NewPresence(store, transport)

	p.SyncTo("p1", "K1")

	changes := transport.byEvent(core.EventStatusChange)
	if len(changes) != 1 {
		t.Fatalf("status_change emissions = %d, want 1", len(changes))
	}
	if changes[0].kind != "conn" || changes[0].target != "p1" {
		t.Fatalf("sync went to %s(%s), want conn(p1)", changes[0].kind, changes[0].target)
	}
	if sc := changes[0].data.(StatusChange); !sc.Online {
		t.Fatal("sync reported offline for an online room")
	}
}

func TestPresenceCurrentDefaultsOffline(t *testing.T) {
	p := NewPresence(newFakeStore(), newFakeTransport())
	if got := p.Current("UNKNOWN1"); got != domain.StatusOffline {
		t.Fatalf("Current(unknown) = %s, want offline", got)
	}
}

func TestPresenceResetAllIdempotent(t *testing.T) {
	store := newFakeStore("K1", "K2")
	store.statuses["K1"] = domain.StatusOnline
	p := NewPresence(store, newFakeTransport())

	p.ResetAll()
	p.ResetAll()

	for id, status := range store.statuses {
		if status != domain.StatusOffline {
			t.Fatalf("kid %s status = %s after reset, want offline", id, status)
		}
	}
	if store.resets != 2 {
		t.Fatalf("resets = %d, want 2", store.resets)
	}
}
