package ws

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/spf13/afero"

	"github.com/kiddieguard/sentinel/internal/core"
	"github.com/kiddieguard/sentinel/internal/domain"
	"github.com/kiddieguard/sentinel/internal/hub"
	"github.com/kiddieguard/sentinel/internal/vault"
)

type stubStore struct{}

func (stubStore) UpdateStatus(domain.KidID, domain.Status) bool { return true }
func (stubStore) Kid(domain.KidID) (domain.KidProfile, bool)    { return domain.KidProfile{}, false }
func (stubStore) ResetAllStatuses() int                         { return 0 }

// newTestController wires a controller against the real broker, registry
// and an in-memory vault.
func newTestController(t *testing.T) (*Controller, *Broker) {
	t.Helper()
	broker := NewBroker()
	snaps, err := vault.New(afero.NewMemMapFs(), "vault")
	if err != nil {
		t.Fatalf("vault.New: %v", err)
	}
	reg := hub.NewRegistry()
	router := hub.NewRouter(reg, hub.NewPresence(stubStore{}, broker), snaps, broker)
	return NewController(router, broker, 0), broker
}

func event(t *testing.T, name string, data any) []byte {
	t.Helper()
	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := json.Marshal(Envelope{Event: name, Data: payload})
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func drain(c *conn) {
	for {
		select {
		case <-c.send:
		default:
			return
		}
	}
}

func TestDispatchJoinThenFrameReachesParent(t *testing.T) {
	ctl, broker := newTestController(t)
	kid := attachConn(broker, "kid1")
	parent := attachConn(broker, "p1")

	ctl.dispatch("kid1", event(t, core.EventJoin, hub.JoinPayload{Room: "K1", Role: "kid"}))
	ctl.dispatch("p1", event(t, core.EventJoin, hub.JoinPayload{Room: "K1", Role: "parent"}))
	drain(kid)
	drain(parent)

	ctl.dispatch("kid1", event(t, core.EventStreamFrame, hub.StreamFramePayload{Room: "K1", Image: "b64"}))

	env := recvEnvelope(t, parent)
	if env.Event != core.EventLiveFrame {
		t.Fatalf("parent received %q, want live_frame_update", env.Event)
	}
	var lf hub.LiveFrame
	if err := json.Unmarshal(env.Data, &lf); err != nil {
		t.Fatal(err)
	}
	if lf.KidID != "K1" || lf.Image != "b64" {
		t.Fatalf("payload = %+v", lf)
	}
	// The kid must not hear its own frame.
	select {
	case <-kid.send:
		t.Fatal("frame echoed back to the kid room")
	default:
	}
}

func TestDispatchStateReportVerbatim(t *testing.T) {
	ctl, broker := newTestController(t)
	kid := attachConn(broker, "kid1")
	parent := attachConn(broker, "p1")

	ctl.dispatch("kid1", event(t, core.EventJoin, hub.JoinPayload{Room: "K1", Role: "kid"}))
	ctl.dispatch("p1", event(t, core.EventJoin, hub.JoinPayload{Room: "K1", Role: "parent"}))
	drain(kid)
	drain(parent)

	report := `{"current_time":42,"videoId":"abc"}`
	ctl.dispatch("kid1", []byte(`{"event":"state_report","data":`+report+`}`))

	env := recvEnvelope(t, parent)
	if env.Event != core.EventStateReport {
		t.Fatalf("parent received %q", env.Event)
	}
	if string(env.Data) != report {
		t.Fatalf("state_report data = %s, want verbatim payload", env.Data)
	}

	// A parent-sourced report must never come back.
	ctl.dispatch("p1", []byte(`{"event":"state_report","data":`+report+`}`))
	select {
	case <-parent.send:
		t.Fatal("parent mirror re-entered the broadcast")
	default:
	}
}

func TestDispatchCryAlertAliasesSnapshot(t *testing.T) {
	ctl, broker := newTestController(t)
	kid := attachConn(broker, "kid1")
	parent := attachConn(broker, "p1")

	ctl.dispatch("kid1", event(t, core.EventJoin, hub.JoinPayload{Room: "K1", Role: "kid"}))
	ctl.dispatch("p1", event(t, core.EventJoin, hub.JoinPayload{Room: "K1", Role: "parent"}))
	drain(kid)
	drain(parent)

	ctl.dispatch("kid1", event(t, core.EventCryAlert, hub.SnapshotPayload{Image: "QUJD"}))

	env := recvEnvelope(t, parent)
	if env.Event != core.EventNewSnapshot {
		t.Fatalf("parent received %q, want new_snapshot", env.Event)
	}
	var ns hub.NewSnapshot
	if err := json.Unmarshal(env.Data, &ns); err != nil {
		t.Fatal(err)
	}
	if ns.KidID != "K1" || ns.URL == "" {
		t.Fatalf("payload = %+v", ns)
	}
}

func TestDispatchMalformedInputIsContained(t *testing.T) {
	ctl, _ := newTestController(t)

	// None of these may panic or tear anything down.
	ctl.dispatch("c1", []byte("not json"))
	ctl.dispatch("c1", []byte(`{"event":"join"}`))
	ctl.dispatch("c1", []byte(`{"event":"join","data":"notanobject"}`))
	ctl.dispatch("c1", []byte(`{"event":"nonsense","data":{}}`))
}
