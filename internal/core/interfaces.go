package core

import "github.com/kiddieguard/sentinel/internal/domain"

// ConnID is the ephemeral, transport-assigned connection identifier.
type ConnID string

// ParentAdminRoom is the fixed broadcast room every parent viewer is
// subscribed to; global events (frames, snapshots, state mirrors) fan out
// through it.
const ParentAdminRoom domain.RoomName = "parent_admin"

// VaultURLPrefix is the stable path prefix snapshots are served under by
// the web layer; new_snapshot events point viewers here.
const VaultURLPrefix = "/parent/vault/"

// DeliveryOutcome makes the relay's fire-and-forget result observable.
// Nothing retries on any outcome; the distinction exists so callers and
// tests can assert on what happened instead of on the absence of a side
// effect.
type DeliveryOutcome int

const (
	// OutcomeUnknown is the zero value, so a DeliveryResult that was
	// never filled in cannot read as success.
	OutcomeUnknown DeliveryOutcome = iota
	// Delivered means at least one recipient received the event.
	Delivered
	// NoRecipient means the target resolved to zero connections. Not an
	// error: standard fire-and-forget outcome.
	NoRecipient
	// Dropped means the inbound event failed a precondition (missing
	// field, role gate, decode failure) and was discarded before routing.
	Dropped
)

func (o DeliveryOutcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case NoRecipient:
		return "no_recipient"
	case Dropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// DeliveryResult reports where an outbound event ended up.
type DeliveryResult struct {
	Outcome   DeliveryOutcome
	Receivers int
}

// Transport is the addressed-delivery surface the hub relays through.
// Delivery is at-most-once and unordered across connections; a missing
// target is reported as NoRecipient, never as an error.
// Owned by the adapter; the hub never closes connections through it.
type Transport interface {
	// Subscribe adds a connection to a named room. Membership lives and
	// dies with the connection.
	Subscribe(id ConnID, room domain.RoomName)
	ToConn(id ConnID, event string, data any) DeliveryResult
	ToRoom(room domain.RoomName, event string, data any) DeliveryResult
	Broadcast(event string, data any) DeliveryResult
}
