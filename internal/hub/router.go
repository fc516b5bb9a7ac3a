package hub

import (
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/kiddieguard/sentinel/internal/core"
	"github.com/kiddieguard/sentinel/internal/domain"
	"github.com/kiddieguard/sentinel/internal/vault"
)

// SnapshotVault persists decoded snapshot bytes. A failed write is
// reported to the router and the relay state is unaffected.
type SnapshotVault interface {
	Save(room domain.RoomName, ts time.Time, img []byte) (string, error)
}

// JoinPayload is the first event every connection sends.
type JoinPayload struct {
	Room string `json:"room"`
	Role string `json:"role"`
}

type StreamFramePayload struct {
	Room  string `json:"room"`
	Image string `json:"image"`
}

type SnapshotPayload struct {
	Room  string `json:"room"`
	Image string `json:"image"`
}

type RemoteLogPayload struct {
	Level   string `json:"level"`
	Source  string `json:"source"`
	Message string `json:"message"`
}

// LiveFrame fans a camera frame out to the parent dashboards.
type LiveFrame struct {
	KidID domain.KidID `json:"kid_id"`
	Image string       `json:"image"`
}

// PlayerControl carries a dashboard command down to one kid device.
type PlayerControl struct {
	Command string         `json:"command"`
	Payload map[string]any `json:"payload"`
}

type NewSnapshot struct {
	KidID domain.KidID `json:"kid_id"`
	Image string       `json:"image"`
	URL   string       `json:"url"`
}

// Router is the relay core: it validates inbound payloads, resolves the
// sender through the registry, and forwards events by role-based rules.
// Every failure is per-event and locally contained; nothing here is fatal
// and nothing retries.
type Router struct {
	Registry  *Registry
	Presence  *Presence
	Vault     SnapshotVault
	Transport core.Transport

	now func() time.Time
}

func NewRouter(reg *Registry, presence *Presence, snaps SnapshotVault, transport core.Transport) *Router {
	return &Router{
		Registry:  reg,
		Presence:  presence,
		Vault:     snaps,
		Transport: transport,
		now:       time.Now,
	}
}

// HandleJoin commits a connection to {room, role}. A kid joining flips the
// room online for everyone; a parent gets subscribed to the broadcast room
// and a targeted status sync for the room it watches.
func (r *Router) HandleJoin(conn core.ConnID, p JoinPayload) core.DeliveryResult {
	room := domain.RoomName(strings.TrimSpace(p.Room))
	if room == "" {
		return core.DeliveryResult{Outcome: core.Dropped}
	}
	role := domain.ParseRole(strings.TrimSpace(p.Role))

	r.Registry.Join(conn, room, role)
	r.Transport.Subscribe(conn, room)

	if role == domain.RoleKid {
		return r.Presence.MarkOnline(room)
	}
	r.Transport.Subscribe(conn, core.ParentAdminRoom)
	log.Info().Str("module", "hub.router").Str("room", string(room)).Msg("parent dashboard online")
	return r.Presence.SyncTo(conn, room)
}

// HandleDisconnect evicts the session. Only a departing kid changes device
// presence; a registry miss is a no-op, never fatal.
func (r *Router) HandleDisconnect(conn core.ConnID) {
	s, ok := r.Registry.Remove(conn)
	if !ok {
		return
	}
	if s.Role == domain.RoleKid {
		r.Presence.MarkOffline(s.Room)
	}
}

// HandleStreamFrame relays a camera frame to the parent broadcast room.
func (r *Router) HandleStreamFrame(conn core.ConnID, p StreamFramePayload) core.DeliveryResult {
	room := domain.RoomName(strings.TrimSpace(p.Room))
	if room == "" || p.Image == "" {
		return core.DeliveryResult{Outcome: core.Dropped}
	}
	return r.Transport.ToRoom(core.ParentAdminRoom, core.EventLiveFrame, LiveFrame{
		KidID: domain.KidID(room),
		Image: p.Image,
	})
}

// HandleCommand bridges a dashboard command to the named kid room. Every
// field except room and command rides along as the payload. No kid
// connected is a transport no-op: the command is not queued or retried.
func (r *Router) HandleCommand(conn core.ConnID, data map[string]any) core.DeliveryResult {
	room, _ := data["room"].(string)
	room = strings.TrimSpace(room)
	command, _ := data["command"].(string)
	command = strings.TrimSpace(command)
	if command == "" {
		return core.DeliveryResult{Outcome: core.Dropped}
	}

	payload := make(map[string]any, len(data))
	for k, v := range data {
		if k == "room" || k == "command" {
			continue
		}
		payload[k] = v
	}

	log.Info().Str("module", "hub.router").Str("command", command).Str("room", room).Msg("command relay")
	return r.Transport.ToRoom(domain.RoomName(room), core.EventPlayerControl, PlayerControl{
		Command: command,
		Payload: payload,
	})
}

// HandleStateReport bounces device player state to the parent dashboards.
// Only connections whose REGISTERED role is kid may feed the mirror: a
// dashboard that re-emits mirrored state would otherwise bounce between
// dashboards forever. The role asserted inside the payload is never
// consulted.
func (r *Router) HandleStateReport(conn core.ConnID, raw json.RawMessage) core.DeliveryResult {
	s, ok := r.Registry.Lookup(conn)
	if !ok || s.Role != domain.RoleKid || s.Room == "" {
		return core.DeliveryResult{Outcome: core.Dropped}
	}
	return r.Transport.ToRoom(core.ParentAdminRoom, core.EventStateReport, raw)
}

// HandleSnapshot decodes an inbound image, persists it to the vault and
// notifies dashboards. The room comes from the payload, falling back to
// the sender's session. Decode or write failure drops the event and leaves
// the connection open.
func (r *Router) HandleSnapshot(conn core.ConnID, p SnapshotPayload) core.DeliveryResult {
	room := domain.RoomName(strings.TrimSpace(p.Room))
	if room == "" {
		if s, ok := r.Registry.Lookup(conn); ok {
			room = s.Room
		}
	}
	if room == "" || p.Image == "" {
		return core.DeliveryResult{Outcome: core.Dropped}
	}

	img, err := vault.DecodeImage(p.Image)
	if err != nil {
		log.Error().Str("module", "hub.router").Str("room", string(room)).Err(err).Msg("snapshot decode failed")
		return core.DeliveryResult{Outcome: core.Dropped}
	}

	name, err := r.Vault.Save(room, r.now(), img)
	if err != nil {
		log.Error().Str("module", "hub.router").Str("room", string(room)).Err(err).Msg("snapshot save failed")
		return core.DeliveryResult{Outcome: core.Dropped}
	}

	log.Info().Str("module", "hub.router").Str("room", string(room)).Str("file", name).Msg("snapshot saved")
	return r.Transport.ToRoom(core.ParentAdminRoom, core.EventNewSnapshot, NewSnapshot{
		KidID: domain.KidID(room),
		Image: p.Image,
		URL:   core.VaultURLPrefix + name,
	})
}

// HandleRemoteLog pipes browser console output to the operator console.
func (r *Router) HandleRemoteLog(p RemoteLogPayload) {
	source := p.Source
	if source == "" {
		source = "BROWSER"
	}
	ev := log.Info()
	switch strings.ToUpper(p.Level) {
	case "ERROR":
		ev = log.Error()
	case "WARN", "WARNING":
		ev = log.Warn()
	}
	ev.Str("module", "hub.router").Str("source", source).Msg(p.Message)
}
