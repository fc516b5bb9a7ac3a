package core

// Inbound event names.
const (
	EventJoin        = "join"
	EventStreamFrame = "stream_frame"
	EventCommand     = "parent_command"
	EventStateReport = "state_report"
	EventSnapshot    = "snapshot_upload"
	// EventCryAlert aliases EventSnapshot: same payload, same handling.
	// Kept as a distinct wire name for the kid-side alerting UI.
	EventCryAlert  = "cry_alert"
	EventRemoteLog = "remote_log"
)

// Outbound event names.
const (
	EventStatusChange  = "status_change"
	EventLiveFrame     = "live_frame_update"
	EventPlayerControl = "player_control"
	EventNewSnapshot   = "new_snapshot"
)
