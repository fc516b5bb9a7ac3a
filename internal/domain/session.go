package domain

type RoomName string

// Role determines relay direction, not message shape.
type Role string

const (
	RoleKid    Role = "kid"
	RoleParent Role = "parent"
)

// ParseRole maps a client-asserted role string onto the enum. Anything
// unrecognized is a parent; only the kid role unlocks device-side relaying,
// so defaulting down is the safe direction.
func ParseRole(s string) Role {
	if s == string(RoleKid) {
		return RoleKid
	}
	return RoleParent
}

// Session is a registry entry: the room and role a connection committed to
// on join. Entries are created on join and evicted on disconnect, never
// mutated in between.
type Session struct {
	Room RoomName
	Role Role
}
