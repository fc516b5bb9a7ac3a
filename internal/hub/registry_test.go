package hub

import (
	"testing"

	"github.com/kiddieguard/sentinel/internal/domain"
)

func TestRegistryJoinOverwrites(t *testing.T) {
	reg := NewRegistry()

	reg.Join("c1", "K1", domain.RoleParent)
	reg.Join("c1", "K2", domain.RoleKid)

	if got := reg.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1 (join must overwrite, never duplicate)", got)
	}
	s, ok := reg.Lookup("c1")
	if !ok {
		t.Fatal("Lookup(c1) missing after join")
	}
	if s.Room != "K2" || s.Role != domain.RoleKid {
		t.Fatalf("Lookup(c1) = %+v, want room K2 role kid", s)
	}
}

func TestRegistryRemoveReturnsPrior(t *testing.T) {
	reg := NewRegistry()
	reg.Join("c1", "K1", domain.RoleKid)

	s, ok := reg.Remove("c1")
	if !ok {
		t.Fatal("Remove(c1) reported no session")
	}
	if s.Room != "K1" || s.Role != domain.RoleKid {
		t.Fatalf("Remove(c1) = %+v, want prior session", s)
	}
	if reg.Len() != 0 {
		t.Fatalf("Len() = %d after remove, want 0", reg.Len())
	}

	if _, ok := reg.Remove("c1"); ok {
		t.Fatal("second Remove(c1) reported a session")
	}
}

func TestRegistryLookupMiss(t *testing.T) {
	reg := NewRegistry()
	if _, ok := reg.Lookup("ghost"); ok {
		t.Fatal("Lookup(ghost) reported a session")
	}
}
