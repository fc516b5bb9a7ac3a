package domain

import "testing"

func TestExtractContent(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantID   string
		wantType string
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", MediaVideo},
		{"short url", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", MediaVideo},
		{"playlist", "https://www.youtube.com/playlist?list=PL123abc&feature=share", "PL123abc", MediaPlaylist},
		{"list wins over video id", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PLxyz", "PLxyz", MediaPlaylist},
		{"raw id kept verbatim", "5qap5aO4i9A", "5qap5aO4i9A", MediaVideo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, mediaType := ExtractContent(tt.in)
			if id != tt.wantID || mediaType != tt.wantType {
				t.Fatalf("ExtractContent(%q) = (%q, %q), want (%q, %q)", tt.in, id, mediaType, tt.wantID, tt.wantType)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	if ParseRole("kid") != RoleKid {
		t.Fatal(`ParseRole("kid") != RoleKid`)
	}
	for _, s := range []string{"parent", "", "admin", "KID"} {
		if ParseRole(s) != RoleParent {
			t.Fatalf("ParseRole(%q) != RoleParent", s)
		}
	}
}

func TestNewKidID(t *testing.T) {
	id := NewKidID()
	if len(id) != 8 {
		t.Fatalf("NewKidID() = %q, want 8 characters", id)
	}
}
