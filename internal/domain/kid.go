// Package domain contains entities without logic, just meta-data
package domain

import (
	"strings"

	"github.com/google/uuid"
)

// KidID is the 8-character opaque device identifier minted at enrollment.
// It doubles as the transport room name for the device.
type KidID string

// Status is the persisted presence of a kid device.
type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)

// NewKidID mints a short, link-friendly identifier.
func NewKidID() KidID {
	return KidID(strings.ToUpper(uuid.NewString()[:8]))
}

// Playback is the device-side player state. The hub never writes these
// fields; they belong to the parent CRUD layer.
type Playback struct {
	CurrentVideo string `json:"current_video"`
	MediaType    string `json:"media_type"`
	Volume       int    `json:"volume"`
	IsPaused     bool   `json:"is_paused"`
}

// Playlists maps a day-part mode to an assigned library item id.
type Playlists struct {
	Day   string `json:"day"`
	Night string `json:"night"`
}

type Settings struct {
	NightMode bool `json:"night_mode"`
}

// KidProfile is the persisted profile of an enrolled device. Of all
// fields, only Status is owned by the relay hub; everything else is
// mutated exclusively by the web layer.
type KidProfile struct {
	Name      string    `json:"name"`
	Age       string    `json:"age"`
	Bedtime   string    `json:"bedtime"`
	Wakeup    string    `json:"wakeup"`
	Status    Status    `json:"status"`
	Playback  Playback  `json:"playback"`
	Playlists Playlists `json:"playlists"`
	Settings  Settings  `json:"settings"`
}

// NewKidProfile seeds an enrollment with the default playback context.
func NewKidProfile(name, age, bedtime, wakeup string) *KidProfile {
	return &KidProfile{
		Name:    name,
		Age:     age,
		Bedtime: bedtime,
		Wakeup:  wakeup,
		Status:  StatusOffline,
		Playback: Playback{
			CurrentVideo: "5qap5aO4i9A",
			MediaType:    MediaVideo,
			Volume:       80,
			IsPaused:     false,
		},
	}
}
