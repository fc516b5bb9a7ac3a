// Package store is the JSON-file profile store shared by the hub and the
// web layer. The hub owns exactly one field per kid (status); everything
// else is written only from HTTP handlers, which is the invariant that
// keeps the two writers from conflicting.
package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/kiddieguard/sentinel/internal/domain"
)

var (
	ErrKidNotFound     = errors.New("kid not found")
	ErrLibraryNotFound = errors.New("library item not found")
)

type GlobalCommands struct {
	PauseAll     bool `json:"pause_all"`
	NightModeAll bool `json:"night_mode_all"`
	GlobalVolume int  `json:"global_volume"`
}

type bunkerData struct {
	FamilyID       string                              `json:"family_id"`
	Library        map[string]domain.LibraryItem       `json:"library"`
	Kids           map[domain.KidID]*domain.KidProfile `json:"kids"`
	GlobalCommands GlobalCommands                      `json:"global_commands"`
}

// Bunker loads the whole database into memory and rewrites the file on
// every mutation. Fine at family scale; not a general-purpose store.
type Bunker struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
	data bunkerData

	now func() time.Time
}

// Open reads the database file, seeding the initial schema when the file
// is missing, empty or corrupted.
func Open(fs afero.Fs, path string) (*Bunker, error) {
	b := &Bunker{fs: fs, path: path, now: time.Now}

	info, err := fs.Stat(path)
	if err != nil || info.Size() == 0 {
		b.data = initialData()
		if err := b.save(); err != nil {
			return nil, err
		}
		return b, nil
	}

	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}
	if err := json.Unmarshal(raw, &b.data); err != nil {
		log.Warn().Str("module", "store").Str("path", path).Err(err).Msg("store corrupted, resetting")
		b.data = initialData()
		return b, b.save()
	}
	// Schema migration: older files predate the library.
	if b.data.Library == nil {
		b.data.Library = make(map[string]domain.LibraryItem)
	}
	if b.data.Kids == nil {
		b.data.Kids = make(map[domain.KidID]*domain.KidProfile)
	}
	return b, nil
}

func initialData() bunkerData {
	return bunkerData{
		FamilyID: "FAM_001",
		Library:  make(map[string]domain.LibraryItem),
		Kids:     make(map[domain.KidID]*domain.KidProfile),
		GlobalCommands: GlobalCommands{
			GlobalVolume: 100,
		},
	}
}

// save must be called with b.mu held (or before the Bunker is shared).
func (b *Bunker) save() error {
	raw, err := json.MarshalIndent(b.data, "", "    ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	if err := afero.WriteFile(b.fs, b.path, raw, 0o644); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}

func (b *Bunker) FamilyID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data.FamilyID
}

// UpdateStatus flips a kid's presence. Unknown kids report false; presence
// for rooms that were never enrolled is simply not tracked.
func (b *Bunker) UpdateStatus(id domain.KidID, status domain.Status) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	kid, ok := b.data.Kids[id]
	if !ok {
		return false
	}
	kid.Status = status
	if err := b.save(); err != nil {
		log.Error().Str("module", "store").Err(err).Msg("status save failed")
	}
	return true
}

// ResetAllStatuses forces every kid offline and returns how many profiles
// it touched. Called once at hub startup.
func (b *Bunker) ResetAllStatuses() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, kid := range b.data.Kids {
		kid.Status = domain.StatusOffline
	}
	if err := b.save(); err != nil {
		log.Error().Str("module", "store").Err(err).Msg("status reset save failed")
	}
	return len(b.data.Kids)
}

// Kid returns a copy of a profile; mutations must go through store methods.
func (b *Bunker) Kid(id domain.KidID) (domain.KidProfile, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	kid, ok := b.data.Kids[id]
	if !ok {
		return domain.KidProfile{}, false
	}
	return *kid, true
}

func (b *Bunker) AllKids() map[domain.KidID]domain.KidProfile {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[domain.KidID]domain.KidProfile, len(b.data.Kids))
	for id, kid := range b.data.Kids {
		out[id] = *kid
	}
	return out
}

// AddKid enrolls a new profile under the given id.
func (b *Bunker) AddKid(id domain.KidID, profile *domain.KidProfile) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data.Kids[id] = profile
	return b.save()
}

func (b *Bunker) Library() map[string]domain.LibraryItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]domain.LibraryItem, len(b.data.Library))
	for id, item := range b.data.Library {
		out[id] = item
	}
	return out
}

// AddToLibrary extracts the playable id from a pasted URL and files it
// under a time-keyed library id.
func (b *Bunker) AddToLibrary(name, sourceURL string) (string, error) {
	contentID, mediaType := domain.ExtractContent(sourceURL)
	b.mu.Lock()
	defer b.mu.Unlock()
	libID := fmt.Sprintf("lib_%d", b.now().Unix())
	b.data.Library[libID] = domain.LibraryItem{
		Name:    name,
		URL:     contentID,
		Type:    mediaType,
		AddedAt: b.now().Format("2006-01-02 15:04:05"),
	}
	return libID, b.save()
}

// AssignToKid binds a library item to a kid's day or night slot and
// updates the active playback context so the choice survives a reboot.
// An empty library id clears the slot. The bound item is returned so the
// caller knows the real media id and type, not the library key.
func (b *Bunker) AssignToKid(id domain.KidID, mode, libraryID string) (domain.LibraryItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	kid, ok := b.data.Kids[id]
	if !ok {
		return domain.LibraryItem{}, ErrKidNotFound
	}

	if libraryID == "" {
		b.setPlaylist(kid, mode, "")
		return domain.LibraryItem{Type: domain.MediaVideo}, b.save()
	}

	item, ok := b.data.Library[libraryID]
	if !ok {
		return domain.LibraryItem{}, ErrLibraryNotFound
	}
	b.setPlaylist(kid, mode, libraryID)
	kid.Playback.CurrentVideo = item.URL
	kid.Playback.MediaType = item.Type
	log.Info().Str("module", "store").Str("kid", kid.Name).Str("mode", mode).Str("type", item.Type).Str("url", item.URL).Msg("library assigned")
	return item, b.save()
}

func (b *Bunker) setPlaylist(kid *domain.KidProfile, mode, libraryID string) {
	if mode == "night" {
		kid.Playlists.Night = libraryID
		return
	}
	kid.Playlists.Day = libraryID
}
