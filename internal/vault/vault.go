// Package vault persists snapshot images to a content-addressed-by-time
// filesystem area, independent of the relay.
package vault

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/kiddieguard/sentinel/internal/domain"
)

var (
	ErrEmptyImage = errors.New("empty image payload")
	ErrBadRoom    = errors.New("invalid room name")
)

// Vault writes snapshot files under a single directory. Files are
// write-once; no retry on failure.
type Vault struct {
	fs  afero.Fs
	dir string
}

func New(fs afero.Fs, dir string) (*Vault, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}
	return &Vault{fs: fs, dir: dir}, nil
}

// Filename derives the deterministic snapshot name for a room and moment.
// Uniqueness within the same second is best-effort only.
func Filename(room domain.RoomName, ts time.Time) string {
	return fmt.Sprintf("SNAP_%s_%s.jpg", room, ts.Format("20060102_150405"))
}

// Save writes decoded image bytes and returns the filename it chose. The
// room name flows in from an untrusted payload, so anything that could
// traverse out of the vault directory is refused.
func (v *Vault) Save(room domain.RoomName, ts time.Time, img []byte) (string, error) {
	if room == "" || strings.Contains(string(room), "..") || strings.ContainsAny(string(room), `/\`) {
		return "", fmt.Errorf("%w: %q", ErrBadRoom, room)
	}
	name := Filename(room, ts)
	path := v.dir + "/" + name
	if err := afero.WriteFile(v.fs, path, img, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot %s: %w", name, err)
	}
	return name, nil
}

// HTTPFileSystem exposes the vault read-only for serving over HTTP.
func (v *Vault) HTTPFileSystem() http.FileSystem {
	return afero.NewHttpFs(afero.NewReadOnlyFs(afero.NewBasePathFs(v.fs, v.dir)))
}

// DecodeImage turns an uploaded image string into raw bytes. A data-URL
// style prefix up to and including the first comma is stripped before the
// remainder is base64-decoded.
func DecodeImage(data string) ([]byte, error) {
	if data == "" {
		return nil, ErrEmptyImage
	}
	if i := strings.Index(data, ","); i >= 0 {
		data = data[i+1:]
	}
	img, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
