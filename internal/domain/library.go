package domain

import (
	"regexp"
	"strings"
)

const (
	MediaVideo    = "video"
	MediaPlaylist = "playlist"
)

// LibraryItem is a shared media entry parents can assign to any kid.
type LibraryItem struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Type    string `json:"type"`
	AddedAt string `json:"added_at"`
}

var videoIDPattern = regexp.MustCompile(`(?:v=|/)([a-zA-Z0-9_-]{11})`)

// ExtractContent pulls the playable id out of a pasted YouTube URL and
// classifies it as a single video or a playlist. Unparseable input is kept
// verbatim and treated as a video id.
func ExtractContent(sourceURL string) (id, mediaType string) {
	if strings.Contains(sourceURL, "list=") {
		id = strings.SplitN(sourceURL[strings.Index(sourceURL, "list=")+5:], "&", 2)[0]
		return id, MediaPlaylist
	}
	if m := videoIDPattern.FindStringSubmatch(sourceURL); m != nil {
		return m[1], MediaVideo
	}
	return sourceURL, MediaVideo
}
