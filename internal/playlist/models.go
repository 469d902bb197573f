package playlist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Track is one playable entry: an external video id plus cached display
// metadata. Duration is in seconds; 0 means unknown.
type Track struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	Duration     int    `json:"duration"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// Playlist is one collection object, stored as a single JSON file named
// after the sanitized playlist name.
type Playlist struct {
	Name         string  `json:"name"`
	SavedAt      string  `json:"saved_at,omitempty"`
	CurrentIndex int     `json:"current_index"`
	Tracks       []Track `json:"tracks"`
}

// ClampIndex keeps current_index inside [0, len(tracks)); an empty playlist
// resets to 0.
func (p *Playlist) ClampIndex() {
	if len(p.Tracks) == 0 {
		p.CurrentIndex = 0
		return
	}
	if p.CurrentIndex < 0 {
		p.CurrentIndex = 0
	}
	if p.CurrentIndex >= len(p.Tracks) {
		p.CurrentIndex = len(p.Tracks) - 1
	}
}

// TotalSeconds sums all track durations, counting unknown durations as 0.
func (p *Playlist) TotalSeconds() int {
	total := 0
	for _, t := range p.Tracks {
		total += t.Duration
	}
	return total
}

// SecondsBefore sums the durations of the tracks strictly before idx.
func (p *Playlist) SecondsBefore(idx int) int {
	if idx < 0 {
		idx = 0
	}
	if idx > len(p.Tracks) {
		idx = len(p.Tracks)
	}
	total := 0
	for _, t := range p.Tracks[:idx] {
		total += t.Duration
	}
	return total
}

// FormatDuration renders seconds as m:ss, or h:mm:ss from one hour up.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Characters allowed in a playlist file name: letters of any script,
// digits, space and _ - . ( ). Everything else collapses to "_".
var unsafeNameRx = regexp.MustCompile(`[^\p{L}\p{N} _\-.()]+`)

// SanitizeName maps a human-entered playlist name to a safe file name
// segment. The mapping is not injective: distinct names may collide onto
// the same segment, which the caller accepts (last save wins the path).
func SanitizeName(name string) string {
	s := unsafeNameRx.ReplaceAllString(strings.TrimSpace(name), "_")
	s = strings.Trim(s, " ._")
	if s == "" {
		return "playlist"
	}
	return s
}

// FileFor returns the repo file name for a playlist name.
func FileFor(name string) string {
	return SanitizeName(name) + ".json"
}

func defaultThumbnail(videoID string) string {
	return fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", videoID)
}

type trackJSON struct {
	VideoID      string      `json:"video_id"`
	Title        string      `json:"title"`
	Duration     json.Number `json:"duration"`
	ThumbnailURL string      `json:"thumbnail_url"`
}

type playlistJSON struct {
	Name         string      `json:"name"`
	SavedAt      string      `json:"saved_at"`
	CurrentIndex int         `json:"current_index"`
	Tracks       []trackJSON `json:"tracks"`
}

// Decode reads a stored playlist leniently: either the canonical object
// form or a legacy bare array of tracks. Unusable rows are skipped, missing
// display fields get defaults, and the index is clamped. fallbackName is
// used when the object carries no name (typically the file base name).
func Decode(data []byte, fallbackName string) Playlist {
	p := Playlist{Name: fallbackName, Tracks: []Track{}}

	var obj playlistJSON
	if err := json.Unmarshal(data, &obj); err == nil && (obj.Tracks != nil || obj.Name != "") {
		if obj.Name != "" {
			p.Name = obj.Name
		}
		p.SavedAt = obj.SavedAt
		p.CurrentIndex = obj.CurrentIndex
		p.Tracks = decodeTracks(obj.Tracks)
		p.ClampIndex()
		return p
	}

	var arr []trackJSON
	if err := json.Unmarshal(data, &arr); err == nil {
		p.Tracks = decodeTracks(arr)
	}
	p.ClampIndex()
	return p
}

func decodeTracks(rows []trackJSON) []Track {
	tracks := make([]Track, 0, len(rows))
	for _, r := range rows {
		if r.VideoID == "" {
			continue
		}
		t := Track{
			VideoID:      r.VideoID,
			Title:        r.Title,
			ThumbnailURL: r.ThumbnailURL,
		}
		if t.Title == "" {
			t.Title = "Video " + r.VideoID
		}
		if t.ThumbnailURL == "" {
			t.ThumbnailURL = defaultThumbnail(r.VideoID)
		}
		if d, err := r.Duration.Int64(); err == nil && d > 0 {
			t.Duration = int(d)
		} else if fl, err := r.Duration.Float64(); err == nil && fl > 0 {
			t.Duration = int(fl)
		}
		tracks = append(tracks, t)
	}
	return tracks
}

// Encode serializes deterministically: stable key order, indented UTF-8,
// user text untouched.
func (p Playlist) Encode() ([]byte, error) {
	if p.Tracks == nil {
		p.Tracks = []Track{}
	}
	p.ClampIndex()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
