package playlist

import (
	"encoding/json"
	"log"
	"net/http"
	gopath "path"
	"sort"
	"strings"
	"time"

	"github.com/Creative781/my-blackhole-app/internal/githubstore"
	"github.com/Creative781/my-blackhole-app/internal/provider"
)

type listedPlaylist struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
	SHA  string `json:"sha"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	seen := map[string]listedPlaylist{}
	folders := append([]string{s.folder}, s.legacyFolders...)
	for _, folder := range folders {
		entries, err := s.store.List(ctx, folder)
		if err != nil {
			// a best-effort listing: a broken legacy folder must not hide
			// the primary one
			log.Printf("blackhole: list playlists in %s: %v", folder, err)
			continue
		}
		for _, e := range entries {
			if e.Type != "file" || !strings.HasSuffix(strings.ToLower(e.Name), ".json") {
				continue
			}
			seen[e.Path] = listedPlaylist{
				Name: strings.TrimSuffix(e.Name, gopath.Ext(e.Name)),
				Path: e.Path,
				Size: e.Size,
				SHA:  e.SHA,
			}
		}
	}

	rows := make([]listedPlaylist, 0, len(seen))
	for _, row := range seen {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return strings.ToLower(rows[i].Name) < strings.ToLower(rows[j].Name)
	})
	writeJSON(w, http.StatusOK, map[string]any{"playlists": rows})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := s.playlistPath(w, r.URL.Query().Get("path"))
	if !ok {
		return
	}
	data, err := s.store.ReadRaw(ctx, p)
	if err != nil {
		log.Printf("blackhole: load playlist %s: %v", p, err)
		writeStoreError(w, err)
		return
	}
	pl := Decode(data, baseName(p))
	writeJSON(w, http.StatusOK, map[string]any{
		"playlist":      pl,
		"totalSeconds":  pl.TotalSeconds(),
		"beforeSeconds": pl.SecondsBefore(pl.CurrentIndex),
		"totalLabel":    FormatDuration(pl.TotalSeconds()),
	})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Name         string  `json:"name"`
		CurrentIndex int     `json:"currentIndex"`
		Tracks       []Track `json:"tracks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		writeError(w, http.StatusBadRequest, "playlist name is required")
		return
	}
	if len(body.Name) > 200 {
		writeError(w, http.StatusBadRequest, "playlist name is too long")
		return
	}

	pl := Playlist{
		Name:         body.Name,
		SavedAt:      time.Now().UTC().Format(time.RFC3339),
		CurrentIndex: body.CurrentIndex,
		Tracks:       body.Tracks,
	}
	pl.ClampIndex()

	p := githubstore.JoinPath(s.folder, FileFor(body.Name))
	sha, err := githubstore.Update(ctx, s.store, p, "Save playlist: "+body.Name, func(content []byte, found bool) ([]byte, error) {
		return pl.Encode()
	})
	if err != nil {
		log.Printf("blackhole: save playlist %s: %v", p, err)
		writeStoreError(w, err)
		return
	}

	s.publishEvent(ctx, "playlist.saved", map[string]any{"name": body.Name, "path": p})
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "path": p, "sha": sha})
}

func (s *Server) handleAppend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Path string `json:"path"`
		URL  string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	p, ok := s.playlistPath(w, body.Path)
	if !ok {
		return
	}
	videoID := provider.ExtractVideoID(body.URL)
	if videoID == "" {
		writeError(w, http.StatusBadRequest, "not a valid video URL or id")
		return
	}

	track, err := s.resolver.Resolve(ctx, videoID)
	if err != nil {
		log.Printf("blackhole: resolve %s: %v", videoID, err)
		writeError(w, http.StatusBadGateway, "could not resolve video metadata")
		return
	}

	var name string
	_, err = githubstore.Update(ctx, s.store, p, "Append track to playlist: "+baseName(p), func(content []byte, found bool) ([]byte, error) {
		pl := Playlist{Name: baseName(p), Tracks: []Track{}}
		if found {
			pl = Decode(content, baseName(p))
		}
		pl.Tracks = append(pl.Tracks, track)
		pl.SavedAt = time.Now().UTC().Format(time.RFC3339)
		name = pl.Name
		return pl.Encode()
	})
	if err != nil {
		log.Printf("blackhole: append to playlist %s: %v", p, err)
		writeStoreError(w, err)
		return
	}

	s.publishEvent(ctx, "playlist.trackAdded", map[string]any{"path": p, "track": track})
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "name": name, "track": track})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := s.playlistPath(w, r.URL.Query().Get("path"))
	if !ok {
		return
	}
	entry, err := s.store.Stat(ctx, p)
	if err != nil {
		if githubstore.IsNotFound(err) {
			// already gone: deleting twice is not an error
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
			return
		}
		writeStoreError(w, err)
		return
	}
	if err := s.store.Delete(ctx, p, entry.SHA, "Delete playlist: "+baseName(p)); err != nil {
		log.Printf("blackhole: delete playlist %s: %v", p, err)
		writeStoreError(w, err)
		return
	}

	s.publishEvent(ctx, "playlist.deleted", map[string]any{"path": p})
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// playlistPath validates a client-supplied path: it must be a .json file
// inside the configured playlist folders. Anything else is rejected before
// touching the store.
func (s *Server) playlistPath(w http.ResponseWriter, raw string) (string, bool) {
	p := githubstore.JoinPath(raw)
	if p == "" {
		writeError(w, http.StatusBadRequest, "missing playlist path")
		return "", false
	}
	if !strings.HasSuffix(strings.ToLower(p), ".json") || strings.Contains(p, "..") {
		writeError(w, http.StatusBadRequest, "invalid playlist path")
		return "", false
	}
	for _, folder := range append([]string{s.folder}, s.legacyFolders...) {
		if strings.HasPrefix(p, folder+"/") {
			return p, true
		}
	}
	writeError(w, http.StatusBadRequest, "path outside the playlist folders")
	return "", false
}

func baseName(p string) string {
	return strings.TrimSuffix(gopath.Base(p), gopath.Ext(p))
}
