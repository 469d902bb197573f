package memo

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/Creative781/my-blackhole-app/internal/githubstore"
)

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data, err := s.store.ReadRaw(ctx, s.path)
	if err != nil {
		if githubstore.IsNotFound(err) {
			// never saved yet: an empty memo, not an error
			writeJSON(w, http.StatusOK, map[string]any{"content": ""})
			return
		}
		log.Printf("blackhole: load memo: %v", err)
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"content": string(data)})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sha, err := githubstore.Update(ctx, s.store, s.path, "Update memo", func(content []byte, found bool) ([]byte, error) {
		return []byte(body.Content), nil
	})
	if err != nil {
		log.Printf("blackhole: save memo: %v", err)
		writeStoreError(w, err)
		return
	}

	s.publishEvent(ctx, "memo.updated", map[string]any{"length": len(body.Content)})
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "sha": sha})
}

// handleClear rewrites the memo as empty instead of deleting the object, so
// a clear concurrent with a save is still a plain version conflict.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	_, err := githubstore.Update(ctx, s.store, s.path, "Clear memo", func(content []byte, found bool) ([]byte, error) {
		return []byte{}, nil
	})
	if err != nil {
		log.Printf("blackhole: clear memo: %v", err)
		writeStoreError(w, err)
		return
	}

	s.publishEvent(ctx, "memo.cleared", nil)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
