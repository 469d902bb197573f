package snippet

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Creative781/my-blackhole-app/internal/githubstore"
)

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	obj, err := s.store.Read(ctx, s.path)
	if err != nil {
		if githubstore.IsNotFound(err) {
			writeJSON(w, http.StatusOK, map[string]any{"items": []Item{}})
			return
		}
		log.Printf("blackhole: list snippets: %v", err)
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": Decode(obj.Content)})
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Text string `json:"text"`
		Hint string `json:"hint"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	text, hint := body.Text, body.Hint
	if hint == "" {
		text, hint = SplitInput(body.Text)
	}
	if text == "" {
		writeError(w, http.StatusBadRequest, "empty text is not registered")
		return
	}
	item := Item{Text: text, Hint: hint}

	var items []Item
	_, err := githubstore.Update(ctx, s.store, s.path, "Update snippets", func(content []byte, found bool) ([]byte, error) {
		items = append(Decode(content), item)
		return Encode(items)
	})
	if err != nil {
		log.Printf("blackhole: add snippet: %v", err)
		writeStoreError(w, err)
		return
	}

	s.publishEvent(ctx, "snippet.added", item)
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "items": items})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || idx < 0 {
		writeError(w, http.StatusBadRequest, "invalid index")
		return
	}

	var items []Item
	_, err = githubstore.Update(ctx, s.store, s.path, "Update snippets", func(content []byte, found bool) ([]byte, error) {
		cur := Decode(content)
		// Re-checked on every attempt: a conflict retry sees fresh content,
		// so a stale index never deletes the wrong element.
		if idx >= len(cur) {
			return nil, fmt.Errorf("index %d out of range (list has %d items): %w", idx, len(cur), errIndexGone)
		}
		items = append(cur[:idx], cur[idx+1:]...)
		return Encode(items)
	})
	if err != nil {
		if isIndexGone(err) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		log.Printf("blackhole: delete snippet: %v", err)
		writeStoreError(w, err)
		return
	}

	s.publishEvent(ctx, "snippet.deleted", map[string]any{"index": idx})
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "items": items})
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	items := make([]Item, 0, len(body.Items))
	for _, raw := range body.Items {
		it, ok := Normalize(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid snippet item")
			return
		}
		items = append(items, it)
	}

	_, err := githubstore.Update(ctx, s.store, s.path, "Update snippets", func(content []byte, found bool) ([]byte, error) {
		return Encode(items)
	})
	if err != nil {
		log.Printf("blackhole: reorder snippets: %v", err)
		writeStoreError(w, err)
		return
	}

	s.publishEvent(ctx, "snippet.reordered", map[string]any{"count": len(items)})
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "items": items})
}
