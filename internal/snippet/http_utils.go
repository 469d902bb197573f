package snippet

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Creative781/my-blackhole-app/internal/githubstore"
)

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, githubstore.ErrVersionConflict):
		writeError(w, http.StatusConflict, "the snippet list changed underneath you, reload and retry")
	case errors.Is(err, githubstore.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, githubstore.ErrAccessDenied):
		writeError(w, http.StatusBadGateway, "repository access denied, check the configured token")
	case errors.Is(err, githubstore.ErrTransient):
		writeError(w, http.StatusBadGateway, "storage temporarily unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "storage error")
	}
}
