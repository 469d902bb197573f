package webhard

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

func storeErrorMessage(err error) string {
	switch {
	case errors.Is(err, githubstore.ErrVersionConflict):
		return "the file changed underneath you, reload and retry"
	case errors.Is(err, githubstore.ErrAlreadyExists):
		return "a file with that name already exists"
	case errors.Is(err, githubstore.ErrNotFound):
		return "file not found"
	case errors.Is(err, githubstore.ErrAccessDenied):
		return "repository access denied, check the configured token"
	case errors.Is(err, githubstore.ErrTransient):
		return "storage temporarily unavailable"
	default:
		return "storage error"
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, githubstore.ErrVersionConflict), errors.Is(err, githubstore.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, githubstore.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, githubstore.ErrAccessDenied), errors.Is(err, githubstore.ErrTransient):
		status = http.StatusBadGateway
	}
	writeError(w, status, storeErrorMessage(err))
}
