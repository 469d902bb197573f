package provider

import (
	"log"
	"net/http"
	"strings"
)

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("url"))
	if raw == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	videoID := ExtractVideoID(raw)
	if videoID == "" {
		writeError(w, http.StatusBadRequest, "not a valid video URL or id")
		return
	}

	meta, err := s.resolver.Resolve(r.Context(), videoID)
	if err != nil {
		log.Printf("blackhole: resolve %s: %v", videoID, err)
		writeError(w, http.StatusBadGateway, "could not resolve video metadata")
		return
	}
	writeJSON(w, http.StatusOK, meta)
}
