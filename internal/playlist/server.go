package playlist

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/Creative781/my-blackhole-app/internal/githubstore"
)

// TrackResolver turns an external video id into display metadata. Lookup
// failures mean the id is unresolvable, not that the whole request failed.
type TrackResolver interface {
	Resolve(ctx context.Context, videoID string) (Track, error)
}

type Server struct {
	store         githubstore.Store
	resolver      TrackResolver
	rdb           *redis.Client
	folder        string
	legacyFolders []string
}

func NewServer(store githubstore.Store, resolver TrackResolver, rdb *redis.Client, folder string, legacyFolders []string) *Server {
	return &Server{
		store:         store,
		resolver:      resolver,
		rdb:           rdb,
		folder:        githubstore.JoinPath(folder),
		legacyFolders: legacyFolders,
	}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	for _, mw := range middlewares {
		r.Use(mw)
	}
	r.Get("/", s.handleList)
	r.Get("/file", s.handleLoad)
	r.Put("/", s.handleSave)
	r.Post("/append", s.handleAppend)
	r.Delete("/", s.handleDelete)
	return r
}

func (s *Server) publishEvent(ctx context.Context, eventType string, payload any) {
	if s.rdb == nil {
		return
	}
	body := map[string]any{
		"type":    eventType,
		"payload": payload,
	}
	data, err := json.Marshal(body)
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, "broadcast", string(data)).Err(); err != nil {
		log.Printf("blackhole: publish %s: %v", eventType, err)
	}
}
