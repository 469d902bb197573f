package memo

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/Creative781/my-blackhole-app/internal/githubstore"
)

const fileName = "memo.md"

type Server struct {
	store githubstore.Store
	rdb   *redis.Client
	path  string
}

func NewServer(store githubstore.Store, rdb *redis.Client, folder string) *Server {
	return &Server{
		store: store,
		rdb:   rdb,
		path:  githubstore.JoinPath(folder, fileName),
	}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	for _, mw := range middlewares {
		r.Use(mw)
	}
	r.Get("/", s.handleLoad)
	r.Put("/", s.handleSave)
	r.Delete("/", s.handleClear)
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
