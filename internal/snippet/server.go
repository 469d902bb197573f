package snippet

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/Creative781/my-blackhole-app/internal/githubstore"
)

type Server struct {
	store githubstore.Store
	rdb   *redis.Client
	path  string // <snippet folder>/snippets.json
}

func NewServer(store githubstore.Store, rdb *redis.Client, folder string) *Server {
	return &Server{
		store: store,
		rdb:   rdb,
		path:  githubstore.JoinPath(folder, FileName),
	}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	for _, mw := range middlewares {
		r.Use(mw)
	}
	r.Get("/", s.handleList)
	r.Post("/", s.handleAdd)
	r.Put("/order", s.handleReorder)
	r.Delete("/{index}", s.handleDelete)
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
