package provider

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Resolver turns a video id into display metadata.
type Resolver interface {
	Resolve(ctx context.Context, videoID string) (TrackMeta, error)
}

type Server struct {
	resolver Resolver
}

func NewServer(resolver Resolver) *Server {
	return &Server{resolver: resolver}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	for _, mw := range middlewares {
		r.Use(mw)
	}
	r.Get("/resolve", s.handleResolve)
	return r
}
