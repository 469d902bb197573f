package webhard

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
	store       githubstore.Store
	rdb         *redis.Client
	folders     []string // folders[0] is the upload target
	maxUpload   int64    // bytes, per file
	inlineLimit int64    // bytes, data-URI ceiling
	rawLinks    bool     // raw URLs only work for public repos
}

func NewServer(store githubstore.Store, rdb *redis.Client, folders []string, maxUpload, inlineLimit int64, rawLinks bool) *Server {
	clean := make([]string, 0, len(folders))
	for _, f := range folders {
		if p := githubstore.JoinPath(f); p != "" {
			clean = append(clean, p)
		}
	}
	if len(clean) == 0 {
		clean = []string{"files"}
	}
	return &Server{
		store:       store,
		rdb:         rdb,
		folders:     clean,
		maxUpload:   maxUpload,
		inlineLimit: inlineLimit,
		rawLinks:    rawLinks,
	}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	for _, mw := range middlewares {
		r.Use(mw)
	}
	r.Get("/", s.handleList)
	r.Post("/", s.handleUpload)
	r.Get("/download", s.handleDownload)
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
