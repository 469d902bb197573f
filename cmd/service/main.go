package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/Creative781/my-blackhole-app/internal/githubstore"
	"github.com/Creative781/my-blackhole-app/internal/memo"
	"github.com/Creative781/my-blackhole-app/internal/playlist"
	"github.com/Creative781/my-blackhole-app/internal/provider"
	"github.com/Creative781/my-blackhole-app/internal/snippet"
	"github.com/Creative781/my-blackhole-app/internal/webhard"
)

func main() {
	cfg, err := loadConfigFromEnv()
	if err != nil {
		log.Fatal(err)
	}

	store := githubstore.NewClient(
		cfg.GitHubAPIURL, cfg.GitHubRawURL,
		cfg.GitHubOwner, cfg.GitHubRepo, cfg.GitHubBranch,
		cfg.GitHubToken,
	)

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("blackhole: invalid REDIS_URL: %v", err)
		}
		rdb = redis.NewClient(opt)
		defer rdb.Close()
	}

	yt := provider.NewYouTubeClient(cfg.YouTubeAPIKey, rdb)

	private, err := store.RepoPrivate(context.Background())
	if err != nil {
		log.Printf("blackhole: repo visibility check: %v", err)
	}

	r := setupRouter(cfg, store, rdb, yt, !private)

	log.Printf("blackhole listening on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("blackhole: %v", err)
	}
}

func setupRouter(cfg Config, store githubstore.Store, rdb *redis.Client, yt provider.Resolver, rawLinks bool) *chi.Mux {
	r := chi.NewRouter()

	r.Use(corsMiddleware(cfg.CORSAllowedOrigin))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(rateLimitMiddleware(cfg.RateLimitRPS))
	r.Use(requestLogMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"service": "blackhole",
		})
	})

	api := chi.NewRouter()
	api.Use(middleware.Timeout(30 * time.Second))

	api.Group(func(r chi.Router) {
		r.Use(loginRateLimitMiddleware)
		r.Post("/session", handleSession(cfg))
	})

	api.Group(func(r chi.Router) {
		if cfg.authEnabled() {
			r.Use(jwtAuthMiddleware(cfg.JWTSecret))
		}

		maxUpload := int64(cfg.MaxUploadMB) << 20
		inlineLimit := int64(cfg.InlineLimitMB) << 20

		files := webhard.NewServer(store, rdb, cfg.FileFolders, maxUpload, inlineLimit, rawLinks)
		// the multipart envelope adds a little on top of the payload
		r.Mount("/files", files.Router(bodySizeLimitMiddleware(maxUpload+1<<20)))

		memos := memo.NewServer(store, rdb, cfg.MemoFolder)
		r.Mount("/memo", memos.Router(bodySizeLimitMiddleware(1<<20)))

		snippets := snippet.NewServer(store, rdb, cfg.SnippetFolder)
		r.Mount("/snippets", snippets.Router(bodySizeLimitMiddleware(256<<10)))

		playlists := playlist.NewServer(store, trackResolver{yt}, rdb, cfg.PlaylistFolder, cfg.LegacyPlaylistFolders)
		r.Mount("/playlists", playlists.Router(bodySizeLimitMiddleware(1<<20)))

		resolve := provider.NewServer(yt)
		r.Mount("/provider", resolve.Router())
	})

	r.Mount("/api", api)
	return r
}

// trackResolver adapts the metadata client to the playlist package's
// resolver interface.
type trackResolver struct {
	yt provider.Resolver
}

func (tr trackResolver) Resolve(ctx context.Context, videoID string) (playlist.Track, error) {
	meta, err := tr.yt.Resolve(ctx, videoID)
	if err != nil {
		return playlist.Track{}, err
	}
	return playlist.Track{
		VideoID:      meta.VideoID,
		Title:        meta.Title,
		Duration:     meta.Duration,
		ThumbnailURL: meta.ThumbnailURL,
	}, nil
}

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
