package main

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port string

	GitHubToken  string
	GitHubOwner  string
	GitHubRepo   string
	GitHubBranch string
	GitHubAPIURL string
	GitHubRawURL string

	FileFolders           []string
	MemoFolder            string
	SnippetFolder         string
	PlaylistFolder        string
	LegacyPlaylistFolders []string

	MaxUploadMB   int
	InlineLimitMB int

	RedisURL      string
	YouTubeAPIKey string

	JWTSecret         []byte
	DashboardPassword string
	SessionTTLHours   int

	RateLimitRPS      int
	CORSAllowedOrigin string
}

func loadConfigFromEnv() (Config, error) {
	cfg := Config{
		Port: getenv("PORT", "8080"),

		GitHubToken:  getenv("GH_TOKEN", ""),
		GitHubOwner:  getenv("GH_OWNER", ""),
		GitHubRepo:   getenv("GH_REPO", ""),
		GitHubBranch: getenv("GH_BRANCH", "main"),
		GitHubAPIURL: getenv("GH_API_URL", "https://api.github.com"),
		GitHubRawURL: getenv("GH_RAW_URL", "https://raw.githubusercontent.com"),

		FileFolders:           splitList(getenv("FILE_FOLDERS", "files")),
		MemoFolder:            getenv("MEMO_FOLDER", "memo"),
		SnippetFolder:         getenv("SNIPPET_FOLDER", "snippets"),
		PlaylistFolder:        getenv("PLAYLIST_FOLDER", "playlists"),
		LegacyPlaylistFolders: splitList(getenv("LEGACY_PLAYLIST_FOLDERS", "")),

		MaxUploadMB:   getenvInt("MAX_UPLOAD_MB", 25),
		InlineLimitMB: getenvInt("INLINE_DL_LIMIT_MB", 2),

		RedisURL:      getenv("REDIS_URL", ""),
		YouTubeAPIKey: getenv("YOUTUBE_API_KEY", ""),

		JWTSecret:         []byte(getenv("JWT_SECRET", "")),
		DashboardPassword: getenv("DASHBOARD_PASSWORD", ""),
		SessionTTLHours:   getenvInt("SESSION_TTL_HOURS", 12),

		RateLimitRPS:      getenvInt("RATE_LIMIT_RPS", 20),
		CORSAllowedOrigin: getenv("CORS_ALLOWED_ORIGIN", "*"),
	}

	if cfg.GitHubToken == "" {
		return Config{}, errors.New("blackhole: GH_TOKEN is empty, cannot reach the repository")
	}
	if cfg.GitHubOwner == "" || cfg.GitHubRepo == "" {
		return Config{}, errors.New("blackhole: GH_OWNER and GH_REPO are required")
	}
	if cfg.DashboardPassword != "" && len(cfg.JWTSecret) == 0 {
		return Config{}, errors.New("blackhole: DASHBOARD_PASSWORD is set but JWT_SECRET is empty")
	}

	return cfg, nil
}

// authEnabled reports whether /api/* requires a session token.
func (c Config) authEnabled() bool {
	return c.DashboardPassword != ""
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	raw := getenv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
