package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/redis/go-redis/v9"
)

// Video id extraction: a watch URL, short link, embed link or a bare
// 11-character id all resolve to the same id.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtu\.be/([A-Za-z0-9_\-]{11})`),
	regexp.MustCompile(`[?&]v=([A-Za-z0-9_\-]{11})`),
	regexp.MustCompile(`/(?:embed|shorts)/([A-Za-z0-9_\-]{11})`),
	regexp.MustCompile(`^([A-Za-z0-9_\-]{11})$`),
}

// ExtractVideoID pulls a YouTube video id out of a URL or a bare id.
// Returns "" when nothing matches.
func ExtractVideoID(raw string) string {
	for _, rx := range videoIDPatterns {
		if m := rx.FindStringSubmatch(raw); m != nil {
			return m[1]
		}
	}
	return ""
}

const metaCacheTTL = 24 * time.Hour

type YouTubeClient struct {
	apiKey    string
	videosURL string
	oembedURL string
	rdb       *redis.Client
	http      *http.Client
}

// NewYouTubeClient builds a metadata client. apiKey may be empty, in which
// case lookups fall back to the keyless oEmbed endpoint (no duration
// there). rdb may be nil to disable caching.
func NewYouTubeClient(apiKey string, rdb *redis.Client) *YouTubeClient {
	return &YouTubeClient{
		apiKey:    apiKey,
		videosURL: "https://www.googleapis.com/youtube/v3/videos",
		oembedURL: "https://www.youtube.com/oembed",
		rdb:       rdb,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func cacheKey(videoID string) string {
	return "yt:meta:" + videoID
}

// Resolve returns display metadata for a video id, consulting the cache
// first. A lookup failure is the caller's problem to surface; nothing is
// cached for failures.
func (c *YouTubeClient) Resolve(ctx context.Context, videoID string) (TrackMeta, error) {
	if meta, ok := c.cacheGet(ctx, videoID); ok {
		return meta, nil
	}

	var meta TrackMeta
	var err error
	if c.apiKey != "" {
		meta, err = c.fetchVideosAPI(ctx, videoID)
	} else {
		meta, err = c.fetchOEmbed(ctx, videoID)
	}
	if err != nil {
		return TrackMeta{}, err
	}

	if meta.ThumbnailURL == "" {
		meta.ThumbnailURL = fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", videoID)
	}
	if meta.Title == "" {
		meta.Title = "Video " + videoID
	}
	c.cacheSet(ctx, meta)
	return meta, nil
}

func (c *YouTubeClient) cacheGet(ctx context.Context, videoID string) (TrackMeta, bool) {
	if c.rdb == nil {
		return TrackMeta{}, false
	}
	data, err := c.rdb.Get(ctx, cacheKey(videoID)).Bytes()
	if err != nil {
		return TrackMeta{}, false
	}
	var meta TrackMeta
	if err := json.Unmarshal(data, &meta); err != nil || meta.VideoID == "" {
		return TrackMeta{}, false
	}
	return meta, true
}

func (c *YouTubeClient) cacheSet(ctx context.Context, meta TrackMeta) {
	if c.rdb == nil {
		return
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(meta.VideoID), data, metaCacheTTL).Err(); err != nil {
		log.Printf("blackhole: cache video meta %s: %v", meta.VideoID, err)
	}
}

type ytVideosResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title      string `json:"title"`
			Thumbnails struct {
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
				Medium struct {
					URL string `json:"url"`
				} `json:"medium"`
				High struct {
					URL string `json:"url"`
				} `json:"high"`
			} `json:"thumbnails"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

func (c *YouTubeClient) fetchVideosAPI(ctx context.Context, videoID string) (TrackMeta, error) {
	val := url.Values{}
	val.Set("part", "snippet,contentDetails")
	val.Set("id", videoID)
	val.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.videosURL+"?"+val.Encode(), nil)
	if err != nil {
		return TrackMeta{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return TrackMeta{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return TrackMeta{}, fmt.Errorf("youtube videos status %d", resp.StatusCode)
	}

	var body ytVideosResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return TrackMeta{}, err
	}
	if len(body.Items) == 0 {
		return TrackMeta{}, fmt.Errorf("video %s not found", videoID)
	}

	it := body.Items[0]
	thumbs := it.Snippet.Thumbnails
	thumb := thumbs.High.URL
	if thumb == "" {
		thumb = thumbs.Medium.URL
	}
	if thumb == "" {
		thumb = thumbs.Default.URL
	}

	return TrackMeta{
		VideoID:      videoID,
		Title:        it.Snippet.Title,
		Duration:     parseISO8601Duration(it.ContentDetails.Duration),
		ThumbnailURL: thumb,
	}, nil
}

type ytOEmbedResponse struct {
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail_url"`
}

func (c *YouTubeClient) fetchOEmbed(ctx context.Context, videoID string) (TrackMeta, error) {
	val := url.Values{}
	val.Set("url", "https://www.youtube.com/watch?v="+videoID)
	val.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.oembedURL+"?"+val.Encode(), nil)
	if err != nil {
		return TrackMeta{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return TrackMeta{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return TrackMeta{}, fmt.Errorf("youtube oembed status %d", resp.StatusCode)
	}

	var body ytOEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return TrackMeta{}, err
	}

	// oEmbed carries no duration
	return TrackMeta{
		VideoID:      videoID,
		Title:        body.Title,
		ThumbnailURL: body.ThumbnailURL,
	}, nil
}

func parseISO8601Duration(duration string) int {
	re := regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)
	matches := re.FindStringSubmatch(duration)
	if len(matches) < 4 {
		return 0
	}

	var h, m, s int
	fmt.Sscanf(matches[1], "%d", &h)
	fmt.Sscanf(matches[2], "%d", &m)
	fmt.Sscanf(matches[3], "%d", &s)

	return h*3600 + m*60 + s
}
