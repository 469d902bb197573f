package provider

type TrackMeta struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	Duration     int    `json:"duration"` // seconds, 0 when unknown
	ThumbnailURL string `json:"thumbnail_url"`
}
