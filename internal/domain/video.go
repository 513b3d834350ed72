package domain

import "time"

// Video represents an uploaded video's metadata. Media files themselves are
// handled by an external pipeline; the engine only reads metadata, counters
// and visibility flags.
type Video struct {
	ID           string `json:"id"`
	CreatorID    string `json:"creator_id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	DurationSecs int    `json:"duration_secs"`

	// Counters are mutated only through atomic store operations, never by
	// read-modify-write on this struct.
	Views int64 `json:"views"`
	Likes int64 `json:"likes"`

	IsPublic  bool `json:"is_public"`
	IsPremium bool `json:"is_premium"`

	// CategoryIDs are the leaf tags; ParentCategoryIDs is derived from them
	// and kept consistent on tagging.
	CategoryIDs       []string `json:"category_ids"`
	ParentCategoryIDs []string `json:"parent_category_ids"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RankedVideo pairs a video with its ranking score for feed output.
type RankedVideo struct {
	Video *Video  `json:"video"`
	Score float64 `json:"score"`
}
