package domain

import (
	"math"
	"time"
)

// Watch is the atomic record of a viewing interaction. Watches are
// append-only history; WatchTime is the fraction of the video watched,
// clamped to [0,1] before storage.
type Watch struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"user_id"`
	VideoID             string    `json:"video_id"`
	WatchTime           float64   `json:"watch_time"`
	WatchedDurationSecs int       `json:"watched_duration_secs"`
	CreatedAt           time.Time `json:"created_at"`
}

// Like records that a user liked a video. Presence of the row is the
// authoritative "liked" state; removal is an unlike.
type Like struct {
	UserID    string    `json:"user_id"`
	VideoID   string    `json:"video_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Follow records that follower follows followee. Self-follows are rejected
// before this struct is ever constructed.
type Follow struct {
	FollowerID string    `json:"follower_id"`
	FolloweeID string    `json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// EventKind identifies an interaction event variant.
type EventKind string

// The closed set of interaction event kinds.
const (
	EventWatch  EventKind = "watch"
	EventLike   EventKind = "like"
	EventFollow EventKind = "follow"
)

// Valid checks if the event kind is one of the known variants.
func (k EventKind) Valid() bool {
	switch k {
	case EventWatch, EventLike, EventFollow:
		return true
	default:
		return false
	}
}

// NewWatch builds a watch record with the watch time clamped and the
// watched duration derived from the video length.
func NewWatch(id, userID, videoID string, watchTime float64, videoDurationSecs int, now time.Time) *Watch {
	clamped := ClampWatchTime(watchTime)
	return &Watch{
		ID:                  id,
		UserID:              userID,
		VideoID:             videoID,
		WatchTime:           clamped,
		WatchedDurationSecs: int(clamped * float64(videoDurationSecs)),
		CreatedAt:           now,
	}
}

// ClampWatchTime clamps a watch fraction to [0,1]. NaN is the caller's
// responsibility to reject first; this function maps it to 0 so a missed
// check can never poison a stored score.
func ClampWatchTime(watchTime float64) float64 {
	if math.IsNaN(watchTime) {
		return 0
	}
	return math.Min(1, math.Max(0, watchTime))
}

// InvalidWatchTime reports whether a raw watch fraction must be rejected
// outright rather than clamped.
func InvalidWatchTime(watchTime float64) bool {
	return math.IsNaN(watchTime) || math.IsInf(watchTime, -1)
}
