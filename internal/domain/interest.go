package domain

import "time"

// Interest accrual weights. The engagement formula
// (watch_time*0.6 + likes*0.4) lives entirely here, at the accumulation
// layer: the ranker only averages the resulting per-category scores and
// never re-applies these weights.
const (
	// WatchWeight scales the watch fraction added per qualifying watch.
	WatchWeight = 0.6
	// LikeWeight is the fixed delta added per like.
	LikeWeight = 0.4
	// WatchThreshold is the minimum watch fraction (inclusive) for a watch
	// to count as an engagement signal and as a view.
	WatchThreshold = 0.30
)

// CategoryInterest is the accumulated engagement of a user with one
// category. Created lazily on the first qualifying interaction and only
// ever adjusted through the accrual rules below.
type CategoryInterest struct {
	UserID           string    `json:"user_id"`
	CategoryID       string    `json:"category_id"`
	Score            float64   `json:"score"`
	InteractionCount int       `json:"interaction_count"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// QualifiesForInterest reports whether a watch fraction crosses the
// threshold that gates interest accrual and view counting.
func QualifiesForInterest(watchTime float64) bool {
	return watchTime >= WatchThreshold
}

// WatchInterestDelta returns the interest delta a watch contributes to each
// category tagged on the watched video. Sub-threshold watches contribute
// nothing (the watch row is still stored for history).
func WatchInterestDelta(watchTime float64) float64 {
	clamped := ClampWatchTime(watchTime)
	if !QualifiesForInterest(clamped) {
		return 0
	}
	return clamped * WatchWeight
}

// LikeInterestDelta returns the interest delta a like contributes to each
// category tagged on the liked video. Unlikes never subtract; negative
// signals are deliberately not modeled.
func LikeInterestDelta() float64 {
	return LikeWeight
}

// MeanInterest averages the interest scores for the given category IDs,
// treating absent entries as zero. This is the engagement component of a
// video's ranking score.
func MeanInterest(scores map[string]float64, categoryIDs []string) float64 {
	if len(categoryIDs) == 0 {
		return 0
	}
	var sum float64
	for _, id := range categoryIDs {
		sum += scores[id]
	}
	return sum / float64(len(categoryIDs))
}

// BlendScore combines the engagement and similarity components:
// alpha*engagement + (1-alpha)*similarity. With alpha = 1 the similarity
// signal is disabled entirely.
func BlendScore(alpha, engagement, similarity float64) float64 {
	return alpha*engagement + (1-alpha)*similarity
}
