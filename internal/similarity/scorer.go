// Package similarity scores how close a video sits to a user's taste
// graph. The backend is optional: when no graph database is configured
// the ranker runs engagement-only and every score is zero.
package similarity

import "context"

// Scorer returns a similarity score in [0, 1] for a user/video pair.
type Scorer interface {
	Score(ctx context.Context, userID, videoID string) (float64, error)
	Close(ctx context.Context) error
}

// Disabled is the no-op scorer used when no backend is configured.
type Disabled struct{}

// Score always returns zero.
func (Disabled) Score(context.Context, string, string) (float64, error) { return 0, nil }

// Close is a no-op.
func (Disabled) Close(context.Context) error { return nil }

// NewDisabled creates a scorer that contributes nothing to ranking.
func NewDisabled() Scorer {
	return Disabled{}
}
