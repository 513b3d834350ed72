package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/reelfeedapp/reelfeed-server/internal/domain"
	"github.com/reelfeedapp/reelfeed-server/internal/similarity"
	"github.com/reelfeedapp/reelfeed-server/internal/store"
)

// Recommender selects and ranks home-feed candidates. Candidate selection
// and ranking are separate stages: selection bounds the pool by the user's
// parent interests, ranking orders it by accrued engagement.
type Recommender struct {
	store          store.Store
	scorer         similarity.Scorer
	candidateLimit int
	alpha          float64
	simTimeout     time.Duration
	logger         *slog.Logger
}

// RecommenderOptions configures a Recommender.
type RecommenderOptions struct {
	// CandidateLimit bounds the candidate pool. Zero means 200.
	CandidateLimit int
	// Alpha blends engagement and similarity; 1 disables similarity.
	Alpha float64
	// SimilarityTimeout is the per-video budget for similarity lookups.
	// Zero means 500ms.
	SimilarityTimeout time.Duration
}

// NewRecommender creates a recommender. A nil scorer disables the
// similarity signal regardless of alpha.
func NewRecommender(store store.Store, scorer similarity.Scorer, opts RecommenderOptions, logger *slog.Logger) *Recommender {
	if opts.CandidateLimit <= 0 {
		opts.CandidateLimit = 200
	}
	if opts.SimilarityTimeout <= 0 {
		opts.SimilarityTimeout = 500 * time.Millisecond
	}
	if scorer == nil {
		scorer = similarity.NewDisabled()
	}
	return &Recommender{
		store:          store,
		scorer:         scorer,
		candidateLimit: opts.CandidateLimit,
		alpha:          opts.Alpha,
		simTimeout:     opts.SimilarityTimeout,
		logger:         logger,
	}
}

// SelectCandidates gathers the user's home-feed candidate pool: public
// videos tagged under their parent interests, minus their own uploads and
// anything already watched past the qualifying threshold. Users with no
// interests, and interest pools that come back empty, fall back to the
// popularity pool under the same exclusions.
func (r *Recommender) SelectCandidates(ctx context.Context, userID string) ([]*domain.Video, error) {
	parentIDs, err := r.store.GetUserParentInterests(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get parent interests: %w", err)
	}

	if len(parentIDs) > 0 {
		candidates, err := r.store.ListInterestCandidates(ctx, userID, parentIDs, r.candidateLimit)
		if err != nil {
			return nil, fmt.Errorf("list interest candidates: %w", err)
		}
		if len(candidates) > 0 {
			return candidates, nil
		}
	}

	candidates, err := r.store.ListPopularCandidates(ctx, userID, r.candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("list popular candidates: %w", err)
	}
	return candidates, nil
}

// SelectFollowingCandidates gathers public videos from the creators the
// user follows. Users following nobody get an empty pool, not a fallback.
func (r *Recommender) SelectFollowingCandidates(ctx context.Context, userID string) ([]*domain.Video, error) {
	followeeIDs, err := r.store.ListFolloweeIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list followees: %w", err)
	}
	if len(followeeIDs) == 0 {
		return nil, nil
	}
	candidates, err := r.store.ListCreatorCandidates(ctx, followeeIDs, r.candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("list creator candidates: %w", err)
	}
	return candidates, nil
}

// SelectCategoryCandidates gathers public videos tagged under one parent
// category.
func (r *Recommender) SelectCategoryCandidates(ctx context.Context, parentCategoryID string) ([]*domain.Video, error) {
	candidates, err := r.store.ListCategoryCandidates(ctx, parentCategoryID, r.candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("list category candidates: %w", err)
	}
	return candidates, nil
}

// Rank orders candidates by blended score, descending. The engagement
// component is the mean of the user's accrued interest over the video's
// leaf tags; the similarity component is consulted only when alpha < 1,
// and a video whose lookup fails keeps its plain engagement score so
// backend trouble never penalizes it. Ties break by recency then ID
// so identical inputs always produce identical pages.
func (r *Recommender) Rank(ctx context.Context, userID string, candidates []*domain.Video) ([]*domain.RankedVideo, error) {
	scores, err := r.store.GetInterestScores(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get interest scores: %w", err)
	}

	ranked := make([]*domain.RankedVideo, 0, len(candidates))
	for _, video := range candidates {
		engagement := domain.MeanInterest(scores, video.CategoryIDs)
		score := engagement
		if r.alpha < 1 {
			if sim, ok := r.similarityScore(ctx, userID, video.ID); ok {
				score = domain.BlendScore(r.alpha, engagement, sim)
			}
		}
		ranked = append(ranked, &domain.RankedVideo{
			Video: video,
			Score: score,
		})
	}

	slices.SortStableFunc(ranked, func(a, b *domain.RankedVideo) int {
		if a.Score != b.Score {
			if a.Score > b.Score {
				return -1
			}
			return 1
		}
		if !a.Video.CreatedAt.Equal(b.Video.CreatedAt) {
			if a.Video.CreatedAt.After(b.Video.CreatedAt) {
				return -1
			}
			return 1
		}
		if a.Video.ID > b.Video.ID {
			return -1
		}
		if a.Video.ID < b.Video.ID {
			return 1
		}
		return 0
	})

	return ranked, nil
}

// similarityScore asks the similarity backend with a hard time budget.
// Failures are absorbed: the video falls back to its engagement-only
// score rather than being blended against a zero it never earned.
func (r *Recommender) similarityScore(ctx context.Context, userID, videoID string) (float64, bool) {
	scoreCtx, cancel := context.WithTimeout(ctx, r.simTimeout)
	defer cancel()

	score, err := r.scorer.Score(scoreCtx, userID, videoID)
	if err != nil {
		if r.logger != nil {
			r.logger.Debug("Similarity lookup failed, ranking engagement-only",
				"user_id", userID,
				"video_id", videoID,
				"error", err,
			)
		}
		return 0, false
	}
	return score, true
}
