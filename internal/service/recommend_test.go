package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelfeedapp/reelfeed-server/internal/domain"
	"github.com/reelfeedapp/reelfeed-server/internal/store"
)

// fixedScorer returns the same similarity score for every pair.
type fixedScorer struct {
	score float64
	err   error
}

func (f fixedScorer) Score(context.Context, string, string) (float64, error) { return f.score, f.err }
func (f fixedScorer) Close(context.Context) error                           { return nil }

func setupTestRecommender(t *testing.T, opts RecommenderOptions) (*Recommender, store.Store) {
	t.Helper()
	s := setupTestStore(t)
	return NewRecommender(s, nil, opts, testLogger()), s
}

func seedRecommendFixture(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()

	createTestUser(t, s, "usr-viewer")
	createTestUser(t, s, "usr-creator")
	createTestCategoryTree(t, s, "pcat-music", "cat-guitar")
	createTestCategoryTree(t, s, "pcat-sports", "cat-tennis")
	require.NoError(t, s.SetUserParentInterests(ctx, "usr-viewer", []string{"pcat-music"}))

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	createTestVideo(t, s, "vid-music-1", "usr-creator", []string{"cat-guitar"}, []string{"pcat-music"}, base)
	createTestVideo(t, s, "vid-music-2", "usr-creator", []string{"cat-guitar"}, []string{"pcat-music"}, base.Add(time.Hour))
	createTestVideo(t, s, "vid-tennis", "usr-creator", []string{"cat-tennis"}, []string{"pcat-sports"}, base)
}

func TestRecommender_SelectCandidates_ByParentInterest(t *testing.T) {
	rec, s := setupTestRecommender(t, RecommenderOptions{Alpha: 1})
	seedRecommendFixture(t, s)

	candidates, err := rec.SelectCandidates(context.Background(), "usr-viewer")
	require.NoError(t, err)

	ids := candidateIDs(candidates)
	assert.ElementsMatch(t, []string{"vid-music-1", "vid-music-2"}, ids)
}

func TestRecommender_SelectCandidates_ExcludesOwnUploads(t *testing.T) {
	rec, s := setupTestRecommender(t, RecommenderOptions{Alpha: 1})
	seedRecommendFixture(t, s)
	ctx := context.Background()

	createTestVideo(t, s, "vid-own", "usr-viewer", []string{"cat-guitar"}, []string{"pcat-music"},
		time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC))

	candidates, err := rec.SelectCandidates(ctx, "usr-viewer")
	require.NoError(t, err)
	assert.NotContains(t, candidateIDs(candidates), "vid-own")
}

func TestRecommender_SelectCandidates_ExcludesWatched(t *testing.T) {
	rec, s := setupTestRecommender(t, RecommenderOptions{Alpha: 1})
	seedRecommendFixture(t, s)
	ctx := context.Background()

	// Watched past the threshold: excluded. A skim stays in the pool.
	require.NoError(t, s.CreateWatch(ctx, domain.NewWatch("wat-1", "usr-viewer", "vid-music-1", 0.8, 120, time.Now())))
	require.NoError(t, s.CreateWatch(ctx, domain.NewWatch("wat-2", "usr-viewer", "vid-music-2", 0.1, 120, time.Now())))

	candidates, err := rec.SelectCandidates(ctx, "usr-viewer")
	require.NoError(t, err)
	assert.Equal(t, []string{"vid-music-2"}, candidateIDs(candidates))
}

func TestRecommender_SelectCandidates_PopularityFallback(t *testing.T) {
	rec, s := setupTestRecommender(t, RecommenderOptions{Alpha: 1})
	seedRecommendFixture(t, s)
	ctx := context.Background()

	// No parent interests: fall back to popularity across all categories.
	createTestUser(t, s, "usr-fresh")

	require.NoError(t, s.IncrementVideoViews(ctx, "vid-tennis"))
	require.NoError(t, s.IncrementVideoViews(ctx, "vid-tennis"))
	require.NoError(t, s.IncrementVideoViews(ctx, "vid-tennis"))
	require.NoError(t, s.IncrementVideoViews(ctx, "vid-music-1"))

	candidates, err := rec.SelectCandidates(ctx, "usr-fresh")
	require.NoError(t, err)

	ids := candidateIDs(candidates)
	require.NotEmpty(t, ids)
	assert.Equal(t, "vid-tennis", ids[0])
	assert.Contains(t, ids, "vid-music-1")
}

func TestRecommender_SelectCandidates_EmptyInterestPoolFallsBack(t *testing.T) {
	rec, s := setupTestRecommender(t, RecommenderOptions{Alpha: 1})
	ctx := context.Background()

	createTestUser(t, s, "usr-viewer")
	createTestUser(t, s, "usr-creator")
	createTestCategoryTree(t, s, "pcat-music", "cat-guitar")
	createTestCategoryTree(t, s, "pcat-sports", "cat-tennis")

	// Interested in music, but only sports videos exist.
	require.NoError(t, s.SetUserParentInterests(ctx, "usr-viewer", []string{"pcat-music"}))
	createTestVideo(t, s, "vid-tennis", "usr-creator", []string{"cat-tennis"}, []string{"pcat-sports"}, time.Now())

	candidates, err := rec.SelectCandidates(ctx, "usr-viewer")
	require.NoError(t, err)
	assert.Equal(t, []string{"vid-tennis"}, candidateIDs(candidates))
}

func TestRecommender_Rank_ByAccruedInterest(t *testing.T) {
	rec, s := setupTestRecommender(t, RecommenderOptions{Alpha: 1})
	seedRecommendFixture(t, s)
	ctx := context.Background()

	// Accrue interest in guitar only.
	require.NoError(t, s.AccrueCategoryInterest(ctx, "usr-viewer", []string{"cat-guitar"}, 0.5, time.Now()))

	videos, err := s.GetVideosByIDs(ctx, []string{"vid-tennis", "vid-music-1"})
	require.NoError(t, err)

	ranked, err := rec.Rank(ctx, "usr-viewer", videos)
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	assert.Equal(t, "vid-music-1", ranked[0].Video.ID)
	assert.InDelta(t, 0.5, ranked[0].Score, 1e-9)
	assert.Equal(t, "vid-tennis", ranked[1].Video.ID)
	assert.Zero(t, ranked[1].Score)
}

func TestRecommender_Rank_TiesBreakByRecencyThenID(t *testing.T) {
	rec, s := setupTestRecommender(t, RecommenderOptions{Alpha: 1})
	seedRecommendFixture(t, s)
	ctx := context.Background()

	videos, err := s.GetVideosByIDs(ctx, []string{"vid-music-1", "vid-music-2"})
	require.NoError(t, err)

	// No accrued interest: both score zero, newest wins.
	ranked, err := rec.Rank(ctx, "usr-viewer", videos)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "vid-music-2", ranked[0].Video.ID)
	assert.Equal(t, "vid-music-1", ranked[1].Video.ID)
}

func TestRecommender_Rank_BlendsSimilarity(t *testing.T) {
	s := setupTestStore(t)
	rec := NewRecommender(s, fixedScorer{score: 0.5}, RecommenderOptions{Alpha: 0.5}, testLogger())
	seedRecommendFixture(t, s)
	ctx := context.Background()

	videos, err := s.GetVideosByIDs(ctx, []string{"vid-tennis"})
	require.NoError(t, err)

	// engagement 0, similarity 0.5, alpha 0.5: blended 0.25.
	ranked, err := rec.Rank(ctx, "usr-viewer", videos)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.InDelta(t, 0.25, ranked[0].Score, 1e-9)
}

func TestRecommender_Rank_SimilarityFailureDegrades(t *testing.T) {
	s := setupTestStore(t)
	rec := NewRecommender(s, fixedScorer{err: context.DeadlineExceeded}, RecommenderOptions{Alpha: 0.5}, testLogger())
	seedRecommendFixture(t, s)
	ctx := context.Background()

	require.NoError(t, s.AccrueCategoryInterest(ctx, "usr-viewer", []string{"cat-guitar"}, 1.0, time.Now()))

	videos, err := s.GetVideosByIDs(ctx, []string{"vid-music-1"})
	require.NoError(t, err)

	// Backend failure never fails the request; the video keeps its full
	// engagement score instead of being halved against a zero similarity.
	ranked, err := rec.Rank(ctx, "usr-viewer", videos)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.InDelta(t, 1.0, ranked[0].Score, 1e-9)
}

// flakyScorer fails lookups for one video and scores the rest.
type flakyScorer struct {
	failFor string
	score   float64
}

func (f flakyScorer) Score(_ context.Context, _, videoID string) (float64, error) {
	if videoID == f.failFor {
		return 0, context.DeadlineExceeded
	}
	return f.score, nil
}
func (f flakyScorer) Close(context.Context) error { return nil }

func TestRecommender_Rank_PartialSimilarityFailure(t *testing.T) {
	s := setupTestStore(t)
	rec := NewRecommender(s, flakyScorer{failFor: "vid-music-1"}, RecommenderOptions{Alpha: 0.5}, testLogger())
	seedRecommendFixture(t, s)
	ctx := context.Background()

	require.NoError(t, s.AccrueCategoryInterest(ctx, "usr-viewer", []string{"cat-guitar"}, 1.0, time.Now()))

	videos, err := s.GetVideosByIDs(ctx, []string{"vid-music-1", "vid-music-2"})
	require.NoError(t, err)

	ranked, err := rec.Rank(ctx, "usr-viewer", videos)
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	scores := map[string]float64{
		ranked[0].Video.ID: ranked[0].Score,
		ranked[1].Video.ID: ranked[1].Score,
	}
	// Both carry engagement 1.0. The failed lookup keeps the plain
	// engagement score; the successful zero-similarity lookup blends down.
	assert.InDelta(t, 1.0, scores["vid-music-1"], 1e-9)
	assert.InDelta(t, 0.5, scores["vid-music-2"], 1e-9)
	assert.Equal(t, "vid-music-1", ranked[0].Video.ID)
}

func TestRecommender_Rank_AlphaOneSkipsScorer(t *testing.T) {
	s := setupTestStore(t)
	calls := &countingScorer{}
	rec := NewRecommender(s, calls, RecommenderOptions{Alpha: 1}, testLogger())
	seedRecommendFixture(t, s)
	ctx := context.Background()

	videos, err := s.GetVideosByIDs(ctx, []string{"vid-music-1"})
	require.NoError(t, err)

	_, err = rec.Rank(ctx, "usr-viewer", videos)
	require.NoError(t, err)
	assert.Zero(t, calls.n)
}

type countingScorer struct{ n int }

func (c *countingScorer) Score(context.Context, string, string) (float64, error) {
	c.n++
	return 0, nil
}
func (c *countingScorer) Close(context.Context) error { return nil }

func candidateIDs(videos []*domain.Video) []string {
	ids := make([]string, 0, len(videos))
	for _, v := range videos {
		ids = append(ids, v.ID)
	}
	return ids
}
