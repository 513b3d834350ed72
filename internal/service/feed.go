package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/reelfeedapp/reelfeed-server/internal/domain"
	domainerrors "github.com/reelfeedapp/reelfeed-server/internal/errors"
	"github.com/reelfeedapp/reelfeed-server/internal/store"
)

// FeedService composes the three feed surfaces: the personalized home
// feed, the following feed, and per-category browsing.
type FeedService struct {
	store       store.Store
	recommender *Recommender
	logger      *slog.Logger
}

// NewFeedService creates a new feed service.
func NewFeedService(store store.Store, recommender *Recommender, logger *slog.Logger) *FeedService {
	return &FeedService{
		store:       store,
		recommender: recommender,
		logger:      logger,
	}
}

// FeedRequest selects a feed surface and page. ParentCategoryID is
// required for the category scope and ignored otherwise.
type FeedRequest struct {
	Scope            domain.FeedScope
	ParentCategoryID string
	Page             store.PageParams
}

// GetFeed returns one page of the requested feed. Every scope runs the
// same pipeline: select a bounded candidate pool, rank it, page the
// ranked order in memory. Scope only decides where the pool comes from.
func (s *FeedService) GetFeed(ctx context.Context, userID string, req FeedRequest) (*domain.FeedPage, error) {
	if !req.Scope.Valid() {
		return nil, domainerrors.Validationf("unknown feed scope: %s", req.Scope)
	}
	req.Page.Validate()

	candidates, err := s.selectCandidates(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	ranked, err := s.recommender.Rank(ctx, userID, candidates)
	if err != nil {
		return nil, fmt.Errorf("rank candidates: %w", err)
	}

	return rankedPage(ranked, req.Page), nil
}

func (s *FeedService) selectCandidates(ctx context.Context, userID string, req FeedRequest) ([]*domain.Video, error) {
	switch req.Scope {
	case domain.FeedScopeHome:
		candidates, err := s.recommender.SelectCandidates(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("select candidates: %w", err)
		}
		return candidates, nil
	case domain.FeedScopeFollowing:
		candidates, err := s.recommender.SelectFollowingCandidates(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("select following candidates: %w", err)
		}
		return candidates, nil
	case domain.FeedScopeCategory:
		if req.ParentCategoryID == "" {
			return nil, domainerrors.Validation("parent_category_id is required for the category feed")
		}
		if _, err := s.store.GetParentCategory(ctx, req.ParentCategoryID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, domainerrors.NotFound("parent category not found")
			}
			return nil, fmt.Errorf("get parent category: %w", err)
		}
		candidates, err := s.recommender.SelectCategoryCandidates(ctx, req.ParentCategoryID)
		if err != nil {
			return nil, fmt.Errorf("select category candidates: %w", err)
		}
		return candidates, nil
	}
	return nil, domainerrors.Validationf("unknown feed scope: %s", req.Scope)
}

// rankedPage slices one page out of the ranked pool. The pool is bounded
// by the candidate limit, so re-ranking per page stays cheap and pages
// remain consistent within one pool generation.
func rankedPage(ranked []*domain.RankedVideo, page store.PageParams) *domain.FeedPage {
	offset := page.Offset()
	if offset >= len(ranked) {
		return emptyFeedPage(page)
	}

	end := offset + page.PerPage
	hasMore := end < len(ranked)
	if end > len(ranked) {
		end = len(ranked)
	}

	return &domain.FeedPage{
		Videos:  ranked[offset:end],
		Page:    page.Page,
		PerPage: page.PerPage,
		HasMore: hasMore,
	}
}

func emptyFeedPage(page store.PageParams) *domain.FeedPage {
	return &domain.FeedPage{
		Videos:  []*domain.RankedVideo{},
		Page:    page.Page,
		PerPage: page.PerPage,
	}
}
