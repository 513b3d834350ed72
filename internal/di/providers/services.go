package providers

import (
	"github.com/samber/do/v2"

	"github.com/reelfeedapp/reelfeed-server/internal/auth"
	"github.com/reelfeedapp/reelfeed-server/internal/config"
	"github.com/reelfeedapp/reelfeed-server/internal/logger"
	"github.com/reelfeedapp/reelfeed-server/internal/service"
)

// ProvideSessionService provides the session management service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, sessionService, log.Logger), nil
}

// ProvideCategoryService provides the category taxonomy service.
func ProvideCategoryService(i do.Injector) (*service.CategoryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCategoryService(storeHandle.Store, log.Logger), nil
}

// ProvideVideoService provides the video catalog service.
func ProvideVideoService(i do.Injector) (*service.VideoService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewVideoService(storeHandle.Store, indexHandle.Index, log.Logger), nil
}

// ProvideInteractionService provides the watch/like/follow recording service.
func ProvideInteractionService(i do.Injector) (*service.InteractionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	simHandle := do.MustInvoke[*SimilarityHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	// A typed nil must not reach the interface field.
	var invalidator service.ScoreInvalidator
	if cached := simHandle.Invalidator(); cached != nil {
		invalidator = cached
	}

	return service.NewInteractionService(storeHandle.Store, invalidator, log.Logger), nil
}

// ProvideInterestService provides the interest profile service.
func ProvideInterestService(i do.Injector) (*service.InterestService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewInterestService(storeHandle.Store, log.Logger), nil
}

// ProvideRecommender provides the candidate selection and ranking engine.
func ProvideRecommender(i do.Injector) (*service.Recommender, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	simHandle := do.MustInvoke[*SimilarityHandle](i)
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	opts := service.RecommenderOptions{
		CandidateLimit:    cfg.Recommend.CandidateLimit,
		Alpha:             cfg.Recommend.Alpha,
		SimilarityTimeout: cfg.Similarity.Timeout,
	}

	return service.NewRecommender(storeHandle.Store, simHandle.Scorer, opts, log.Logger), nil
}

// ProvideFeedService provides the feed composition service.
func ProvideFeedService(i do.Injector) (*service.FeedService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	recommender := do.MustInvoke[*service.Recommender](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFeedService(storeHandle.Store, recommender, log.Logger), nil
}
