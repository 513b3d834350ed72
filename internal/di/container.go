// Package di provides dependency injection configuration for the ReelFeed server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/reelfeedapp/reelfeed-server/internal/auth"
	"github.com/reelfeedapp/reelfeed-server/internal/config"
	"github.com/reelfeedapp/reelfeed-server/internal/di/providers"
	"github.com/reelfeedapp/reelfeed-server/internal/logger"
	"github.com/reelfeedapp/reelfeed-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)

	// Similarity layer
	do.Provide(injector, providers.ProvideSimilarityScorer)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideCategoryService)
	do.Provide(injector, providers.ProvideVideoService)
	do.Provide(injector, providers.ProvideInteractionService)
	do.Provide(injector, providers.ProvideInterestService)
	do.Provide(injector, providers.ProvideRecommender)
	do.Provide(injector, providers.ProvideFeedService)

	// Workers
	do.Provide(injector, providers.ProvideSessionCleanupJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*providers.SimilarityHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*service.SessionService](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.CategoryService](injector)
	_ = do.MustInvoke[*service.VideoService](injector)
	_ = do.MustInvoke[*service.InteractionService](injector)
	_ = do.MustInvoke[*service.InterestService](injector)
	_ = do.MustInvoke[*service.Recommender](injector)
	_ = do.MustInvoke[*service.FeedService](injector)

	// Workers
	_ = do.MustInvoke[*providers.SessionCleanupJob](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
