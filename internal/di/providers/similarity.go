package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/reelfeedapp/reelfeed-server/internal/config"
	"github.com/reelfeedapp/reelfeed-server/internal/logger"
	"github.com/reelfeedapp/reelfeed-server/internal/similarity"
)

// SimilarityHandle wraps the similarity scorer chain with shutdown capability.
// When no backend is configured the scorer is a no-op and there is nothing
// to shut down.
type SimilarityHandle struct {
	Scorer similarity.Scorer
	cached *similarity.CachedScorer
	neo    *similarity.Neo4jScorer
}

// Invalidator returns the cache invalidator, or nil when caching is disabled.
func (h *SimilarityHandle) Invalidator() *similarity.CachedScorer {
	return h.cached
}

// Shutdown implements do.Shutdownable.
func (h *SimilarityHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var firstErr error
	if h.cached != nil {
		if err := h.cached.Close(ctx); err != nil {
			firstErr = err
		}
	}
	if h.neo != nil {
		if err := h.neo.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ProvideSimilarityScorer provides the collaborative-similarity scorer.
// With no Neo4j backend configured the feed falls back to pure engagement
// ranking, so a missing backend is not an error.
func ProvideSimilarityScorer(i do.Injector) (*SimilarityHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Similarity.Enabled() {
		log.Info("Similarity backend not configured, using engagement-only ranking")
		return &SimilarityHandle{Scorer: similarity.NewDisabled()}, nil
	}

	neo, err := similarity.NewNeo4jScorer(cfg.Similarity, log.Logger)
	if err != nil {
		return nil, err
	}

	cached, err := similarity.NewCachedScorer(neo, cfg.Database.BasePath, log.Logger)
	if err != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = neo.Close(closeCtx)
		return nil, err
	}

	log.Info("Similarity backend connected", "uri", cfg.Similarity.NeoURI)

	return &SimilarityHandle{
		Scorer: cached,
		cached: cached,
		neo:    neo,
	}, nil
}
