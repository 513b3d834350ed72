package similarity

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const defaultCacheTTL = 15 * time.Minute

// CachedScorer wraps a Scorer with a Badger-backed read-through cache.
// Interest accrual is gradual, so a slightly stale score does not change
// feed quality; caching keeps graph round-trips off the feed hot path.
type CachedScorer struct {
	inner  Scorer
	db     *badger.DB
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedScorer opens a cache database at path and wraps inner with it.
func NewCachedScorer(inner Scorer, path string, logger *slog.Logger) (*CachedScorer, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable Badger's internal logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("similarity cache: open badger db: %w", err)
	}

	return &CachedScorer{
		inner:  inner,
		db:     db,
		ttl:    defaultCacheTTL,
		logger: logger,
	}, nil
}

func cacheKey(userID, videoID string) []byte {
	return []byte("sim:" + userID + ":" + videoID)
}

// Score returns a cached score when present, otherwise asks the inner
// scorer and caches the result. Backend errors are never cached.
func (c *CachedScorer) Score(ctx context.Context, userID, videoID string) (float64, error) {
	key := cacheKey(userID, videoID)

	var cached float64
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &cached)
		})
	})
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, badger.ErrKeyNotFound) && c.logger != nil {
		c.logger.Warn("similarity cache read failed", "error", err)
	}

	score, err := c.inner.Score(ctx, userID, videoID)
	if err != nil {
		return 0, err
	}

	val, err := json.Marshal(score)
	if err != nil {
		return score, nil
	}
	if err := c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key, val).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	}); err != nil && c.logger != nil {
		c.logger.Warn("similarity cache write failed", "error", err)
	}

	return score, nil
}

// Invalidate drops the cached score for a user/video pair. Called after
// interactions that shift the user's interest profile.
func (c *CachedScorer) Invalidate(userID, videoID string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(cacheKey(userID, videoID))
	})
}

// Close closes the inner scorer and then the cache database.
func (c *CachedScorer) Close(ctx context.Context) error {
	innerErr := c.inner.Close(ctx)
	if err := c.db.Close(); err != nil {
		return err
	}
	return innerErr
}
