package similarity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/reelfeedapp/reelfeed-server/internal/config"
	apperrors "github.com/reelfeedapp/reelfeed-server/internal/errors"
)

// scoreQuery measures category overlap between a user's taste graph and
// a video's tags. The score is the weighted fraction of the video's
// categories the user has accrued interest in, normalized to [0, 1].
const scoreQuery = `
MATCH (v:Video {id: $video_id})-[:TAGGED]->(c:Category)
WITH v, count(c) AS tagged
WHERE tagged > 0
MATCH (v)-[:TAGGED]->(c:Category)
OPTIONAL MATCH (u:User {id: $user_id})-[i:INTERESTED_IN]->(c)
RETURN sum(CASE WHEN i IS NULL THEN 0.0 ELSE 1.0 - exp(-i.score) END) / tagged AS score
`

// Neo4jScorer scores user/video pairs against a Neo4j taste graph.
type Neo4jScorer struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *slog.Logger
}

// NewNeo4jScorer connects to the configured Neo4j instance and verifies
// connectivity before returning. The caller owns the returned scorer and
// must Close it.
func NewNeo4jScorer(cfg config.SimilarityConfig, logger *slog.Logger) (*Neo4jScorer, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("similarity: no backend configured")
	}

	auth := neo4j.BasicAuth(cfg.NeoUser, cfg.NeoPassword, "")
	driver, err := neo4j.NewDriverWithContext(cfg.NeoURI, auth, func(c *neo4j.Config) {
		c.MaxConnectionPoolSize = 25
		c.SocketConnectTimeout = 5 * time.Second
	})
	if err != nil {
		return nil, fmt.Errorf("similarity: init driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("similarity: verify connectivity: %w", err)
	}

	return &Neo4jScorer{
		driver: driver,
		logger: logger,
	}, nil
}

// Score returns the taste-graph similarity for a user/video pair.
// Backend failures surface as upstream unavailable errors so the ranker
// can degrade to engagement-only scoring.
func (s *Neo4jScorer) Score(ctx context.Context, userID, videoID string) (float64, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, scoreQuery, map[string]any{
			"user_id":  userID,
			"video_id": videoID,
		})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			// No record means the video has no tags in the graph.
			return 0.0, nil
		}
		value, _ := record.Get("score")
		score, ok := value.(float64)
		if !ok {
			return 0.0, nil
		}
		return score, nil
	})
	if err != nil {
		return 0, apperrors.UpstreamUnavailable("similarity backend unavailable").WithCause(err)
	}

	score, _ := result.(float64)
	return clampScore(score), nil
}

// Close releases the underlying driver.
func (s *Neo4jScorer) Close(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	err := s.driver.Close(ctx)
	s.driver = nil
	return err
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
