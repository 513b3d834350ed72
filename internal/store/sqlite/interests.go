package sqlite

import (
	"context"
	"time"

	"github.com/reelfeedapp/reelfeed-server/internal/domain"
)

// AccrueCategoryInterest adds delta to the user's interest score for each
// category, creating rows on first touch. Each category is one upsert
// statement, so concurrent accruals for the same (user, category) pair
// serialize inside SQLite and neither update is lost.
func (s *Store) AccrueCategoryInterest(ctx context.Context, userID string, categoryIDs []string, delta float64, now time.Time) error {
	if len(categoryIDs) == 0 || delta == 0 {
		return nil
	}

	nowStr := formatTime(now)
	for _, categoryID := range categoryIDs {
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO user_category_interests (user_id, category_id, score, interaction_count, updated_at)
			VALUES (?, ?, ?, 1, ?)
			ON CONFLICT(user_id, category_id) DO UPDATE SET
				score = score + excluded.score,
				interaction_count = interaction_count + 1,
				updated_at = excluded.updated_at`,
			userID, categoryID, delta, nowStr,
		); err != nil {
			return err
		}
	}
	return nil
}

// GetCategoryInterests returns the user's interest rows, highest score first.
func (s *Store) GetCategoryInterests(ctx context.Context, userID string) ([]*domain.CategoryInterest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, category_id, score, interaction_count, updated_at
		FROM user_category_interests
		WHERE user_id = ?
		ORDER BY score DESC, category_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var interests []*domain.CategoryInterest
	for rows.Next() {
		var ci domain.CategoryInterest
		var updatedAt string
		if err := rows.Scan(&ci.UserID, &ci.CategoryID, &ci.Score, &ci.InteractionCount, &updatedAt); err != nil {
			return nil, err
		}
		ci.UpdatedAt, err = parseTime(updatedAt)
		if err != nil {
			return nil, err
		}
		interests = append(interests, &ci)
	}
	return interests, rows.Err()
}

// GetInterestScores returns the user's interest scores keyed by category
// ID, for the ranker's per-video averaging.
func (s *Store) GetInterestScores(ctx context.Context, userID string) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category_id, score FROM user_category_interests
		WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := make(map[string]float64)
	for rows.Next() {
		var categoryID string
		var score float64
		if err := rows.Scan(&categoryID, &score); err != nil {
			return nil, err
		}
		scores[categoryID] = score
	}
	return scores, rows.Err()
}
