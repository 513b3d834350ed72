package sqlite

import (
	"context"
	"strings"

	"github.com/reelfeedapp/reelfeed-server/internal/domain"
	"github.com/reelfeedapp/reelfeed-server/internal/store"
)

// CreateFollow inserts a follow edge. Returns store.ErrAlreadyExists if
// the edge already exists and store.ErrInvalidInput for a self-follow,
// which the schema rejects.
func (s *Store) CreateFollow(ctx context.Context, follow *domain.Follow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO follows (follower_id, followee_id, created_at)
		VALUES (?, ?, ?)`,
		follow.FollowerID, follow.FolloweeID, formatTime(follow.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return store.ErrNotFound
		}
		if strings.Contains(err.Error(), "CHECK constraint failed") {
			return store.ErrInvalidInput
		}
		return err
	}
	return nil
}

// DeleteFollow removes a follow edge. Returns store.ErrNotFound if the
// edge is already gone.
func (s *Store) DeleteFollow(ctx context.Context, followerID, followeeID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = ? AND followee_id = ?`,
		followerID, followeeID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

// IsFollowing reports whether follower currently follows followee.
func (s *Store) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = ? AND followee_id = ?)`,
		followerID, followeeID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists != 0, nil
}

// ListFolloweeIDs returns the IDs of creators the user follows, most
// recently followed first.
func (s *Store) ListFolloweeIDs(ctx context.Context, followerID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT followee_id FROM follows
		WHERE follower_id = ?
		ORDER BY created_at DESC, followee_id`, followerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountFollowers returns how many users follow the given user.
func (s *Store) CountFollowers(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM follows WHERE followee_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
