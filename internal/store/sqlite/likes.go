package sqlite

import (
	"context"
	"strings"

	"github.com/reelfeedapp/reelfeed-server/internal/domain"
	"github.com/reelfeedapp/reelfeed-server/internal/store"
)

// CreateLike inserts a like row. Returns store.ErrAlreadyExists if the
// user already likes the video; the caller treats that as a lost toggle
// race and retries.
func (s *Store) CreateLike(ctx context.Context, like *domain.Like) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO likes (user_id, video_id, created_at)
		VALUES (?, ?, ?)`,
		like.UserID, like.VideoID, formatTime(like.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return store.ErrNotFound
		}
		return err
	}
	return nil
}

// DeleteLike removes a like row. Returns store.ErrNotFound if the row is
// already gone.
func (s *Store) DeleteLike(ctx context.Context, userID, videoID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM likes WHERE user_id = ? AND video_id = ?`, userID, videoID)
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

// IsLiked reports whether the user currently likes the video.
func (s *Store) IsLiked(ctx context.Context, userID, videoID string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM likes WHERE user_id = ? AND video_id = ?)`,
		userID, videoID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists != 0, nil
}
