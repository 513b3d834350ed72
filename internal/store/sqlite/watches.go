package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/reelfeedapp/reelfeed-server/internal/domain"
	"github.com/reelfeedapp/reelfeed-server/internal/store"
)

const watchColumns = `id, user_id, video_id, watch_time, watched_duration_secs, created_at`

func scanWatch(scanner interface{ Scan(dest ...any) error }) (*domain.Watch, error) {
	var w domain.Watch

	var createdAt string

	err := scanner.Scan(
		&w.ID,
		&w.UserID,
		&w.VideoID,
		&w.WatchTime,
		&w.WatchedDurationSecs,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	w.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &w, nil
}

// CreateWatch appends a watch record. Watches are never updated or merged.
func (s *Store) CreateWatch(ctx context.Context, watch *domain.Watch) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO watches (id, user_id, video_id, watch_time, watched_duration_secs, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		watch.ID,
		watch.UserID,
		watch.VideoID,
		watch.WatchTime,
		watch.WatchedDurationSecs,
		formatTime(watch.CreatedAt),
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

// RecordWatchSession records that this (user, video, session) triple has
// counted a view. Returns true if the triple was newly recorded, false if
// a view for it was already counted. The single INSERT OR IGNORE makes
// concurrent duplicate submissions count at most once.
func (s *Store) RecordWatchSession(ctx context.Context, userID, videoID, sessionToken string, now time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO watch_sessions (user_id, video_id, session_token, created_at)
		VALUES (?, ?, ?, ?)`,
		userID, videoID, sessionToken, formatTime(now),
	)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return false, store.ErrNotFound
		}
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// ListWatchesForUser returns a user's watch history, newest first.
func (s *Store) ListWatchesForUser(ctx context.Context, userID string, params store.PageParams) (*store.PagedResult[*domain.Watch], error) {
	params.Validate()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+watchColumns+` FROM watches
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`,
		userID, params.PerPage+1, params.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var watches []*domain.Watch
	for rows.Next() {
		w, err := scanWatch(rows)
		if err != nil {
			return nil, err
		}
		watches = append(watches, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hasMore := len(watches) > params.PerPage
	if hasMore {
		watches = watches[:params.PerPage]
	}

	return &store.PagedResult[*domain.Watch]{
		Items:   watches,
		Page:    params.Page,
		PerPage: params.PerPage,
		HasMore: hasMore,
	}, nil
}

// MaxWatchTime returns the highest watch fraction a user has recorded for
// a video, or zero if the user never watched it.
func (s *Store) MaxWatchTime(ctx context.Context, userID, videoID string) (float64, error) {
	var maxWatch float64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(watch_time), 0) FROM watches
		WHERE user_id = ? AND video_id = ?`,
		userID, videoID).Scan(&maxWatch)
	if err != nil {
		return 0, err
	}
	return maxWatch, nil
}
