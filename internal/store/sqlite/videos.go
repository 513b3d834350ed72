package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/reelfeedapp/reelfeed-server/internal/domain"
	"github.com/reelfeedapp/reelfeed-server/internal/store"
)

// videoColumns is the ordered list of columns selected in video queries.
// Must match the scan order in scanVideo. Category IDs are loaded
// separately via attachCategoryIDs.
const videoColumns = `id, creator_id, title, description, duration_secs,
	views, likes, is_public, is_premium, created_at, updated_at`

func scanVideo(scanner interface{ Scan(dest ...any) error }) (*domain.Video, error) {
	var v domain.Video

	var (
		isPublic  int
		isPremium int
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&v.ID,
		&v.CreatorID,
		&v.Title,
		&v.Description,
		&v.DurationSecs,
		&v.Views,
		&v.Likes,
		&isPublic,
		&isPremium,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	v.IsPublic = isPublic != 0
	v.IsPremium = isPremium != 0

	v.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	v.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

// CreateVideo inserts a new video and its category tags.
func (s *Store) CreateVideo(ctx context.Context, video *domain.Video) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO videos (
			id, creator_id, title, description, duration_secs,
			views, likes, is_public, is_premium, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		video.ID,
		video.CreatorID,
		video.Title,
		video.Description,
		video.DurationSecs,
		video.Views,
		video.Likes,
		boolToInt(video.IsPublic),
		boolToInt(video.IsPremium),
		formatTime(video.CreatedAt),
		formatTime(video.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	if len(video.CategoryIDs) > 0 || len(video.ParentCategoryIDs) > 0 {
		return s.SetVideoCategories(ctx, video.ID, video.CategoryIDs, video.ParentCategoryIDs)
	}
	return nil
}

// GetVideo retrieves a video by ID, including its category tags.
func (s *Store) GetVideo(ctx context.Context, id string) (*domain.Video, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE id = ?`, id)

	video, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	if err := s.attachCategoryIDs(ctx, []*domain.Video{video}); err != nil {
		return nil, err
	}
	return video, nil
}

// GetVideosByIDs retrieves videos matching the given IDs, preserving
// request order. Missing IDs are skipped.
func (s *Store) GetVideosByIDs(ctx context.Context, ids []string) ([]*domain.Video, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]*domain.Video, len(ids))
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		byID[v.ID] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var videos []*domain.Video
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			videos = append(videos, v)
		}
	}

	if err := s.attachCategoryIDs(ctx, videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// UpdateVideo updates a video's mutable fields. Counters and tags are
// managed through their dedicated operations.
func (s *Store) UpdateVideo(ctx context.Context, video *domain.Video) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE videos SET
			title = ?, description = ?, duration_secs = ?,
			is_public = ?, is_premium = ?, updated_at = ?
		WHERE id = ?`,
		video.Title,
		video.Description,
		video.DurationSecs,
		boolToInt(video.IsPublic),
		boolToInt(video.IsPremium),
		formatTime(video.UpdatedAt),
		video.ID,
	)
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

// DeleteVideo removes a video. Tags, watches, likes and sessions cascade.
func (s *Store) DeleteVideo(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM videos WHERE id = ?`, id)
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

// SetVideoCategories replaces a video's leaf and parent category tags in
// one transaction so the derived parent set never drifts from the leaves.
func (s *Store) SetVideoCategories(ctx context.Context, videoID string, categoryIDs, parentCategoryIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM video_categories WHERE video_id = ?`, videoID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM video_parent_categories WHERE video_id = ?`, videoID); err != nil {
		return err
	}

	for _, categoryID := range categoryIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO video_categories (video_id, category_id)
			VALUES (?, ?)`,
			videoID, categoryID,
		); err != nil {
			return err
		}
	}
	for _, parentID := range parentCategoryIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO video_parent_categories (video_id, parent_category_id)
			VALUES (?, ?)`,
			videoID, parentID,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListVideosByCreator returns a creator's videos, newest first.
func (s *Store) ListVideosByCreator(ctx context.Context, creatorID string, params store.PageParams) (*store.PagedResult[*domain.Video], error) {
	params.Validate()

	return s.queryVideoPage(ctx, params, `
		SELECT `+videoColumns+` FROM videos
		WHERE creator_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`,
		creatorID, params.PerPage+1, params.Offset())
}

// IncrementVideoViews bumps a video's view counter by one in a single
// statement. Safe under concurrent writers.
func (s *Store) IncrementVideoViews(ctx context.Context, videoID string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE videos SET views = views + 1 WHERE id = ?`, videoID)
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

// AdjustVideoLikes adjusts a video's like counter by delta, clamped at
// zero, in a single statement, and returns the new counter value.
func (s *Store) AdjustVideoLikes(ctx context.Context, videoID string, delta int64) (int64, error) {
	var likes int64
	err := s.db.QueryRowContext(ctx,
		`UPDATE videos SET likes = MAX(0, likes + ?) WHERE id = ? RETURNING likes`,
		delta, videoID).Scan(&likes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, store.ErrNotFound
		}
		return 0, err
	}
	return likes, nil
}

// ListInterestCandidates returns public videos tagged under any of the
// given parent categories, excluding the user's own uploads and videos the
// user has already watched past the view threshold. Newest first, capped
// at limit.
func (s *Store) ListInterestCandidates(ctx context.Context, userID string, parentCategoryIDs []string, limit int) ([]*domain.Video, error) {
	if len(parentCategoryIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(parentCategoryIDs)-1) + "?"
	args := []any{userID}
	for _, id := range parentCategoryIDs {
		args = append(args, id)
	}
	args = append(args, userID, domain.WatchThreshold, limit)

	return s.queryVideos(ctx, `
		SELECT `+videoColumns+` FROM videos v
		WHERE v.is_public = 1
		  AND v.creator_id != ?
		  AND EXISTS (
			SELECT 1 FROM video_parent_categories vpc
			WHERE vpc.video_id = v.id AND vpc.parent_category_id IN (`+placeholders+`)
		  )
		  AND NOT EXISTS (
			SELECT 1 FROM watches w
			WHERE w.user_id = ? AND w.video_id = v.id AND w.watch_time >= ?
		  )
		ORDER BY v.created_at DESC, v.id DESC
		LIMIT ?`, args...)
}

// ListPopularCandidates returns the most-viewed public videos, excluding
// the user's own uploads and videos watched past the view threshold. Used
// as the fallback pool when a user has no interests or their interest pool
// is empty.
func (s *Store) ListPopularCandidates(ctx context.Context, userID string, limit int) ([]*domain.Video, error) {
	return s.queryVideos(ctx, `
		SELECT `+videoColumns+` FROM videos v
		WHERE v.is_public = 1
		  AND v.creator_id != ?
		  AND NOT EXISTS (
			SELECT 1 FROM watches w
			WHERE w.user_id = ? AND w.video_id = v.id AND w.watch_time >= ?
		  )
		ORDER BY v.views DESC, v.created_at DESC, v.id DESC
		LIMIT ?`,
		userID, userID, domain.WatchThreshold, limit)
}

// ListCreatorCandidates returns public videos from any of the given
// creators, newest first, capped at limit.
func (s *Store) ListCreatorCandidates(ctx context.Context, creatorIDs []string, limit int) ([]*domain.Video, error) {
	if len(creatorIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(creatorIDs)-1) + "?"
	args := make([]any, 0, len(creatorIDs)+1)
	for _, id := range creatorIDs {
		args = append(args, id)
	}
	args = append(args, limit)

	return s.queryVideos(ctx, `
		SELECT `+videoColumns+` FROM videos v
		WHERE v.is_public = 1
		  AND v.creator_id IN (`+placeholders+`)
		ORDER BY v.created_at DESC, v.id DESC
		LIMIT ?`, args...)
}

// ListCategoryCandidates returns public videos tagged under a parent
// category, newest first, capped at limit.
func (s *Store) ListCategoryCandidates(ctx context.Context, parentCategoryID string, limit int) ([]*domain.Video, error) {
	return s.queryVideos(ctx, `
		SELECT `+videoColumns+` FROM videos v
		WHERE v.is_public = 1
		  AND EXISTS (
			SELECT 1 FROM video_parent_categories vpc
			WHERE vpc.video_id = v.id AND vpc.parent_category_id = ?
		  )
		ORDER BY v.created_at DESC, v.id DESC
		LIMIT ?`,
		parentCategoryID, limit)
}

func (s *Store) queryVideos(ctx context.Context, query string, args ...any) ([]*domain.Video, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []*domain.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachCategoryIDs(ctx, videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// queryVideoPage runs a video query that selects one row beyond the page
// size to detect whether more pages exist.
func (s *Store) queryVideoPage(ctx context.Context, params store.PageParams, query string, args ...any) (*store.PagedResult[*domain.Video], error) {
	videos, err := s.queryVideos(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	hasMore := len(videos) > params.PerPage
	if hasMore {
		videos = videos[:params.PerPage]
	}

	return &store.PagedResult[*domain.Video]{
		Items:   videos,
		Page:    params.Page,
		PerPage: params.PerPage,
		HasMore: hasMore,
	}, nil
}

// attachCategoryIDs loads leaf and parent category tags for the given
// videos in two batched queries.
func (s *Store) attachCategoryIDs(ctx context.Context, videos []*domain.Video) error {
	if len(videos) == 0 {
		return nil
	}

	byID := make(map[string]*domain.Video, len(videos))
	placeholders := strings.Repeat("?,", len(videos)-1) + "?"
	args := make([]any, len(videos))
	for i, v := range videos {
		byID[v.ID] = v
		args[i] = v.ID
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT video_id, category_id FROM video_categories
		WHERE video_id IN (`+placeholders+`)
		ORDER BY category_id`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var videoID, categoryID string
		if err := rows.Scan(&videoID, &categoryID); err != nil {
			return err
		}
		if v, ok := byID[videoID]; ok {
			v.CategoryIDs = append(v.CategoryIDs, categoryID)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	parentRows, err := s.db.QueryContext(ctx, `
		SELECT video_id, parent_category_id FROM video_parent_categories
		WHERE video_id IN (`+placeholders+`)
		ORDER BY parent_category_id`, args...)
	if err != nil {
		return err
	}
	defer parentRows.Close()

	for parentRows.Next() {
		var videoID, parentID string
		if err := parentRows.Scan(&videoID, &parentID); err != nil {
			return err
		}
		if v, ok := byID[videoID]; ok {
			v.ParentCategoryIDs = append(v.ParentCategoryIDs, parentID)
		}
	}
	return parentRows.Err()
}
