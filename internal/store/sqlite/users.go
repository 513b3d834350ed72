package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/reelfeedapp/reelfeed-server/internal/domain"
	"github.com/reelfeedapp/reelfeed-server/internal/store"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, username, email, password_hash, bio, verified, created_at, updated_at`

// scanUser scans a sql.Row (or sql.Rows via its Scan method) into a domain.User.
// ParentInterests are loaded separately.
func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var u domain.User

	var (
		verified  int
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Bio,
		&verified,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.Verified = verified != 0

	u.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	u.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// CreateUser inserts a new user into the database.
// Returns store.ErrAlreadyExists if the username or email is taken.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (
			id, username, username_lower, email, email_lower,
			password_hash, bio, verified, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		strings.ToLower(strings.TrimSpace(user.Username)),
		user.Email,
		strings.ToLower(strings.TrimSpace(user.Email)),
		user.PasswordHash,
		user.Bio,
		boolToInt(user.Verified),
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	if len(user.ParentInterests) > 0 {
		return s.SetUserParentInterests(ctx, user.ID, user.ParentInterests)
	}
	return nil
}

// GetUser retrieves a user by ID, including their parent interests.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	user.ParentInterests, err = s.GetUserParentInterests(ctx, id)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email (case-insensitive).
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email_lower = ?`,
		strings.ToLower(strings.TrimSpace(email)))

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	user.ParentInterests, err = s.GetUserParentInterests(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username (case-insensitive).
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username_lower = ?`,
		strings.ToLower(strings.TrimSpace(username)))

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	user.ParentInterests, err = s.GetUserParentInterests(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUser updates a user's mutable fields.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET
			username = ?, username_lower = ?, email = ?, email_lower = ?,
			password_hash = ?, bio = ?, verified = ?, updated_at = ?
		WHERE id = ?`,
		user.Username,
		strings.ToLower(strings.TrimSpace(user.Username)),
		user.Email,
		strings.ToLower(strings.TrimSpace(user.Email)),
		user.PasswordHash,
		user.Bio,
		boolToInt(user.Verified),
		formatTime(user.UpdatedAt),
		user.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
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

// SetUserParentInterests replaces the user's parent interest set.
func (s *Store) SetUserParentInterests(ctx context.Context, userID string, parentCategoryIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM user_parent_interests WHERE user_id = ?`, userID); err != nil {
		return err
	}

	now := formatTime(time.Now().UTC())
	for _, parentID := range parentCategoryIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO user_parent_interests (user_id, parent_category_id, created_at)
			VALUES (?, ?, ?)`,
			userID, parentID, now,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetUserParentInterests returns the user's parent interest IDs in insertion order.
func (s *Store) GetUserParentInterests(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT parent_category_id FROM user_parent_interests
		WHERE user_id = ?
		ORDER BY created_at, parent_category_id`, userID)
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
