package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/reelfeedapp/reelfeed-server/internal/domain"
	"github.com/reelfeedapp/reelfeed-server/internal/store"
)

const parentCategoryColumns = `id, name, icon, created_at, updated_at`

func scanParentCategory(scanner interface{ Scan(dest ...any) error }) (*domain.ParentCategory, error) {
	var pc domain.ParentCategory

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(&pc.ID, &pc.Name, &pc.Icon, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	pc.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	pc.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &pc, nil
}

const categoryColumns = `id, name, parent_category_id, created_at, updated_at`

func scanCategory(scanner interface{ Scan(dest ...any) error }) (*domain.Category, error) {
	var c domain.Category

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(&c.ID, &c.Name, &c.ParentCategoryID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	c.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	c.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// CreateParentCategory inserts a new parent category.
func (s *Store) CreateParentCategory(ctx context.Context, pc *domain.ParentCategory) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO parent_categories (id, name, icon, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		pc.ID, pc.Name, pc.Icon, formatTime(pc.CreatedAt), formatTime(pc.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetParentCategory retrieves a parent category by ID.
func (s *Store) GetParentCategory(ctx context.Context, id string) (*domain.ParentCategory, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+parentCategoryColumns+` FROM parent_categories WHERE id = ?`, id)

	pc, err := scanParentCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return pc, nil
}

// ListParentCategories returns all parent categories ordered by name.
func (s *Store) ListParentCategories(ctx context.Context) ([]*domain.ParentCategory, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+parentCategoryColumns+` FROM parent_categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parents []*domain.ParentCategory
	for rows.Next() {
		pc, err := scanParentCategory(rows)
		if err != nil {
			return nil, err
		}
		parents = append(parents, pc)
	}
	return parents, rows.Err()
}

// CreateCategory inserts a new leaf category. The referenced parent
// category must exist.
func (s *Store) CreateCategory(ctx context.Context, c *domain.Category) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, parent_category_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.ParentCategoryID, formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return store.ErrInvalidInput.WithMessage("parent category does not exist")
		}
		return err
	}
	return nil
}

// GetCategory retrieves a category by ID.
func (s *Store) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)

	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// GetCategoriesByIDs retrieves categories matching the given IDs. Missing
// IDs are silently skipped; callers compare lengths when absence matters.
func (s *Store) GetCategoriesByIDs(ctx context.Context, ids []string) ([]*domain.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]*domain.Category, len(ids))
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Preserve request order.
	var categories []*domain.Category
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			categories = append(categories, c)
		}
	}
	return categories, nil
}

// ListCategories returns all categories ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.queryCategories(ctx,
		`SELECT `+categoryColumns+` FROM categories ORDER BY name`)
}

// ListCategoriesByParent returns the categories under a parent category.
func (s *Store) ListCategoriesByParent(ctx context.Context, parentCategoryID string) ([]*domain.Category, error) {
	return s.queryCategories(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE parent_category_id = ? ORDER BY name`,
		parentCategoryID)
}

func (s *Store) queryCategories(ctx context.Context, query string, args ...any) ([]*domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
