package domain

import "time"

// ParentCategory is a top-level grouping users select at registration.
type ParentCategory struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Category is a leaf-level tag on a video. Every category belongs to
// exactly one parent category; the tree is two levels deep.
type Category struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	ParentCategoryID string    `json:"parent_category_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ParentIDsOf collects the distinct parent-category IDs of the given
// categories, preserving first-seen order. Video tagging uses this to keep
// the derived parent set consistent with the leaf tags.
func ParentIDsOf(categories []*Category) []string {
	seen := make(map[string]bool, len(categories))
	var parents []string
	for _, c := range categories {
		if c == nil || c.ParentCategoryID == "" {
			continue
		}
		if !seen[c.ParentCategoryID] {
			seen[c.ParentCategoryID] = true
			parents = append(parents, c.ParentCategoryID)
		}
	}
	return parents
}
