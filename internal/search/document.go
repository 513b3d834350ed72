// Package search provides full-text video search using Bleve, with
// category filtering, fuzzy matching, and recency/popularity sorting.
package search

import (
	"github.com/reelfeedapp/reelfeed-server/internal/domain"
)

// VideoDocument is the document structure for the Bleve index.
//
// Creator username and category names are denormalized into the document
// so a single query covers everything a search box needs to match on.
type VideoDocument struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	CreatorID   string `json:"creator_id"`
	Creator     string `json:"creator,omitempty"` // Denormalized username

	// Category names for text matching, IDs for exact filtering.
	CategoryNames []string `json:"category_names,omitempty"`
	CategoryIDs   []string `json:"category_ids,omitempty"`
	ParentIDs     []string `json:"parent_ids,omitempty"`

	// Numeric fields for range queries and sorting.
	DurationSecs int   `json:"duration_secs,omitempty"`
	Views        int64 `json:"views,omitempty"`

	CreatedAt int64 `json:"created_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *VideoDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"title":      d.Title,
		"creator_id": d.CreatorID,
		"created_at": d.CreatedAt,
	}

	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Creator != "" {
		m["creator"] = d.Creator
	}
	if len(d.CategoryNames) > 0 {
		m["category_names"] = d.CategoryNames
	}
	if len(d.CategoryIDs) > 0 {
		m["category_ids"] = d.CategoryIDs
	}
	if len(d.ParentIDs) > 0 {
		m["parent_ids"] = d.ParentIDs
	}
	if d.DurationSecs > 0 {
		m["duration_secs"] = d.DurationSecs
	}
	if d.Views > 0 {
		m["views"] = d.Views
	}

	return m
}

// VideoToDocument converts a domain Video to a VideoDocument. The creator
// username and category names are denormalized by the caller, as the
// search package shouldn't depend on store.
func VideoToDocument(video *domain.Video, creatorUsername string, categoryNames []string) *VideoDocument {
	return &VideoDocument{
		ID:            video.ID,
		Title:         video.Title,
		Description:   video.Description,
		CreatorID:     video.CreatorID,
		Creator:       creatorUsername,
		CategoryNames: categoryNames,
		CategoryIDs:   video.CategoryIDs,
		ParentIDs:     video.ParentCategoryIDs,
		DurationSecs:  video.DurationSecs,
		Views:         video.Views,
		CreatedAt:     video.CreatedAt.UnixMilli(),
	}
}
