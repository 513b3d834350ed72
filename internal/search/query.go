package search

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a search query.
type Params struct {
	Query string // User's search query

	// Filters
	CategoryIDs      []string // Filter by exact leaf category IDs
	ParentCategoryID string   // Filter by parent category
	CreatorID        string   // Filter to a single creator
	MinDurationSecs  int      // Minimum video duration
	MaxDurationSecs  int      // Maximum video duration

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "relevance", "recent", "views", "duration"
	SortOrder string // "asc", "desc"

	Highlight bool // Include match highlighting
}

// DefaultParams returns sensible defaults.
func DefaultParams() Params {
	return Params{
		Limit:     20,
		Offset:    0,
		SortBy:    "relevance",
		SortOrder: "desc",
		Highlight: true,
	}
}

// Result represents the search results.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Hit represents a single search result.
type Hit struct {
	ID           string            `json:"id"`
	Score        float64           `json:"score"`
	Title        string            `json:"title"`
	Creator      string            `json:"creator,omitempty"`
	DurationSecs int               `json:"duration_secs,omitempty"`
	Views        int64             `json:"views,omitempty"`
	Highlights   map[string]string `json:"highlights,omitempty"`
}

// Search executes a search query.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	addSorting(searchRequest, params)

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("title")
		searchRequest.Highlight.AddField("creator")
	}

	searchRequest.Fields = []string{
		"id", "title", "creator", "duration_secs", "views",
	}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		h := Hit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if t, ok := hit.Fields["title"].(string); ok {
			h.Title = t
		}
		if c, ok := hit.Fields["creator"].(string); ok {
			h.Creator = c
		}
		if d, ok := hit.Fields["duration_secs"].(float64); ok {
			h.DurationSecs = int(d)
		}
		if v, ok := hit.Fields["views"].(float64); ok {
			h.Views = int64(v)
		}

		if len(hit.Fragments) > 0 {
			h.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					h.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, h)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params Params) query.Query {
	var queries []query.Query

	// Main text query: match on title (boosted), creator username, and
	// category names, with typo tolerance and prefix matching on the title.
	if params.Query != "" {
		textQueries := []query.Query{}

		titleMatch := bleve.NewMatchQuery(params.Query)
		titleMatch.SetField("title")
		titleMatch.SetBoost(3.0)
		textQueries = append(textQueries, titleMatch)

		creatorMatch := bleve.NewMatchQuery(params.Query)
		creatorMatch.SetField("creator")
		creatorMatch.SetBoost(1.5)
		textQueries = append(textQueries, creatorMatch)

		categoryMatch := bleve.NewMatchQuery(params.Query)
		categoryMatch.SetField("category_names")
		textQueries = append(textQueries, categoryMatch)

		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("title")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Prefix query for autocomplete (minimum 2 chars).
		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("title")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	// Category filter (exact match, OR across IDs).
	if len(params.CategoryIDs) > 0 {
		categoryQueries := make([]query.Query, len(params.CategoryIDs))
		for i, id := range params.CategoryIDs {
			cq := bleve.NewTermQuery(id)
			cq.SetField("category_ids")
			categoryQueries[i] = cq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(categoryQueries...))
	}

	if params.ParentCategoryID != "" {
		pq := bleve.NewTermQuery(params.ParentCategoryID)
		pq.SetField("parent_ids")
		queries = append(queries, pq)
	}

	if params.CreatorID != "" {
		cq := bleve.NewTermQuery(params.CreatorID)
		cq.SetField("creator_id")
		queries = append(queries, cq)
	}

	// Duration range filter.
	if params.MinDurationSecs > 0 || params.MaxDurationSecs > 0 {
		minDur := float64(params.MinDurationSecs)
		maxDur := float64(params.MaxDurationSecs)
		if params.MaxDurationSecs == 0 {
			maxDur = math.MaxFloat64
		}
		rangeQuery := bleve.NewNumericRangeQuery(&minDur, &maxDur)
		rangeQuery.SetField("duration_secs")
		queries = append(queries, rangeQuery)
	}

	// Combine all queries with AND.
	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params Params) {
	switch params.SortBy {
	case "recent":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"created_at"})
		} else {
			req.SortBy([]string{"-created_at"})
		}
	case "views":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"views"})
		} else {
			req.SortBy([]string{"-views"})
		}
	case "duration":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"duration_secs"})
		} else {
			req.SortBy([]string{"-duration_secs"})
		}
	default:
		// Relevance (score) is default.
		req.SortBy([]string{"-_score"})
	}
}
