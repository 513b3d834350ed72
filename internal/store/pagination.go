package store

// PageParams contains offset pagination request parameters.
type PageParams struct {
	Page    int // 1-based page number (defaults to 1)
	PerPage int // Items per page (defaults to 20 with a maximum of 100)
}

// PagedResult contains one page of data and metadata.
type PagedResult[T any] struct {
	Items   []T  `json:"items"`
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	HasMore bool `json:"has_more"`
}

// DefaultPageParams returns sensible defaults.
func DefaultPageParams() PageParams {
	return PageParams{
		Page:    1,
		PerPage: 20,
	}
}

// Validate checks and corrects pagination parameters.
func (p *PageParams) Validate() {
	if p.Page <= 0 {
		p.Page = 1
	}

	if p.PerPage <= 0 {
		p.PerPage = 20
	}

	if p.PerPage > 100 {
		p.PerPage = 100
	}
}

// Offset returns the row offset for the page.
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}
