package domain

// FeedScope selects which candidate pool a feed request draws from.
type FeedScope string

const (
	// FeedScopeHome is the personalized feed built from the user's parent
	// interests, ranked by engagement score.
	FeedScopeHome FeedScope = "home"
	// FeedScopeFollowing lists videos from followed creators, newest first.
	FeedScopeFollowing FeedScope = "following"
	// FeedScopeCategory lists videos under a single parent category.
	FeedScopeCategory FeedScope = "category"
)

// Valid reports whether the scope is one of the known variants.
func (s FeedScope) Valid() bool {
	switch s {
	case FeedScopeHome, FeedScopeFollowing, FeedScopeCategory:
		return true
	}
	return false
}

// FeedPage is one page of a composed feed.
type FeedPage struct {
	Videos  []*RankedVideo `json:"videos"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
	HasMore bool           `json:"has_more"`
}
