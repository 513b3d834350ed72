// Package domain contains the core domain types and the interest-accrual
// rules of the recommendation engine. Everything here is persistence-free
// and safe to unit test in isolation.
package domain

import "time"

// User represents a registered account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Bio          string    `json:"bio,omitempty"`
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// ParentInterests are the parent-category IDs the user selected at
	// registration. They drive home-feed candidate selection; an empty
	// set triggers the popularity fallback.
	ParentInterests []string `json:"parent_interests,omitempty"`
}

// HasParentInterest reports whether the user selected the given parent category.
func (u *User) HasParentInterest(parentCategoryID string) bool {
	for _, id := range u.ParentInterests {
		if id == parentCategoryID {
			return true
		}
	}
	return false
}

// Session represents an authenticated refresh session.
type Session struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"-"`
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
}

// Expired reports whether the session has passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
