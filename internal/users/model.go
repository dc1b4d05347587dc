package users

import "time"

// User represents a registered account.
type User struct {
	ID               string
	Email            string
	HashedPassword   string
	FullName         string
	SubscriptionType string
	IsActive         bool
	IsAdmin          bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
	LastLoginAt      *time.Time
}
