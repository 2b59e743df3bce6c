package models

import "time"

// RefreshToken is one issued session credential. Rows are never deleted on
// rotation; IsRevoked only moves from false to true.
type RefreshToken struct {
	ID             int64
	Token          string
	UserID         int64
	ExpirationDate time.Time
	IsRevoked      bool
	CreatedAt      time.Time

	// User is populated by lookups that join the owning account.
	User *User
}
