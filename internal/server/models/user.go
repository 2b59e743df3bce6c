// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a registered account. PasswordHash is the encoded output of the
// password hasher and never leaves the server.
type User struct {
	ID           int64     `db:"id"`
	UserName     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}
