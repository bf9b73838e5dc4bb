package domain

import "time"

// User is the domain model for a registered account. The password hash is
// opaque; the raw secret is never stored.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
