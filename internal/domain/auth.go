package domain

import "time"

// TokenClaims are the identity claims carried by an issued bearer token.
type TokenClaims struct {
	UserID    int64
	Username  string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// Identity is the caller identity yielded by a verified token.
type Identity struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}
