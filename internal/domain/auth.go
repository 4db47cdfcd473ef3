package domain

import "time"

// SessionToken is an issued bearer token and its expiry.
type SessionToken struct {
	Token     string
	ExpiresAt time.Time
}
