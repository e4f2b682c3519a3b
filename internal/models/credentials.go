package models

import "time"

// Credentials is the only durable state the client keeps: a bearer token,
// the username it was issued for, and the token's absolute expiry.
// The password is never stored.
type Credentials struct {
	Username string `json:"username"`
	Token    string `json:"token"`
	Expires  string `json:"expires"` // RFC 3339 UTC, as returned by auth/login
}

// Valid reports whether the token is still usable at the given instant.
// A missing or malformed expiry always counts as invalid. A 401 from the
// server is authoritative regardless of what this returns.
func (c Credentials) Valid(now time.Time) bool {
	if c.Token == "" || c.Expires == "" {
		return false
	}
	expires, err := time.Parse(time.RFC3339, c.Expires)
	if err != nil {
		return false
	}
	return now.Before(expires)
}
