package models

import "time"

// Session is a bearer credential bound to one account. Sessions are stateless:
// everything here is recovered from the signed token itself.
type Session struct {
	Token     string    `json:"token"`
	AccountID string    `json:"accountId"`
	ExpiresAt time.Time `json:"expiresAt"`
	IssuedAt  time.Time `json:"issuedAt"`
}
