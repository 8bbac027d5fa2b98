package models

import "time"

// Token is the persisted half of an access token. The signed bearer string
// carries the token ID; a request only authenticates while this row exists
// and is unexpired, so deleting the row revokes the token immediately.
type Token struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (t *Token) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
