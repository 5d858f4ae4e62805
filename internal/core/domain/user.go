package domain

import "time"

// User is a login identity. Exactly one account belongs to each user.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"usuario"`
	PasswordHash string    `json:"-"` // Argon2id, never expose
	CreatedAt    time.Time `json:"created_at"`
}
