package domain

import "time"

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsWorker     bool      `json:"is_worker"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is a resolved login: the opaque token is never stored, only its hash.
type Session struct {
	TokenHash string
	User      User
	ExpiresAt time.Time
}
