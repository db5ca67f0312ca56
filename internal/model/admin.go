package model

import "time"

// Admin is the administrator account that manages site content through the
// admin API. A deployment holds at most one; the store enforces that with a
// fixed primary key. Passwords are stored as bcrypt hashes.
type Admin struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"` // bcrypt hash, never expose
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Session is a durable server-side login session. The opaque ID travels in
// an HTTP-only cookie; everything else stays in the store.
type Session struct {
	ID        string    `json:"id" db:"id"`
	AdminID   int64     `json:"admin_id" db:"admin_id"`
	Username  string    `json:"username" db:"username"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}

// Expired reports whether the session lifetime has elapsed at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
