package model

import "time"

// User represents a row of the `users` table. Usernames are unique and
// case-sensitive; PasswordHash is an opaque bcrypt digest with the salt and
// cost embedded. These structs carry no json tags on purpose: handlers define
// their own response shapes.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	PasswordHash string    // users.password_hash
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
