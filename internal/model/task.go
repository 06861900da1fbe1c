package model

import "time"

// Task represents a row of the `tasks` table. Every task belongs to exactly
// one user; a title is unique per owner.
type Task struct {
	ID          uint64    // tasks.id
	OwnerID     uint64    // tasks.owner_id (references users.id)
	Title       string    // tasks.title
	Description string    // tasks.description
	Completed   bool      // tasks.completed
	CreatedAt   time.Time // tasks.created_at
	UpdatedAt   time.Time // tasks.updated_at
}
