// Package queue defines message payloads exchanged over the message broker
// and the background consumer that drains them.
package queue

// Task lifecycle actions carried by TaskActivityEvent.
const (
	ActionCreated   = "created"
	ActionCompleted = "completed"
	ActionReopened  = "reopened"
)

// TaskActivityEvent is published whenever a task is created or its completion
// state flips. It carries enough for downstream consumers to log or feed
// analytics without querying the primary database.
type TaskActivityEvent struct {
	TaskID     uint64 `json:"task_id"`
	OwnerID    uint64 `json:"owner_id"`
	Username   string `json:"username"`
	Title      string `json:"title"`
	Action     string `json:"action"`
	OccurredAt string `json:"occurred_at"`
}
