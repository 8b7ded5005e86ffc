// Package models holds the server-side record types and the change
// payloads clients upload during reconciliation.
package models

import "time"

// Task is a server-held todo record. OwnerID scopes every query that
// touches it; UpdatedAt orders conflicting edits; SyncedAt marks the
// last time the record was handed to a client in a sync response.
type Task struct {
	ID          int64       `json:"id"`
	OwnerID     string      `json:"owner_id"`
	Title       string      `json:"title"`
	Description *string     `json:"description"`
	Tags        StringSlice `json:"tags"`
	DueDate     *Date       `json:"due_date"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	SyncedAt    *time.Time  `json:"synced_at"`
}

// TaskChange is one client-side task mutation. Optional fields are
// pointers so the conflict resolver can tell "field omitted" from
// "field set to its zero value". Timestamps stay strings until the sync
// engine parses them, because a single bad item must not fail the whole
// request body.
type TaskChange struct {
	ID          ChangeID     `json:"id"`
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Tags        *StringSlice `json:"tags"`
	DueDate     *string      `json:"due_date"`
	CreatedAt   string       `json:"created_at"`
	UpdatedAt   string       `json:"updated_at"`
}

// TaskFields is the mutable field set of a task, as produced by the
// conflict resolver and consumed by the repository update.
type TaskFields struct {
	Title       string
	Description *string
	Tags        StringSlice
	DueDate     *Date
	UpdatedAt   time.Time
}
