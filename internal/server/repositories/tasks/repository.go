// Package tasks declares the storage contract for owner-scoped task
// records. Every operation is bounded by an owner id; there is no way
// to reach another owner's rows through this interface.
package tasks

import (
	"context"
	"time"

	"github.com/MMaus/listkeeper/internal/server/models"
)

type Repository interface {
	// Find returns the task with the given server id for ownerID, or
	// common.ErrorNotFound.
	Find(ctx context.Context, ownerID string, id int64) (*models.Task, error)

	// Create inserts a new task and fills in its server-assigned id.
	Create(ctx context.Context, task *models.Task) (*models.Task, error)

	// UpdateFields overwrites the mutable field set of one task.
	UpdateFields(ctx context.Context, ownerID string, id int64, fields models.TaskFields) error

	// DeleteByIDs removes the listed tasks. Ids that do not exist for
	// ownerID are silently ignored.
	DeleteByIDs(ctx context.Context, ownerID string, ids []int64) error

	// SelectUpdatedSince returns all tasks for ownerID with
	// updated_at strictly after since, newest first. A nil since means
	// all tasks.
	SelectUpdatedSince(ctx context.Context, ownerID string, since *time.Time) ([]*models.Task, error)

	// ExistsSimilar reports whether a task with exactly this title and a
	// created_at inside [from, to] exists for ownerID.
	ExistsSimilar(ctx context.Context, ownerID, title string, from, to time.Time) (bool, error)

	// MarkSynced stamps synced_at on the listed tasks.
	MarkSynced(ctx context.Context, ownerID string, ids []int64, syncedAt time.Time) error
}
