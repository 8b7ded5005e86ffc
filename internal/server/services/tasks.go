package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MMaus/listkeeper/internal/common"
	"github.com/MMaus/listkeeper/internal/server/models"
	"github.com/MMaus/listkeeper/internal/server/repositories/repomanager"
	"github.com/MMaus/listkeeper/internal/timex"
)

// TaskService is the direct CRUD surface for tasks, used by clients
// that talk to the server online instead of uploading change batches.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	clock       timex.Clock
}

func NewTaskService(db *sql.DB, repomanager repomanager.RepositoryManager, clock timex.Clock) *TaskService {
	return &TaskService{
		db:          db,
		repomanager: repomanager,
		clock:       clock,
	}
}

// List returns all tasks for ownerID, most recently updated first.
func (s *TaskService) List(ctx context.Context, ownerID string) ([]*models.Task, error) {
	if ownerID == "" {
		return nil, common.ErrorUnauthorized
	}
	return s.repomanager.Tasks(s.db).SelectUpdatedSince(ctx, ownerID, nil)
}

// Get returns one task by its server id.
func (s *TaskService) Get(ctx context.Context, ownerID string, id int64) (*models.Task, error) {
	if ownerID == "" {
		return nil, common.ErrorUnauthorized
	}
	return s.repomanager.Tasks(s.db).Find(ctx, ownerID, id)
}

// Create inserts a new task, stamping both timestamps with the server
// clock.
func (s *TaskService) Create(ctx context.Context, ownerID string, fields models.TaskFields) (*models.Task, error) {
	if ownerID == "" {
		return nil, common.ErrorUnauthorized
	}
	if fields.Title == "" {
		return nil, common.ErrMalformedChange
	}

	now := s.clock.Now()
	task := &models.Task{
		OwnerID:     ownerID,
		Title:       fields.Title,
		Description: fields.Description,
		Tags:        fields.Tags,
		DueDate:     fields.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	task, err := s.repomanager.Tasks(s.db).Create(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("error creating task: %w", err)
	}
	return task, nil
}

// Update overwrites the mutable fields of one task and bumps
// updated_at to the server clock.
func (s *TaskService) Update(ctx context.Context, ownerID string, id int64, fields models.TaskFields) (*models.Task, error) {
	if ownerID == "" {
		return nil, common.ErrorUnauthorized
	}
	if fields.Title == "" {
		return nil, common.ErrMalformedChange
	}

	repo := s.repomanager.Tasks(s.db)
	fields.UpdatedAt = s.clock.Now()
	if err := repo.UpdateFields(ctx, ownerID, id, fields); err != nil {
		return nil, err
	}
	return repo.Find(ctx, ownerID, id)
}

// Delete removes one task. Deleting an unknown id is not an error, so
// retried deletions stay idempotent.
func (s *TaskService) Delete(ctx context.Context, ownerID string, id int64) error {
	if ownerID == "" {
		return common.ErrorUnauthorized
	}
	return s.repomanager.Tasks(s.db).DeleteByIDs(ctx, ownerID, []int64{id})
}
