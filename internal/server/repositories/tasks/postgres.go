package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MMaus/listkeeper/internal/common"
	"github.com/MMaus/listkeeper/internal/dbx"
	"github.com/MMaus/listkeeper/internal/server/models"
)

// PostgresRepository implements task storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const taskColumns = `id, owner_id, title, description, tags, due_date, created_at, updated_at, synced_at`

func scanTask(scan func(dest ...any) error) (*models.Task, error) {
	var (
		task        models.Task
		description sql.NullString
		dueDate     sql.NullTime
		syncedAt    sql.NullTime
	)
	err := scan(&task.ID, &task.OwnerID, &task.Title, &description, &task.Tags, &dueDate, &task.CreatedAt, &task.UpdatedAt, &syncedAt)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		task.Description = &description.String
	}
	if dueDate.Valid {
		d := models.NewDate(dueDate.Time)
		task.DueDate = &d
	}
	if syncedAt.Valid {
		task.SyncedAt = &syncedAt.Time
	}
	return &task, nil
}

func dateArg(d *models.Date) any {
	if d == nil {
		return nil
	}
	return d.Time
}

func (r *PostgresRepository) Find(ctx context.Context, ownerID string, id int64) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = $1 AND id = $2`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, ownerID, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return task, nil
}

func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	query := `
		INSERT INTO tasks (owner_id, title, description, tags, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		task.OwnerID, task.Title, task.Description, task.Tags, dateArg(task.DueDate),
		task.CreatedAt, task.UpdatedAt,
	).Scan(&task.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return task, nil
}

func (r *PostgresRepository) UpdateFields(ctx context.Context, ownerID string, id int64, fields models.TaskFields) error {
	query := `
		UPDATE tasks
		SET title = $1, description = $2, tags = $3, due_date = $4, updated_at = $5
		WHERE owner_id = $6 AND id = $7
	`
	if _, err := r.db.ExecContext(ctx, query,
		fields.Title, fields.Description, fields.Tags, dateArg(fields.DueDate), fields.UpdatedAt,
		ownerID, id,
	); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteByIDs(ctx context.Context, ownerID string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	query := fmt.Sprintf(`DELETE FROM tasks WHERE owner_id = $1 AND id IN (%s)`, dbx.Placeholders(2, len(ids)))

	args := make([]any, 0, len(ids)+1)
	args = append(args, ownerID)
	for _, id := range ids {
		args = append(args, id)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SelectUpdatedSince(ctx context.Context, ownerID string, since *time.Time) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = $1`
	args := []any{ownerID}
	if since != nil {
		query += ` AND updated_at > $2`
		args = append(args, *since)
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Task
	for rows.Next() {
		task, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) ExistsSimilar(ctx context.Context, ownerID, title string, from, to time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM tasks
			WHERE owner_id = $1 AND title = $2 AND created_at BETWEEN $3 AND $4
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, ownerID, title, from, to).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) MarkSynced(ctx context.Context, ownerID string, ids []int64, syncedAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	query := fmt.Sprintf(`UPDATE tasks SET synced_at = $1 WHERE owner_id = $2 AND id IN (%s)`, dbx.Placeholders(3, len(ids)))

	args := make([]any, 0, len(ids)+2)
	args = append(args, syncedAt, ownerID)
	for _, id := range ids {
		args = append(args, id)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
