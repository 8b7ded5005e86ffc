package tasks

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/MMaus/listkeeper/internal/common"
	"github.com/MMaus/listkeeper/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func taskRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "owner_id", "title", "description", "tags", "due_date", "created_at", "updated_at", "synced_at"})
}

func TestFind_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	mock.ExpectQuery(`SELECT .* FROM tasks WHERE owner_id = \$1 AND id = \$2`).
		WithArgs("u1", int64(5)).
		WillReturnRows(taskRows().AddRow(int64(5), "u1", "Milk", "2 liters", `["groceries"]`, nil, created, updated, nil))

	task, err := repo.Find(context.Background(), "u1", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Title != "Milk" {
		t.Fatalf("want title Milk, got %q", task.Title)
	}
	if task.Description == nil || *task.Description != "2 liters" {
		t.Fatalf("unexpected description: %v", task.Description)
	}
	if len(task.Tags) != 1 || task.Tags[0] != "groceries" {
		t.Fatalf("unexpected tags: %v", task.Tags)
	}
	if task.DueDate != nil || task.SyncedAt != nil {
		t.Fatalf("expected nil due_date and synced_at")
	}
}

func TestFind_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM tasks WHERE owner_id = \$1 AND id = \$2`).
		WithArgs("u1", int64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Find(context.Background(), "u1", 404)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestCreate_AssignsID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO tasks .* RETURNING id`).
		WithArgs("u1", "Milk", nil, nil, nil, created, created).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	task, err := repo.Create(context.Background(), &models.Task{
		OwnerID:   "u1",
		Title:     "Milk",
		CreatedAt: created,
		UpdatedAt: created,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ID != 7 {
		t.Fatalf("want id 7, got %d", task.ID)
	}
}

func TestUpdateFields(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	updated := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	desc := "with eggs"

	mock.ExpectExec(`UPDATE tasks\s+SET title = \$1, description = \$2, tags = \$3, due_date = \$4, updated_at = \$5\s+WHERE owner_id = \$6 AND id = \$7`).
		WithArgs("Milk and eggs", &desc, `["groceries"]`, nil, updated, "u1", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateFields(context.Background(), "u1", 5, models.TaskFields{
		Title:       "Milk and eggs",
		Description: &desc,
		Tags:        models.StringSlice{"groceries"},
		UpdatedAt:   updated,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteByIDs_ExpandsPlaceholders(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM tasks WHERE owner_id = \$1 AND id IN \(\$2, \$3\)`).
		WithArgs("u1", int64(5), int64(6)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	if err := repo.DeleteByIDs(context.Background(), "u1", []int64{5, 6}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteByIDs_EmptyIsNoop(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	if err := repo.DeleteByIDs(context.Background(), "u1", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no statement should run: %v", err)
	}
}

func TestSelectUpdatedSince_WithCheckpoint(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	checkpoint := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	updated := checkpoint.Add(time.Minute)

	mock.ExpectQuery(`SELECT .* FROM tasks WHERE owner_id = \$1 AND updated_at > \$2 ORDER BY updated_at DESC`).
		WithArgs("u1", checkpoint).
		WillReturnRows(taskRows().AddRow(int64(1), "u1", "Milk", nil, nil, nil, checkpoint, updated, nil))

	got, err := repo.SelectUpdatedSince(context.Background(), "u1", &checkpoint)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Milk" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestSelectUpdatedSince_NilCheckpointSelectsAll(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM tasks WHERE owner_id = \$1 ORDER BY updated_at DESC`).
		WithArgs("u1").
		WillReturnRows(taskRows())

	got, err := repo.SelectUpdatedSince(context.Background(), "u1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d rows", len(got))
	}
}

func TestExistsSimilar(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	from := created.Add(-time.Hour)
	to := created.Add(time.Hour)

	mock.ExpectQuery(`SELECT EXISTS .* created_at BETWEEN \$3 AND \$4`).
		WithArgs("u1", "Bread", from, to).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsSimilar(context.Background(), "u1", "Bread", from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Fatalf("expected exists=true")
	}
}

func TestMarkSynced(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	syncedAt := time.Date(2025, 3, 14, 11, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE tasks SET synced_at = \$1 WHERE owner_id = \$2 AND id IN \(\$3, \$4\)`).
		WithArgs(syncedAt, "u1", int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	if err := repo.MarkSynced(context.Background(), "u1", []int64{1, 2}, syncedAt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFind_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM tasks`).
		WithArgs("u1", int64(1)).
		WillReturnError(errors.New("db is down"))

	_, err := repo.Find(context.Background(), "u1", 1)
	if err == nil || !regexp.MustCompile(`db error: .*db is down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
