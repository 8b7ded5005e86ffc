package shoppingitems

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

// PostgresRepository implements shopping list storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const itemColumns = `id, owner_id, name, quantity, categories, in_basket, created_at, updated_at, synced_at`

func scanItem(scan func(dest ...any) error) (*models.ShoppingItem, error) {
	var (
		item     models.ShoppingItem
		syncedAt sql.NullTime
	)
	err := scan(&item.ID, &item.OwnerID, &item.Name, &item.Quantity, &item.Categories, &item.InBasket, &item.CreatedAt, &item.UpdatedAt, &syncedAt)
	if err != nil {
		return nil, err
	}
	if syncedAt.Valid {
		item.SyncedAt = &syncedAt.Time
	}
	return &item, nil
}

func (r *PostgresRepository) Find(ctx context.Context, ownerID string, id int64) (*models.ShoppingItem, error) {
	query := `SELECT ` + itemColumns + ` FROM shopping_items WHERE owner_id = $1 AND id = $2`

	item, err := scanItem(r.db.QueryRowContext(ctx, query, ownerID, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

func (r *PostgresRepository) FindByName(ctx context.Context, ownerID, name string) (*models.ShoppingItem, error) {
	query := `SELECT ` + itemColumns + ` FROM shopping_items WHERE owner_id = $1 AND name = $2 LIMIT 1`

	item, err := scanItem(r.db.QueryRowContext(ctx, query, ownerID, name).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

func (r *PostgresRepository) Create(ctx context.Context, item *models.ShoppingItem) (*models.ShoppingItem, error) {
	query := `
		INSERT INTO shopping_items (owner_id, name, quantity, categories, in_basket, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		item.OwnerID, item.Name, item.Quantity, item.Categories, item.InBasket,
		item.CreatedAt, item.UpdatedAt,
	).Scan(&item.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

func (r *PostgresRepository) UpdateFields(ctx context.Context, ownerID string, id int64, fields models.ShoppingItemFields) error {
	query := `
		UPDATE shopping_items
		SET name = $1, quantity = $2, categories = $3, in_basket = $4, updated_at = $5
		WHERE owner_id = $6 AND id = $7
	`
	if _, err := r.db.ExecContext(ctx, query,
		fields.Name, fields.Quantity, fields.Categories, fields.InBasket, fields.UpdatedAt,
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
	query := fmt.Sprintf(`DELETE FROM shopping_items WHERE owner_id = $1 AND id IN (%s)`, dbx.Placeholders(2, len(ids)))

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

func (r *PostgresRepository) SelectUpdatedSince(ctx context.Context, ownerID string, since *time.Time) ([]*models.ShoppingItem, error) {
	query := `SELECT ` + itemColumns + ` FROM shopping_items WHERE owner_id = $1`
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

	var result []*models.ShoppingItem
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) SelectInBasket(ctx context.Context, ownerID string) ([]*models.ShoppingItem, error) {
	query := `SELECT ` + itemColumns + ` FROM shopping_items WHERE owner_id = $1 AND in_basket ORDER BY updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.ShoppingItem
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) ExistsSimilar(ctx context.Context, ownerID, name string, from, to time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM shopping_items
			WHERE owner_id = $1 AND name = $2 AND created_at BETWEEN $3 AND $4
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, ownerID, name, from, to).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) MarkSynced(ctx context.Context, ownerID string, ids []int64, syncedAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	query := fmt.Sprintf(`UPDATE shopping_items SET synced_at = $1 WHERE owner_id = $2 AND id IN (%s)`, dbx.Placeholders(3, len(ids)))

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
