package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MMaus/listkeeper/internal/common"
	"github.com/MMaus/listkeeper/internal/dbx"
	"github.com/MMaus/listkeeper/internal/server/models"
)

// PostgresRepository implements purchase history storage over a
// dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const historyColumns = `id, owner_id, name, quantity, categories, purchased_at`

func (r *PostgresRepository) Create(ctx context.Context, item *models.ShoppingHistoryItem) (*models.ShoppingHistoryItem, error) {
	query := `
		INSERT INTO shopping_history_items (owner_id, name, quantity, categories, purchased_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		item.OwnerID, item.Name, item.Quantity, item.Categories, item.PurchasedAt,
	).Scan(&item.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

func (r *PostgresRepository) Find(ctx context.Context, ownerID string, id int64) (*models.ShoppingHistoryItem, error) {
	query := `SELECT ` + historyColumns + ` FROM shopping_history_items WHERE owner_id = $1 AND id = $2`

	var item models.ShoppingHistoryItem
	err := r.db.QueryRowContext(ctx, query, ownerID, id).
		Scan(&item.ID, &item.OwnerID, &item.Name, &item.Quantity, &item.Categories, &item.PurchasedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &item, nil
}

func (r *PostgresRepository) List(ctx context.Context, ownerID string, filter ListFilter) ([]*models.ShoppingHistoryItem, error) {
	query := `SELECT ` + historyColumns + ` FROM shopping_history_items WHERE owner_id = $1`
	args := []any{ownerID}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(` AND name ILIKE $%d`, len(args))
	}

	column := "purchased_at"
	if filter.SortBy == "name" {
		column = "name"
	}
	direction := "DESC"
	if filter.Ascending {
		direction = "ASC"
	}
	query += fmt.Sprintf(` ORDER BY %s %s`, column, direction)

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.ShoppingHistoryItem
	for rows.Next() {
		var item models.ShoppingHistoryItem
		if err := rows.Scan(&item.ID, &item.OwnerID, &item.Name, &item.Quantity, &item.Categories, &item.PurchasedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
