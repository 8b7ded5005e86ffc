// Package history declares the storage contract for the shopping
// purchase history.
package history

import (
	"context"

	"github.com/MMaus/listkeeper/internal/server/models"
)

// ListFilter narrows and orders a history listing. Zero value lists
// everything, most recent purchase first.
type ListFilter struct {
	// Search matches item names containing the given substring.
	Search string
	// SortBy is "purchased_at" (default) or "name".
	SortBy string
	// Ascending flips the default descending order.
	Ascending bool
	// Limit caps the number of rows; 0 means no cap.
	Limit int
	// Offset skips rows for pagination.
	Offset int
}

type Repository interface {
	// Create inserts a purchase record and fills in its id.
	Create(ctx context.Context, item *models.ShoppingHistoryItem) (*models.ShoppingHistoryItem, error)

	// Find returns the record with the given id for ownerID, or
	// common.ErrorNotFound.
	Find(ctx context.Context, ownerID string, id int64) (*models.ShoppingHistoryItem, error)

	// List returns purchase records for ownerID per filter.
	List(ctx context.Context, ownerID string, filter ListFilter) ([]*models.ShoppingHistoryItem, error)
}
