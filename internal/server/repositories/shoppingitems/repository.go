// Package shoppingitems declares the storage contract for owner-scoped
// shopping list records.
package shoppingitems

import (
	"context"
	"time"

	"github.com/MMaus/listkeeper/internal/server/models"
)

type Repository interface {
	// Find returns the item with the given server id for ownerID, or
	// common.ErrorNotFound.
	Find(ctx context.Context, ownerID string, id int64) (*models.ShoppingItem, error)

	// Create inserts a new item and fills in its server-assigned id.
	Create(ctx context.Context, item *models.ShoppingItem) (*models.ShoppingItem, error)

	// UpdateFields overwrites the mutable field set of one item.
	UpdateFields(ctx context.Context, ownerID string, id int64, fields models.ShoppingItemFields) error

	// DeleteByIDs removes the listed items. Ids that do not exist for
	// ownerID are silently ignored.
	DeleteByIDs(ctx context.Context, ownerID string, ids []int64) error

	// SelectUpdatedSince returns all items for ownerID with updated_at
	// strictly after since, newest first. A nil since means all items.
	SelectUpdatedSince(ctx context.Context, ownerID string, since *time.Time) ([]*models.ShoppingItem, error)

	// ExistsSimilar reports whether an item with exactly this name and a
	// created_at inside [from, to] exists for ownerID.
	ExistsSimilar(ctx context.Context, ownerID, name string, from, to time.Time) (bool, error)

	// MarkSynced stamps synced_at on the listed items.
	MarkSynced(ctx context.Context, ownerID string, ids []int64, syncedAt time.Time) error

	// FindByName returns the item with exactly this name for ownerID, or
	// common.ErrorNotFound. Used when re-adding a history item.
	FindByName(ctx context.Context, ownerID, name string) (*models.ShoppingItem, error)

	// SelectInBasket returns all items currently in the basket.
	SelectInBasket(ctx context.Context, ownerID string) ([]*models.ShoppingItem, error)
}
