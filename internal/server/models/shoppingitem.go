package models

import "time"

// ShoppingItem is a server-held shopping list record. Structurally it
// syncs exactly like a Task; only the mutable payload differs.
type ShoppingItem struct {
	ID         int64       `json:"id"`
	OwnerID    string      `json:"owner_id"`
	Name       string      `json:"name"`
	Quantity   float64     `json:"quantity"`
	Categories StringSlice `json:"categories"`
	InBasket   bool        `json:"in_basket"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	SyncedAt   *time.Time  `json:"synced_at"`
}

// ShoppingItemChange is one client-side shopping list mutation. See
// TaskChange for the pointer-field convention.
type ShoppingItemChange struct {
	ID         ChangeID     `json:"id"`
	Name       *string      `json:"name"`
	Quantity   *float64     `json:"quantity"`
	Categories *StringSlice `json:"categories"`
	InBasket   *bool        `json:"in_basket"`
	CreatedAt  string       `json:"created_at"`
	UpdatedAt  string       `json:"updated_at"`
}

// ShoppingItemFields is the mutable field set of a shopping item, as
// produced by the conflict resolver and consumed by the repository
// update.
type ShoppingItemFields struct {
	Name       string
	Quantity   float64
	Categories StringSlice
	InBasket   bool
	UpdatedAt  time.Time
}

// ShoppingHistoryItem records one purchased item. Rows are written at
// checkout and re-added to the list from the history screen.
type ShoppingHistoryItem struct {
	ID          int64       `json:"id"`
	OwnerID     string      `json:"owner_id"`
	Name        string      `json:"name"`
	Quantity    float64     `json:"quantity"`
	Categories  StringSlice `json:"categories"`
	PurchasedAt time.Time   `json:"purchased_at"`
}
