// Package services contains the server-side business logic: the sync
// engine with its conflict and duplicate handling, direct CRUD for both
// record kinds, shopping history, and user authentication.
package services

import (
	"time"

	"github.com/MMaus/listkeeper/internal/server/models"
	"github.com/MMaus/listkeeper/internal/timex"
)

// ResolveTaskConflict merges a local task change into the current
// server record using last-write-wins. The local side wins only when
// its updated_at is strictly greater than the server's; an exact tie
// keeps the server authoritative. When the local side wins, it wins per
// field: values it omits fall back to the server's, and the merged
// updated_at becomes the local timestamp.
//
// The function is pure: neither input is mutated, callers persist the
// returned field set.
func ResolveTaskConflict(server *models.Task, local *models.TaskChange, localUpdatedAt time.Time) models.TaskFields {
	fields := models.TaskFields{
		Title:       server.Title,
		Description: server.Description,
		Tags:        server.Tags,
		DueDate:     server.DueDate,
		UpdatedAt:   server.UpdatedAt,
	}

	if !localUpdatedAt.After(server.UpdatedAt) {
		return fields
	}

	if local.Title != nil {
		fields.Title = *local.Title
	}
	if local.Description != nil {
		fields.Description = local.Description
	}
	if local.Tags != nil {
		fields.Tags = *local.Tags
	}
	if local.DueDate != nil {
		// An unparsable due date loses to the server value.
		if d, err := timex.ParseDate(*local.DueDate); err == nil {
			date := models.NewDate(d)
			fields.DueDate = &date
		}
	}
	fields.UpdatedAt = localUpdatedAt
	return fields
}

// ResolveShoppingItemConflict is the shopping list counterpart of
// ResolveTaskConflict, with identical ordering rules.
func ResolveShoppingItemConflict(server *models.ShoppingItem, local *models.ShoppingItemChange, localUpdatedAt time.Time) models.ShoppingItemFields {
	fields := models.ShoppingItemFields{
		Name:       server.Name,
		Quantity:   server.Quantity,
		Categories: server.Categories,
		InBasket:   server.InBasket,
		UpdatedAt:  server.UpdatedAt,
	}

	if !localUpdatedAt.After(server.UpdatedAt) {
		return fields
	}

	if local.Name != nil {
		fields.Name = *local.Name
	}
	if local.Quantity != nil {
		fields.Quantity = *local.Quantity
	}
	if local.Categories != nil {
		fields.Categories = *local.Categories
	}
	if local.InBasket != nil {
		fields.InBasket = *local.InBasket
	}
	fields.UpdatedAt = localUpdatedAt
	return fields
}
