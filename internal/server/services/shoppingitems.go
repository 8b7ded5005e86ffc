package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MMaus/listkeeper/internal/common"
	"github.com/MMaus/listkeeper/internal/dbx"
	"github.com/MMaus/listkeeper/internal/server/models"
	"github.com/MMaus/listkeeper/internal/server/repositories/history"
	"github.com/MMaus/listkeeper/internal/server/repositories/repomanager"
	"github.com/MMaus/listkeeper/internal/timex"
)

// ShoppingItemService is the direct CRUD surface for the shopping
// list, plus the two operations that cross into purchase history:
// Checkout and AddFromHistory.
type ShoppingItemService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	clock       timex.Clock
}

func NewShoppingItemService(db *sql.DB, repomanager repomanager.RepositoryManager, clock timex.Clock) *ShoppingItemService {
	return &ShoppingItemService{
		db:          db,
		repomanager: repomanager,
		clock:       clock,
	}
}

// List returns all shopping items for ownerID, most recently updated
// first.
func (s *ShoppingItemService) List(ctx context.Context, ownerID string) ([]*models.ShoppingItem, error) {
	if ownerID == "" {
		return nil, common.ErrorUnauthorized
	}
	return s.repomanager.ShoppingItems(s.db).SelectUpdatedSince(ctx, ownerID, nil)
}

// Get returns one item by its server id.
func (s *ShoppingItemService) Get(ctx context.Context, ownerID string, id int64) (*models.ShoppingItem, error) {
	if ownerID == "" {
		return nil, common.ErrorUnauthorized
	}
	return s.repomanager.ShoppingItems(s.db).Find(ctx, ownerID, id)
}

// Create inserts a new shopping item, stamping both timestamps with the
// server clock. A zero quantity defaults to 1.
func (s *ShoppingItemService) Create(ctx context.Context, ownerID string, fields models.ShoppingItemFields) (*models.ShoppingItem, error) {
	if ownerID == "" {
		return nil, common.ErrorUnauthorized
	}
	if fields.Name == "" {
		return nil, common.ErrMalformedChange
	}
	if fields.Quantity == 0 {
		fields.Quantity = 1
	}

	now := s.clock.Now()
	item := &models.ShoppingItem{
		OwnerID:    ownerID,
		Name:       fields.Name,
		Quantity:   fields.Quantity,
		Categories: fields.Categories,
		InBasket:   fields.InBasket,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	item, err := s.repomanager.ShoppingItems(s.db).Create(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("error creating shopping item: %w", err)
	}
	return item, nil
}

// Update overwrites the mutable fields of one item and bumps
// updated_at to the server clock.
func (s *ShoppingItemService) Update(ctx context.Context, ownerID string, id int64, fields models.ShoppingItemFields) (*models.ShoppingItem, error) {
	if ownerID == "" {
		return nil, common.ErrorUnauthorized
	}
	if fields.Name == "" {
		return nil, common.ErrMalformedChange
	}

	repo := s.repomanager.ShoppingItems(s.db)
	fields.UpdatedAt = s.clock.Now()
	if err := repo.UpdateFields(ctx, ownerID, id, fields); err != nil {
		return nil, err
	}
	return repo.Find(ctx, ownerID, id)
}

// Delete removes one item. Deleting an unknown id is not an error.
func (s *ShoppingItemService) Delete(ctx context.Context, ownerID string, id int64) error {
	if ownerID == "" {
		return common.ErrorUnauthorized
	}
	return s.repomanager.ShoppingItems(s.db).DeleteByIDs(ctx, ownerID, []int64{id})
}

// Checkout moves every item currently in the basket into the purchase
// history and removes it from the list, all in one transaction. It
// returns the recorded purchases.
func (s *ShoppingItemService) Checkout(ctx context.Context, ownerID string) ([]*models.ShoppingHistoryItem, error) {
	if ownerID == "" {
		return nil, common.ErrorUnauthorized
	}

	now := s.clock.Now()

	var purchased []*models.ShoppingHistoryItem
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		items, err := s.repomanager.ShoppingItems(tx).SelectInBasket(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("error selecting basket: %w", err)
		}
		if len(items) == 0 {
			return nil
		}

		ids := make([]int64, 0, len(items))
		for _, item := range items {
			record := &models.ShoppingHistoryItem{
				OwnerID:     ownerID,
				Name:        item.Name,
				Quantity:    item.Quantity,
				Categories:  item.Categories,
				PurchasedAt: now,
			}
			record, err = s.repomanager.History(tx).Create(ctx, record)
			if err != nil {
				return fmt.Errorf("error recording purchase: %w", err)
			}
			purchased = append(purchased, record)
			ids = append(ids, item.ID)
		}

		return s.repomanager.ShoppingItems(tx).DeleteByIDs(ctx, ownerID, ids)
	})
	if err != nil {
		return nil, err
	}
	return purchased, nil
}

// AddFromHistory puts a previously purchased item back on the list. If
// an item with the same name is already on the list its quantity is
// incremented instead of creating a duplicate row.
func (s *ShoppingItemService) AddFromHistory(ctx context.Context, ownerID string, historyID int64) (*models.ShoppingItem, error) {
	if ownerID == "" {
		return nil, common.ErrorUnauthorized
	}

	record, err := s.repomanager.History(s.db).Find(ctx, ownerID, historyID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	repo := s.repomanager.ShoppingItems(s.db)

	existing, err := repo.FindByName(ctx, ownerID, record.Name)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		item := &models.ShoppingItem{
			OwnerID:    ownerID,
			Name:       record.Name,
			Quantity:   record.Quantity,
			Categories: record.Categories,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		return repo.Create(ctx, item)
	}

	fields := models.ShoppingItemFields{
		Name:       existing.Name,
		Quantity:   existing.Quantity + record.Quantity,
		Categories: existing.Categories,
		InBasket:   existing.InBasket,
		UpdatedAt:  now,
	}
	if err := repo.UpdateFields(ctx, ownerID, existing.ID, fields); err != nil {
		return nil, err
	}
	return repo.Find(ctx, ownerID, existing.ID)
}

// History returns purchase records for ownerID per filter.
func (s *ShoppingItemService) History(ctx context.Context, ownerID string, filter history.ListFilter) ([]*models.ShoppingHistoryItem, error) {
	if ownerID == "" {
		return nil, common.ErrorUnauthorized
	}
	return s.repomanager.History(s.db).List(ctx, ownerID, filter)
}
