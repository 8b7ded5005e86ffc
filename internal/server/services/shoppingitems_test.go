package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MMaus/listkeeper/internal/common"
	"github.com/MMaus/listkeeper/internal/server/models"
	historyrepo "github.com/MMaus/listkeeper/internal/server/repositories/history"
)

func newShoppingService(t *testing.T, rm *fakeRepoManager, now time.Time) *ShoppingItemService {
	t.Helper()
	db, mock := newSQLMockDB(t)
	t.Cleanup(func() { db.Close() })
	// Checkout runs in a transaction; allow any begin/commit/rollback.
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectRollback()
	return NewShoppingItemService(db, rm, fixedClock{t: now})
}

func TestShoppingService_Create_DefaultsQuantity(t *testing.T) {
	rm := newFakeRepoManager()
	s := newShoppingService(t, rm, syncNow)

	item, err := s.Create(context.Background(), "o1", models.ShoppingItemFields{Name: "milk"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, item.Quantity)
	assert.True(t, item.CreatedAt.Equal(syncNow))
}

func TestShoppingService_Create_MissingName(t *testing.T) {
	s := newShoppingService(t, newFakeRepoManager(), syncNow)

	_, err := s.Create(context.Background(), "o1", models.ShoppingItemFields{})
	require.ErrorIs(t, err, common.ErrMalformedChange)
}

func TestShoppingService_Checkout(t *testing.T) {
	rm := newFakeRepoManager()
	old := syncNow.Add(-time.Hour)
	inBasket := rm.s.add(&models.ShoppingItem{OwnerID: "o1", Name: "milk", Quantity: 2, InBasket: true, UpdatedAt: old})
	rm.s.add(&models.ShoppingItem{OwnerID: "o1", Name: "bread", Quantity: 1, InBasket: false, UpdatedAt: old})
	rm.s.add(&models.ShoppingItem{OwnerID: "other", Name: "jam", Quantity: 1, InBasket: true, UpdatedAt: old})

	s := newShoppingService(t, rm, syncNow)

	purchased, err := s.Checkout(context.Background(), "o1")
	require.NoError(t, err)
	require.Len(t, purchased, 1)
	assert.Equal(t, "milk", purchased[0].Name)
	assert.Equal(t, 2.0, purchased[0].Quantity)
	assert.True(t, purchased[0].PurchasedAt.Equal(syncNow))

	// The basket item is gone from the list; the rest stay.
	_, ok := rm.s.items[inBasket.ID]
	assert.False(t, ok)
	assert.Len(t, rm.s.items, 2)
	assert.Len(t, rm.h.records, 1)
}

func TestShoppingService_Checkout_EmptyBasket(t *testing.T) {
	rm := newFakeRepoManager()
	s := newShoppingService(t, rm, syncNow)

	purchased, err := s.Checkout(context.Background(), "o1")
	require.NoError(t, err)
	assert.Empty(t, purchased)
	assert.Empty(t, rm.h.records)
}

func TestShoppingService_AddFromHistory_NewItem(t *testing.T) {
	rm := newFakeRepoManager()
	record, err := rm.h.Create(context.Background(), &models.ShoppingHistoryItem{
		OwnerID:     "o1",
		Name:        "milk",
		Quantity:    2,
		Categories:  models.StringSlice{"dairy"},
		PurchasedAt: syncNow.Add(-48 * time.Hour),
	})
	require.NoError(t, err)

	s := newShoppingService(t, rm, syncNow)

	item, err := s.AddFromHistory(context.Background(), "o1", record.ID)
	require.NoError(t, err)
	assert.Equal(t, "milk", item.Name)
	assert.Equal(t, 2.0, item.Quantity)
	assert.Equal(t, models.StringSlice{"dairy"}, item.Categories)
	assert.False(t, item.InBasket)
	assert.True(t, item.CreatedAt.Equal(syncNow))
}

func TestShoppingService_AddFromHistory_IncrementsExisting(t *testing.T) {
	rm := newFakeRepoManager()
	existing := rm.s.add(&models.ShoppingItem{OwnerID: "o1", Name: "milk", Quantity: 1, UpdatedAt: syncNow.Add(-time.Hour)})
	record, err := rm.h.Create(context.Background(), &models.ShoppingHistoryItem{
		OwnerID: "o1", Name: "milk", Quantity: 2, PurchasedAt: syncNow.Add(-48 * time.Hour),
	})
	require.NoError(t, err)

	s := newShoppingService(t, rm, syncNow)

	item, err := s.AddFromHistory(context.Background(), "o1", record.ID)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, item.ID, "no duplicate row")
	assert.Equal(t, 3.0, item.Quantity)
	assert.Len(t, rm.s.items, 1)
}

func TestShoppingService_AddFromHistory_UnknownRecord(t *testing.T) {
	s := newShoppingService(t, newFakeRepoManager(), syncNow)

	_, err := s.AddFromHistory(context.Background(), "o1", 404)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestShoppingService_AddFromHistory_OtherOwnerRecord(t *testing.T) {
	rm := newFakeRepoManager()
	record, err := rm.h.Create(context.Background(), &models.ShoppingHistoryItem{
		OwnerID: "other", Name: "milk", Quantity: 1, PurchasedAt: syncNow,
	})
	require.NoError(t, err)

	s := newShoppingService(t, rm, syncNow)

	_, err = s.AddFromHistory(context.Background(), "o1", record.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestShoppingService_History(t *testing.T) {
	rm := newFakeRepoManager()
	for i, age := range []time.Duration{time.Hour, 48 * time.Hour} {
		_, err := rm.h.Create(context.Background(), &models.ShoppingHistoryItem{
			OwnerID: "o1", Name: string(rune('a' + i)), Quantity: 1, PurchasedAt: syncNow.Add(-age),
		})
		require.NoError(t, err)
	}

	s := newShoppingService(t, rm, syncNow)

	records, err := s.History(context.Background(), "o1", historyrepo.ListFilter{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].Name)
}

func TestShoppingService_EmptyOwnerRejected(t *testing.T) {
	s := newShoppingService(t, newFakeRepoManager(), syncNow)

	_, err := s.List(context.Background(), "")
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = s.Checkout(context.Background(), "")
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = s.AddFromHistory(context.Background(), "", 1)
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = s.History(context.Background(), "", historyrepo.ListFilter{})
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}
