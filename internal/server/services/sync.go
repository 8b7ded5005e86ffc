package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MMaus/listkeeper/internal/common"
	"github.com/MMaus/listkeeper/internal/lockx"
	"github.com/MMaus/listkeeper/internal/logging"
	"github.com/MMaus/listkeeper/internal/server/models"
	"github.com/MMaus/listkeeper/internal/server/repositories/repomanager"
	"github.com/MMaus/listkeeper/internal/timex"
)

// duplicateWindow bounds how far apart two creation timestamps may lie
// for an incoming record to count as a duplicate of an existing one.
// The window is symmetric and inclusive on both ends.
const duplicateWindow = time.Hour

// LocalChanges is the batch of offline mutations a client uploads in
// one sync request.
type LocalChanges struct {
	Tasks         []*models.TaskChange         `json:"tasks"`
	ShoppingItems []*models.ShoppingItemChange `json:"shopping_items"`
	DeletedIDs    DeletedIDs                   `json:"deleted_ids"`
}

// DeletedIDs lists server ids the client deleted while offline, per
// record kind.
type DeletedIDs struct {
	Tasks         []int64 `json:"tasks"`
	ShoppingItems []int64 `json:"shopping_items"`
}

// SyncResult is everything the client needs to re-converge: records
// changed since its checkpoint and the new checkpoint to store.
type SyncResult struct {
	Tasks         []*models.Task
	ShoppingItems []*models.ShoppingItem
	Checkpoint    time.Time
}

// SyncService reconciles offline client changes with the server copy.
// It holds no per-request state; all durable state lives in the store.
type SyncService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	clock       timex.Clock
	ownerLocks  *lockx.KeyedMutex
	logger      logging.Logger
}

// NewSyncService constructs a SyncService.
func NewSyncService(db *sql.DB, m repomanager.RepositoryManager, clock timex.Clock, logger logging.Logger) *SyncService {
	return &SyncService{
		db:          db,
		repomanager: m,
		clock:       clock,
		ownerLocks:  lockx.NewKeyedMutex(),
		logger:      logger.With("module", "sync"),
	}
}

// Reconcile merges one batch of local changes into the server state for
// ownerID and returns every record changed strictly after checkpoint
// (all records when checkpoint is nil), stamped synced_at.
//
// Processing order is fixed: deletions, then creates/updates in the
// order supplied, then the delta. Reconciliations for the same owner
// are serialized; different owners run in parallel. Malformed items
// are skipped individually; store failures abort the request, which is
// safe to retry since every individual mutation is atomic.
func (s *SyncService) Reconcile(ctx context.Context, ownerID string, checkpoint *time.Time, changes *LocalChanges) (*SyncResult, error) {
	if ownerID == "" {
		return nil, common.ErrorUnauthorized
	}
	if changes == nil {
		changes = &LocalChanges{}
	}

	s.ownerLocks.Lock(ownerID)
	defer s.ownerLocks.Unlock(ownerID)

	taskRepo := s.repomanager.Tasks(s.db)
	itemRepo := s.repomanager.ShoppingItems(s.db)

	// 1. Deletions. Ids unknown for this owner are no-ops.
	if err := taskRepo.DeleteByIDs(ctx, ownerID, changes.DeletedIDs.Tasks); err != nil {
		return nil, err
	}
	if err := itemRepo.DeleteByIDs(ctx, ownerID, changes.DeletedIDs.ShoppingItems); err != nil {
		return nil, err
	}

	// 2. Creates and updates, in client order.
	for _, change := range changes.Tasks {
		if err := s.applyTaskChange(ctx, ownerID, change); err != nil {
			if errors.Is(err, common.ErrMalformedChange) {
				s.logger.Warn(ctx, "skipping malformed task change", "owner", ownerID, "reason", err.Error())
				continue
			}
			return nil, err
		}
	}
	for _, change := range changes.ShoppingItems {
		if err := s.applyShoppingItemChange(ctx, ownerID, change); err != nil {
			if errors.Is(err, common.ErrMalformedChange) {
				s.logger.Warn(ctx, "skipping malformed shopping item change", "owner", ownerID, "reason", err.Error())
				continue
			}
			return nil, err
		}
	}

	// 3. Delta since the client's checkpoint, stamped as synced.
	now := s.clock.Now()

	tasks, err := taskRepo.SelectUpdatedSince(ctx, ownerID, checkpoint)
	if err != nil {
		return nil, err
	}
	items, err := itemRepo.SelectUpdatedSince(ctx, ownerID, checkpoint)
	if err != nil {
		return nil, err
	}

	taskIDs := make([]int64, 0, len(tasks))
	for _, task := range tasks {
		task.SyncedAt = &now
		taskIDs = append(taskIDs, task.ID)
	}
	if err := taskRepo.MarkSynced(ctx, ownerID, taskIDs, now); err != nil {
		return nil, err
	}

	itemIDs := make([]int64, 0, len(items))
	for _, item := range items {
		item.SyncedAt = &now
		itemIDs = append(itemIDs, item.ID)
	}
	if err := itemRepo.MarkSynced(ctx, ownerID, itemIDs, now); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "reconciled", "owner", ownerID,
		"tasks", len(tasks), "shopping_items", len(items))

	return &SyncResult{
		Tasks:         tasks,
		ShoppingItems: items,
		Checkpoint:    now,
	}, nil
}

// applyTaskChange processes one uploaded task mutation: a resolvable
// server id means conflict resolution, a duplicate means a silent
// discard, anything else becomes a new record with the client's
// timestamps taken verbatim.
func (s *SyncService) applyTaskChange(ctx context.Context, ownerID string, change *models.TaskChange) error {
	if change == nil || change.Title == nil || *change.Title == "" {
		return fmt.Errorf("%w: missing title", common.ErrMalformedChange)
	}
	updatedAt, err := timex.ParseTimestamp(change.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrMalformedChange, err)
	}

	repo := s.repomanager.Tasks(s.db)

	if change.ID.Server {
		server, err := repo.Find(ctx, ownerID, change.ID.Int64)
		switch {
		case err == nil:
			fields := ResolveTaskConflict(server, change, updatedAt)
			return repo.UpdateFields(ctx, ownerID, server.ID, fields)
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}
		// The id does not resolve for this owner: a creation attempt,
		// never an update of someone else's record.
	}

	createdAt, createdAtKnown := s.parseCreatedAt(change.CreatedAt)
	if createdAtKnown {
		dup, err := s.isDuplicateTask(ctx, ownerID, *change.Title, createdAt)
		if err != nil {
			return err
		}
		if dup {
			s.logger.Debug(ctx, "discarding duplicate task", "owner", ownerID, "title", *change.Title)
			return nil
		}
	}
	if !createdAtKnown {
		createdAt = updatedAt
	}

	task := &models.Task{
		OwnerID:     ownerID,
		Title:       *change.Title,
		Description: change.Description,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
	if change.Tags != nil {
		task.Tags = *change.Tags
	}
	if change.DueDate != nil {
		if d, err := timex.ParseDate(*change.DueDate); err == nil {
			date := models.NewDate(d)
			task.DueDate = &date
		}
	}
	_, err = repo.Create(ctx, task)
	return err
}

// applyShoppingItemChange mirrors applyTaskChange for shopping items.
func (s *SyncService) applyShoppingItemChange(ctx context.Context, ownerID string, change *models.ShoppingItemChange) error {
	if change == nil || change.Name == nil || *change.Name == "" {
		return fmt.Errorf("%w: missing name", common.ErrMalformedChange)
	}
	updatedAt, err := timex.ParseTimestamp(change.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrMalformedChange, err)
	}

	repo := s.repomanager.ShoppingItems(s.db)

	if change.ID.Server {
		server, err := repo.Find(ctx, ownerID, change.ID.Int64)
		switch {
		case err == nil:
			fields := ResolveShoppingItemConflict(server, change, updatedAt)
			return repo.UpdateFields(ctx, ownerID, server.ID, fields)
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}
	}

	createdAt, createdAtKnown := s.parseCreatedAt(change.CreatedAt)
	if createdAtKnown {
		dup, err := s.isDuplicateShoppingItem(ctx, ownerID, *change.Name, createdAt)
		if err != nil {
			return err
		}
		if dup {
			s.logger.Debug(ctx, "discarding duplicate shopping item", "owner", ownerID, "name", *change.Name)
			return nil
		}
	}
	if !createdAtKnown {
		createdAt = updatedAt
	}

	item := &models.ShoppingItem{
		OwnerID:   ownerID,
		Name:      *change.Name,
		Quantity:  1.0,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	if change.Quantity != nil {
		item.Quantity = *change.Quantity
	}
	if change.Categories != nil {
		item.Categories = *change.Categories
	}
	if change.InBasket != nil {
		item.InBasket = *change.InBasket
	}
	_, err = repo.Create(ctx, item)
	return err
}

// parseCreatedAt reports whether the client supplied a usable creation
// timestamp. An unusable one fails closed: the duplicate check is
// skipped and the record is created with its updated_at as created_at.
func (s *SyncService) parseCreatedAt(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	t, err := timex.ParseTimestamp(raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// isDuplicateTask reports whether a task with exactly this title was
// already created for ownerID within duplicateWindow of createdAt. It
// absorbs the case of a client re-uploading a record the server
// independently knows about.
func (s *SyncService) isDuplicateTask(ctx context.Context, ownerID, title string, createdAt time.Time) (bool, error) {
	repo := s.repomanager.Tasks(s.db)
	return repo.ExistsSimilar(ctx, ownerID, title, createdAt.Add(-duplicateWindow), createdAt.Add(duplicateWindow))
}

// isDuplicateShoppingItem is the shopping list counterpart of
// isDuplicateTask, matching on the item name.
func (s *SyncService) isDuplicateShoppingItem(ctx context.Context, ownerID, name string, createdAt time.Time) (bool, error) {
	repo := s.repomanager.ShoppingItems(s.db)
	return repo.ExistsSimilar(ctx, ownerID, name, createdAt.Add(-duplicateWindow), createdAt.Add(duplicateWindow))
}
