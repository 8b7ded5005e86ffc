package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/MMaus/listkeeper/internal/server/models"
	"github.com/MMaus/listkeeper/internal/server/services"
	"github.com/MMaus/listkeeper/internal/timex"
)

type syncRequest struct {
	// Checkpoint is the timestamp of the client's last successful
	// sync; null or absent requests the full data set.
	Checkpoint   *string                `json:"checkpoint"`
	LocalChanges *services.LocalChanges `json:"local_changes"`
}

type syncDeleted struct {
	Tasks         []int64 `json:"tasks"`
	ShoppingItems []int64 `json:"shopping_items"`
}

type syncResponse struct {
	Tasks         []*models.Task         `json:"tasks"`
	ShoppingItems []*models.ShoppingItem `json:"shopping_items"`
	Deleted       syncDeleted            `json:"deleted"`
	Checkpoint    string                 `json:"checkpoint"`
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "bad request")
		return
	}

	var checkpoint *time.Time
	if req.Checkpoint != nil && *req.Checkpoint != "" {
		t, err := timex.ParseTimestamp(*req.Checkpoint)
		if err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "bad checkpoint")
			return
		}
		checkpoint = &t
	}

	result, err := s.sync.Reconcile(r.Context(), userIDFromContext(r.Context()), checkpoint, req.LocalChanges)
	if err != nil {
		s.logger.Error(r.Context(), err.Error())
		writeError(w, err)
		return
	}

	resp := syncResponse{
		Tasks:         result.Tasks,
		ShoppingItems: result.ShoppingItems,
		// Server-side deletions are not propagated; the duplicate
		// detector absorbs re-uploads of removed records.
		Deleted:    syncDeleted{Tasks: []int64{}, ShoppingItems: []int64{}},
		Checkpoint: result.Checkpoint.Format(time.RFC3339Nano),
	}
	if resp.Tasks == nil {
		resp.Tasks = []*models.Task{}
	}
	if resp.ShoppingItems == nil {
		resp.ShoppingItems = []*models.ShoppingItem{}
	}

	writeJSON(w, http.StatusOK, resp)
}
