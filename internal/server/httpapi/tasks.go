package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/MMaus/listkeeper/internal/server/models"
	"github.com/MMaus/listkeeper/internal/timex"
)

type taskPayload struct {
	Title       string             `json:"title"`
	Description *string            `json:"description"`
	Tags        models.StringSlice `json:"tags"`
	DueDate     *string            `json:"due_date"`
}

// fields converts the payload into the repository field set. A present
// but unparsable due date is rejected rather than silently dropped;
// unlike a sync batch, a direct request has exactly one record to get
// right.
func (p taskPayload) fields() (models.TaskFields, bool) {
	fields := models.TaskFields{
		Title:       p.Title,
		Description: p.Description,
		Tags:        p.Tags,
	}
	if p.DueDate != nil && *p.DueDate != "" {
		d, err := timex.ParseDate(*p.DueDate)
		if err != nil {
			return fields, false
		}
		date := models.NewDate(d)
		fields.DueDate = &date
	}
	return fields, true
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) handleTaskList(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tasks.List(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleTaskGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "bad id")
		return
	}

	task, err := s.tasks.Get(r.Context(), userIDFromContext(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request) {
	var payload taskPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "bad request")
		return
	}
	fields, ok := payload.fields()
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "bad due date")
		return
	}

	task, err := s.tasks.Create(r.Context(), userIDFromContext(r.Context()), fields)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleTaskUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "bad id")
		return
	}

	var payload taskPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "bad request")
		return
	}
	fields, ok := payload.fields()
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "bad due date")
		return
	}

	task, err := s.tasks.Update(r.Context(), userIDFromContext(r.Context()), id, fields)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "bad id")
		return
	}

	if err := s.tasks.Delete(r.Context(), userIDFromContext(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
