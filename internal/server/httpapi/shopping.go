package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/MMaus/listkeeper/internal/server/models"
	"github.com/MMaus/listkeeper/internal/server/repositories/history"
)

type shoppingItemPayload struct {
	Name       string             `json:"name"`
	Quantity   float64            `json:"quantity"`
	Categories models.StringSlice `json:"categories"`
	InBasket   bool               `json:"in_basket"`
}

func (p shoppingItemPayload) fields() models.ShoppingItemFields {
	return models.ShoppingItemFields{
		Name:       p.Name,
		Quantity:   p.Quantity,
		Categories: p.Categories,
		InBasket:   p.InBasket,
	}
}

func (s *Server) handleShoppingList(w http.ResponseWriter, r *http.Request) {
	items, err := s.shopping.List(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []*models.ShoppingItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleShoppingGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "bad id")
		return
	}

	item, err := s.shopping.Get(r.Context(), userIDFromContext(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleShoppingCreate(w http.ResponseWriter, r *http.Request) {
	var payload shoppingItemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "bad request")
		return
	}

	item, err := s.shopping.Create(r.Context(), userIDFromContext(r.Context()), payload.fields())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleShoppingUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "bad id")
		return
	}

	var payload shoppingItemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "bad request")
		return
	}

	item, err := s.shopping.Update(r.Context(), userIDFromContext(r.Context()), id, payload.fields())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleShoppingDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "bad id")
		return
	}

	if err := s.shopping.Delete(r.Context(), userIDFromContext(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	purchased, err := s.shopping.Checkout(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		s.logger.Error(r.Context(), err.Error())
		writeError(w, err)
		return
	}
	if purchased == nil {
		purchased = []*models.ShoppingHistoryItem{}
	}
	writeJSON(w, http.StatusOK, purchased)
}

// handleHistoryList supports ?search=, ?sort_by=, ?order=asc, ?limit=
// and ?offset= query parameters.
func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := history.ListFilter{
		Search:    q.Get("search"),
		SortBy:    q.Get("sort_by"),
		Ascending: q.Get("order") == "asc",
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Offset = n
		}
	}

	records, err := s.shopping.History(r.Context(), userIDFromContext(r.Context()), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []*models.ShoppingHistoryItem{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleAddFromHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "bad id")
		return
	}

	item, err := s.shopping.AddFromHistory(r.Context(), userIDFromContext(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}
