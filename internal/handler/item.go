package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cityhelper/cityhelper/internal/auth"
	"github.com/cityhelper/cityhelper/internal/model"
	"github.com/cityhelper/cityhelper/internal/store"
	"github.com/cityhelper/cityhelper/internal/urgency"
)

type ItemHandler struct {
	items  *store.ItemStore
	logger *slog.Logger
}

func NewItemHandler(items *store.ItemStore, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{items: items, logger: logger}
}

type itemRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	DueDate  string `json:"due_date"`
	Status   string `json:"status"`
	Notes    string `json:"notes"`
	PayURL   string `json:"pay_url"`
}

// itemResponse decorates a compliance item with its computed urgency.
type itemResponse struct {
	model.ComplianceItem
	DaysUntilDue *int   `json:"days_until_due,omitempty"`
	Urgency      string `json:"urgency"`
}

func toResponse(item model.ComplianceItem, now time.Time) itemResponse {
	resp := itemResponse{ComplianceItem: item, Urgency: string(urgency.TierNone)}
	if item.DueDate != nil {
		days := urgency.DaysUntil(*item.DueDate, now)
		resp.DaysUntilDue = &days
		resp.Urgency = string(urgency.Classify(days).Tier)
	}
	return resp
}

func (h *ItemHandler) parseRequest(r *http.Request) (*itemRequest, *time.Time, string) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, nil, "invalid JSON"
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, nil, "name is required"
	}
	if req.Category == "" {
		req.Category = model.CategoryOther
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		t, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			return nil, nil, "due_date must be YYYY-MM-DD"
		}
		dueDate = &t
	}

	switch req.Status {
	case "":
		if dueDate == nil {
			req.Status = model.ItemStatusUnset
		} else {
			req.Status = model.ItemStatusActive
		}
	case model.ItemStatusActive, model.ItemStatusPending, model.ItemStatusUnset,
		model.ItemStatusArchived, model.ItemStatusDone:
	default:
		return nil, nil, "invalid status"
	}

	return &req, dueDate, ""
}

// Create handles POST /api/items
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	req, dueDate, errMsg := h.parseRequest(r)
	if errMsg != "" {
		writeError(w, http.StatusBadRequest, errMsg)
		return
	}

	item, err := h.items.Create(userID, req.Name, req.Category, dueDate, req.Status, req.Notes, req.PayURL)
	if err != nil {
		h.logger.Error("create item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(*item, time.Now()))
}

// List handles GET /api/items
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	items, err := h.items.ListByUser(userID)
	if err != nil {
		h.logger.Error("list items", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	now := time.Now()
	resp := make([]itemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toResponse(item, now))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/items/{id}
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	item, err := h.items.GetByID(id, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, toResponse(*item, time.Now()))
}

// Update handles PUT /api/items/{id}
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.items.GetByID(id, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	req, dueDate, errMsg := h.parseRequest(r)
	if errMsg != "" {
		writeError(w, http.StatusBadRequest, errMsg)
		return
	}

	item, err := h.items.Update(id, userID, req.Name, req.Category, dueDate, req.Status, req.Notes, req.PayURL)
	if err != nil {
		h.logger.Error("update item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}
	writeJSON(w, http.StatusOK, toResponse(*item, time.Now()))
}

type statusRequest struct {
	Status string `json:"status"`
}

// SetStatus handles PATCH /api/items/{id}/status
func (h *ItemHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	switch req.Status {
	case model.ItemStatusActive, model.ItemStatusPending, model.ItemStatusUnset,
		model.ItemStatusArchived, model.ItemStatusDone:
	default:
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	existing, err := h.items.GetByID(id, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	if err := h.items.SetStatus(id, userID, req.Status); err != nil {
		h.logger.Error("set item status", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update status")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/items/{id}
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.items.Delete(id, userID); err != nil {
		h.logger.Error("delete item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
