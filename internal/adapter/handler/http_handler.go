package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rl1809/dental-supply/internal/core/domain"
	"github.com/rl1809/dental-supply/internal/core/service"
)

type HTTPHandler struct {
	alertService     *service.AlertService
	inventoryService *service.InventoryService
}

type ItemHTTPRequest struct {
	Name             string `json:"name"`
	Quantity         int64  `json:"quantity"`
	ReorderThreshold *int64 `json:"reorder_threshold,omitempty"`
	ExpiryDate       string `json:"expiry_date,omitempty"`
	Version          int64  `json:"version"`
}

type ConsumeHTTPRequest struct {
	Quantity int64 `json:"quantity"`
}

type HTTPResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func NewHTTPHandler(alertService *service.AlertService, inventoryService *service.InventoryService) *HTTPHandler {
	return &HTTPHandler{alertService: alertService, inventoryService: inventoryService}
}

// Routes builds the router. metrics may be nil.
func (h *HTTPHandler) Routes(metrics http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.HealthCheck)
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/scan", h.TriggerScan)
		r.Get("/scan/last", h.LastScan)

		r.Get("/items", h.ListItems)
		r.Post("/items", h.CreateItem)
		r.Get("/items/report", h.Report)
		r.Get("/items/{id}", h.GetItem)
		r.Put("/items/{id}", h.UpdateItem)
		r.Delete("/items/{id}", h.DeleteItem)
		r.Post("/items/{id}/consume", h.ConsumeStock)
	})

	return r
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) TriggerScan(w http.ResponseWriter, r *http.Request) {
	// a client disconnect must not cut a cycle short
	summary, err := h.alertService.RunCycle(context.WithoutCancel(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, HTTPResponse{Success: true, Data: summary})
}

func (h *HTTPHandler) LastScan(w http.ResponseWriter, r *http.Request) {
	summary, err := h.alertService.LastCycle(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if summary == nil {
		writeJSON(w, http.StatusNotFound, HTTPResponse{Success: false, Message: "no scan recorded yet"})
		return
	}
	writeJSON(w, http.StatusOK, HTTPResponse{Success: true, Data: summary})
}

func (h *HTTPHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventoryService.ListItems(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, HTTPResponse{Success: true, Data: items})
}

func (h *HTTPHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req ItemHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, HTTPResponse{Success: false, Message: "invalid request body"})
		return
	}

	item, err := h.inventoryService.CreateItem(r.Context(), req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, HTTPResponse{Success: true, Data: item})
}

func (h *HTTPHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.inventoryService.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, HTTPResponse{Success: true, Data: item})
}

func (h *HTTPHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req ItemHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, HTTPResponse{Success: false, Message: "invalid request body"})
		return
	}

	item, err := h.inventoryService.UpdateItem(r.Context(), chi.URLParam(r, "id"), req.input(), req.Version)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, HTTPResponse{Success: true, Data: item})
}

func (h *HTTPHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.inventoryService.DeleteItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, HTTPResponse{Success: true, Message: "item deleted"})
}

func (h *HTTPHandler) ConsumeStock(w http.ResponseWriter, r *http.Request) {
	var req ConsumeHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, HTTPResponse{Success: false, Message: "invalid request body"})
		return
	}

	item, err := h.inventoryService.ConsumeStock(r.Context(), chi.URLParam(r, "id"), req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, HTTPResponse{Success: true, Data: item})
}

func (h *HTTPHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.inventoryService.Report(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, HTTPResponse{Success: true, Data: report})
}

func (req ItemHTTPRequest) input() service.ItemInput {
	return service.ItemInput{
		Name:             req.Name,
		Quantity:         req.Quantity,
		ReorderThreshold: req.ReorderThreshold,
		ExpiryDate:       req.ExpiryDate,
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, domain.ErrItemNotFound):
		status = http.StatusNotFound
		message = "item not found"
	case errors.Is(err, domain.ErrItemExists):
		status = http.StatusConflict
		message = "item already exists"
	case errors.Is(err, domain.ErrVersionConflict):
		status = http.StatusConflict
		message = "item was modified, reload and retry"
	case errors.Is(err, domain.ErrInsufficientStock):
		status = http.StatusConflict
		message = "insufficient stock"
	case errors.Is(err, service.ErrScanInProgress):
		status = http.StatusConflict
		message = "scan in progress"
	case errors.Is(err, domain.ErrTransientIO):
		status = http.StatusServiceUnavailable
		message = "store unavailable"
	}

	writeJSON(w, status, HTTPResponse{Success: false, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
