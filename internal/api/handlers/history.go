package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/matiasleandrokruk/seekassist/internal/domain/history"
)

// HistoryLister reads recorded requests, newest first.
type HistoryLister interface {
	List(ctx context.Context, limit int) ([]history.Entry, error)
}

type HistoryHandler struct {
	history HistoryLister
}

func NewHistoryHandler(h HistoryLister) *HistoryHandler {
	return &HistoryHandler{history: h}
}

// ListHistoryResponse is the body of GET /history.
type ListHistoryResponse struct {
	Data []history.Entry `json:"data"`
	Meta struct {
		Count int `json:"count"`
	} `json:"meta"`
}

// List handles GET /api/v1/history?limit=
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.history.List(r.Context(), parseLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list history")
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}

	var resp ListHistoryResponse
	resp.Data = entries
	resp.Meta.Count = len(entries)

	w.Header().Set(headerContentType, mimeJSON)
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
