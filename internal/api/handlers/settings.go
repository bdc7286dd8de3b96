package handlers

import (
	"context"
	"net/http"
	"strings"
)

// KeyManager is the credential surface behind /settings.
type KeyManager interface {
	Valid() bool
	Source() string
	Update(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) (bool, error)
}

// SettingsInfo is the static part of the settings view.
type SettingsInfo struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// SettingsHandler serves the settings dialog endpoints.
type SettingsHandler struct {
	keys KeyManager
	info SettingsInfo
}

func NewSettingsHandler(keys KeyManager, info SettingsInfo) *SettingsHandler {
	return &SettingsHandler{keys: keys, info: info}
}

// SettingsResponse never carries the key itself.
type SettingsResponse struct {
	SettingsInfo
	Configured bool   `json:"configured"`
	Source     string `json:"source,omitempty"`
}

type updateKeyRequest struct {
	APIKey string `json:"apiKey"`
}

type keyChangeResponse struct {
	Configured bool `json:"configured"`
	Changed    bool `json:"changed"`
}

// Get handles GET /api/v1/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, SettingsResponse{
		SettingsInfo: h.info,
		Configured:   h.keys.Valid(),
		Source:       h.keys.Source(),
	})
}

// PutAPIKey handles PUT /api/v1/settings/api-key
func (h *SettingsHandler) PutAPIKey(w http.ResponseWriter, r *http.Request) {
	var req updateKeyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody)
		return
	}
	if strings.TrimSpace(req.APIKey) == "" {
		writeError(w, http.StatusBadRequest, "apiKey is required; use DELETE to clear it")
		return
	}

	changed, err := h.keys.Update(r.Context(), req.APIKey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store api key")
		return
	}
	writeData(w, http.StatusOK, keyChangeResponse{Configured: h.keys.Valid(), Changed: changed})
}

// DeleteAPIKey handles DELETE /api/v1/settings/api-key
func (h *SettingsHandler) DeleteAPIKey(w http.ResponseWriter, r *http.Request) {
	changed, err := h.keys.Clear(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear api key")
		return
	}
	writeData(w, http.StatusOK, keyChangeResponse{Configured: h.keys.Valid(), Changed: changed})
}
