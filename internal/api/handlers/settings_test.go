package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
)

type keyManagerStub struct {
	key       string
	source    string
	updateErr error
	updates   []string
}

func (s *keyManagerStub) Valid() bool    { return s.key != "" }
func (s *keyManagerStub) Source() string { return s.source }

func (s *keyManagerStub) Update(_ context.Context, key string) (bool, error) {
	if s.updateErr != nil {
		return false, s.updateErr
	}
	s.updates = append(s.updates, key)
	key = strings.TrimSpace(key)
	changed := key != s.key
	s.key = key
	s.source = "store"
	return changed, nil
}

func (s *keyManagerStub) Clear(ctx context.Context) (bool, error) { return s.Update(ctx, "") }

func TestSettingsHandler_Get_NeverExposesKey(t *testing.T) {
	t.Parallel()

	h := NewSettingsHandler(&keyManagerStub{key: "sk-secret", source: "env"}, SettingsInfo{Provider: "deepseek", Model: "deepseek-chat"})
	rr := serve(h.Get, http.MethodGet, "/api/v1/settings", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "sk-secret") {
		t.Fatalf("response leaks the key: %s", rr.Body.String())
	}
	data := decodeData(t, rr)
	if data["configured"] != true || data["source"] != "env" || data["provider"] != "deepseek" || data["model"] != "deepseek-chat" {
		t.Fatalf("unexpected settings %v", data)
	}
}

func TestSettingsHandler_PutAPIKey(t *testing.T) {
	t.Parallel()

	keys := &keyManagerStub{}
	h := NewSettingsHandler(keys, SettingsInfo{})

	rr := serve(h.PutAPIKey, http.MethodPut, "/api/v1/settings/api-key", map[string]any{"apiKey": "  sk-new  "})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	data := decodeData(t, rr)
	if data["configured"] != true || data["changed"] != true {
		t.Fatalf("unexpected response %v", data)
	}

	rr = serve(h.PutAPIKey, http.MethodPut, "/api/v1/settings/api-key", map[string]any{"apiKey": "sk-new"})
	if data := decodeData(t, rr); data["changed"] != false {
		t.Fatalf("same key must report changed=false, got %v", data)
	}
}

func TestSettingsHandler_PutAPIKey_Validation(t *testing.T) {
	t.Parallel()

	h := NewSettingsHandler(&keyManagerStub{}, SettingsInfo{})

	for _, body := range []any{map[string]any{"apiKey": "   "}, map[string]any{}, "nope"} {
		rr := serve(h.PutAPIKey, http.MethodPut, "/api/v1/settings/api-key", body)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("body %v: expected 400, got %d", body, rr.Code)
		}
	}
}

func TestSettingsHandler_PutAPIKey_StoreError(t *testing.T) {
	t.Parallel()

	h := NewSettingsHandler(&keyManagerStub{updateErr: errors.New("disk full")}, SettingsInfo{})
	rr := serve(h.PutAPIKey, http.MethodPut, "/api/v1/settings/api-key", map[string]any{"apiKey": "sk"})

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "disk full") {
		t.Fatalf("internal error leaked: %s", rr.Body.String())
	}
}

func TestSettingsHandler_DeleteAPIKey(t *testing.T) {
	t.Parallel()

	keys := &keyManagerStub{key: "sk", source: "store"}
	h := NewSettingsHandler(keys, SettingsInfo{})

	rr := serve(h.DeleteAPIKey, http.MethodDelete, "/api/v1/settings/api-key", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	data := decodeData(t, rr)
	if data["configured"] != false || data["changed"] != true {
		t.Fatalf("unexpected response %v", data)
	}
}
