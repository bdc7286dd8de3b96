package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const sdkCompletion = `{"id":"cmpl-1","object":"chat.completion","created":1700000000,"model":"deepseek-chat",` +
	`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Hello"}}]}`

func TestSDKExecutor_Execute_ReturnsRawJSON(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.Error(w, "unexpected path", http.StatusNotFound)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody) //nolint:errcheck
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sdkCompletion)) //nolint:errcheck
	}))
	defer srv.Close()

	e := NewSDKExecutor(srv.URL, time.Second, srv.Client())
	req := testRequest()
	req.Messages = []Message{{Role: "system", Content: "only code"}, {Role: "user", Content: "fix"}}

	env := e.Execute(context.Background(), req, "sk-sdk")
	if !env.OK() {
		t.Fatalf("expected StatusOK, got %s (%v)", env.Status, env.Err)
	}
	if !strings.Contains(string(env.Body), `"content":"Hello"`) {
		t.Errorf("expected raw provider JSON, got %s", env.Body)
	}
	if gotAuth != "Bearer sk-sdk" {
		t.Errorf("expected bearer header, got %q", gotAuth)
	}
	msgs, _ := gotBody["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages on the wire, got %d", len(msgs))
	}
	first, _ := msgs[0].(map[string]any)
	if first["role"] != "system" {
		t.Errorf("expected system message first, got %v", first["role"])
	}
}

func TestSDKExecutor_Execute_Unauthorized_ReturnsAuthError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	env := NewSDKExecutor(srv.URL, time.Second, srv.Client()).Execute(context.Background(), testRequest(), "bad")
	if env.Status != StatusAuthError {
		t.Fatalf("expected StatusAuthError, got %s (%v)", env.Status, env.Err)
	}
}

func TestSDKExecutor_Execute_Deadline_ReturnsTimeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	env := NewSDKExecutor(srv.URL, 50*time.Millisecond, srv.Client()).Execute(context.Background(), testRequest(), "sk")
	if env.Status != StatusTimeout {
		t.Fatalf("expected StatusTimeout, got %s", env.Status)
	}
}
