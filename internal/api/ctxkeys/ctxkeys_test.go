package ctxkeys

import (
	"context"
	"testing"
)

func TestWithValue_SetsAndGetsTypedKey(t *testing.T) {
	t.Parallel()

	ctx := WithValue(context.Background(), Client, "vscode-panel")
	got, ok := ctx.Value(Client).(string)
	if !ok {
		t.Fatalf("expected string value")
	}
	if got != "vscode-panel" {
		t.Fatalf("expected vscode-panel, got %q", got)
	}
}

func TestWithValue_StringKeyDoesNotCollide(t *testing.T) {
	t.Parallel()

	//nolint:staticcheck // plain string key on purpose
	ctx := context.WithValue(context.Background(), "client", "other")
	if got := String(ctx, Client); got != "" {
		t.Fatalf("expected typed key to miss plain string key, got %q", got)
	}
}

func TestString_Missing(t *testing.T) {
	t.Parallel()

	if got := String(context.Background(), Client); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
