// Package ctxkeys holds the context keys shared by the API middleware and handlers.
// It is a leaf package so api and api/handlers can both import it.
package ctxkeys

import "context"

// Key is the named type for all API context keys.
// context.Value compares type and value, so a string key from another
// package can never collide with these.
type Key string

const (
	// Client is the name of the authenticated API client (the token subject).
	// Injected by AuthMiddleware, read by handlers and the access log.
	Client Key = "client"
)

// WithValue adds a ctxkeys.Key value to the context.
func WithValue(ctx context.Context, key Key, value string) context.Context {
	return context.WithValue(ctx, key, value)
}

// String returns the string stored under key, or "" when absent.
func String(ctx context.Context, key Key) string {
	v, _ := ctx.Value(key).(string)
	return v
}
