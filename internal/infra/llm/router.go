package llm

import (
	"fmt"
	"net/http"
	"sort"
	"time"
)

// Router selects the Executor for the configured provider.
type Router struct {
	executors       map[string]Executor
	defaultProvider string
}

// NewRouter creates a Router with an initial set of executors and a default key.
func NewRouter(executors map[string]Executor, defaultProvider string) *Router {
	// copy so the caller cannot mutate the internal map.
	es := make(map[string]Executor, len(executors))
	for k, v := range executors {
		es[k] = v
	}
	return &Router{executors: es, defaultProvider: defaultProvider}
}

// NewDefaultRouter registers the built-in executors ("deepseek" over net/http,
// "openai" over the SDK) against the same base URL and deadline.
func NewDefaultRouter(baseURL string, deadline time.Duration, defaultProvider string) *Router {
	client := &http.Client{}
	return NewRouter(map[string]Executor{
		"deepseek": NewHTTPExecutor(baseURL, WithDeadline(deadline), WithHTTPClient(client)),
		"openai":   NewSDKExecutor(baseURL, deadline, client),
	}, defaultProvider)
}

// Register adds (or replaces) an executor under the given key.
func (r *Router) Register(key string, e Executor) {
	r.executors[key] = e
}

// Route returns the executor registered under name, or the default when name is empty.
func (r *Router) Route(name string) (Executor, error) {
	if name == "" {
		name = r.defaultProvider
	}
	e, ok := r.executors[name]
	if !ok {
		return nil, fmt.Errorf("llm router: provider %q not registered (available: %v)", name, r.keys())
	}
	return e, nil
}

// keys returns the registered provider names, sorted, for error messages.
func (r *Router) keys() []string {
	out := make([]string, 0, len(r.executors))
	for k := range r.executors {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
