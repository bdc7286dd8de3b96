// Route registration and go-chi router setup.
// Public: /health. Protected (Bearer JWT): /api/v1/*.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matiasleandrokruk/seekassist/internal/api/handlers"
	apmiddleware "github.com/matiasleandrokruk/seekassist/internal/api/middleware"
	"github.com/matiasleandrokruk/seekassist/internal/infra/eventbus"
)

// Deps are the services behind the API. Logger is optional.
type Deps struct {
	Assistant handlers.Assistant
	Keys      handlers.KeyManager
	History   handlers.HistoryLister
	Bus       eventbus.EventBus
	Settings  handlers.SettingsInfo
	Logger    *slog.Logger
}

// NewRouter creates and configures a new chi router with all routes.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// ===== PUBLIC ROUTES (no auth required) =====

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	// ===== PROTECTED ROUTES (JWT required via AuthMiddleware) =====

	assistHandler := handlers.NewAssistHandler(deps.Assistant, deps.Bus)
	settingsHandler := handlers.NewSettingsHandler(deps.Keys, deps.Settings)
	historyHandler := handlers.NewHistoryHandler(deps.History)
	eventsHandler := handlers.NewEventsHandler(deps.Bus)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apmiddleware.AuthMiddleware)
		r.Use(apmiddleware.AuditMiddleware(deps.Logger))

		r.Post("/generate", assistHandler.Generate) // POST /api/v1/generate
		r.Post("/fix", assistHandler.Fix)           // POST /api/v1/fix
		r.Post("/analyze", assistHandler.Analyze)   // POST /api/v1/analyze

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", settingsHandler.Get)                    // GET /api/v1/settings
			r.Put("/api-key", settingsHandler.PutAPIKey)       // PUT /api/v1/settings/api-key
			r.Delete("/api-key", settingsHandler.DeleteAPIKey) // DELETE /api/v1/settings/api-key
		})

		r.Get("/history", historyHandler.List) // GET /api/v1/history
		r.Get("/events", eventsHandler.Stream) // GET /api/v1/events (SSE)
	})

	return r
}
