package credential

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/matiasleandrokruk/seekassist/internal/infra/eventbus"
)

// TopicChanged is published when the key changes.
const TopicChanged = "settings.changed"

// Changed is the TopicChanged payload.
type Changed struct {
	Valid bool `json:"valid"`
}

// Options configures a Manager. Override, when set, is served instead of the
// stored key until the next Update.
type Options struct {
	Store    Store
	Bus      eventbus.EventBus
	Logger   *slog.Logger
	Override string
}

// Manager holds the cached key. Reads are cheap and lock-protected so the
// orchestrator can read the key at call start while settings are edited.
type Manager struct {
	store  Store
	bus    eventbus.EventBus
	logger *slog.Logger

	mu       sync.RWMutex
	key      string
	override string
}

func NewManager(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:    opts.Store,
		bus:      opts.Bus,
		logger:   logger,
		override: strings.TrimSpace(opts.Override),
	}
}

// Load fills the cache from the store. It does not notify.
func (m *Manager) Load(ctx context.Context) error {
	var key string
	if m.store != nil {
		stored, err := m.store.Load(ctx)
		if err != nil {
			return err
		}
		key = strings.TrimSpace(stored)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.override != "" {
		key = m.override
	}
	m.key = key
	return nil
}

// APIKey returns the cached key.
func (m *Manager) APIKey() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.key
}

// Valid reports whether a key is configured.
func (m *Manager) Valid() bool { return m.APIKey() != "" }

// Source reports where the cached key came from: "env", "store" or "".
func (m *Manager) Source() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	switch {
	case m.key == "":
		return ""
	case m.override != "" && m.key == m.override:
		return "env"
	default:
		return "store"
	}
}

// Update trims key, persists it and refreshes the cache. It reports whether
// the value changed; observers are notified only on change. While the env
// override is served the cache does not reflect the store, so the key is
// always persisted and the override dropped.
func (m *Manager) Update(ctx context.Context, key string) (bool, error) {
	key = strings.TrimSpace(key)

	m.mu.Lock()
	if key == m.key && m.override == "" {
		m.mu.Unlock()
		return false, nil
	}
	if m.store != nil {
		if err := m.store.Save(ctx, key); err != nil {
			m.mu.Unlock()
			return false, err
		}
	}
	m.key = key
	m.override = ""
	m.mu.Unlock()

	m.logger.Info("api key updated", "configured", key != "")
	if m.bus != nil {
		m.bus.Publish(TopicChanged, Changed{Valid: key != ""})
	}
	return true, nil
}

// Clear removes the key.
func (m *Manager) Clear(ctx context.Context) (bool, error) {
	return m.Update(ctx, "")
}
