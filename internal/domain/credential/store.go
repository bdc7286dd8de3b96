// Package credential owns the provider API key: where it is persisted, the
// cached copy the orchestrator reads at call start, and the notification sent
// when it changes.
package credential

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/99designs/keyring"

	"github.com/matiasleandrokruk/seekassist/pkg/seal"
)

// Store persists the key. Load returns "" when nothing is stored; Save("")
// removes the stored key.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, key string) error
}

const settingAPIKey = "api_key"

// ErrSealed is returned when the stored key is sealed and no secret is configured.
var ErrSealed = errors.New("credential: stored key is sealed; set SEEKASSIST_SECRET")

// SQLiteStore keeps the key in the settings table. With a non-empty secret
// the value is sealed before it is written.
type SQLiteStore struct {
	db     *sql.DB
	secret string
}

// NewSQLiteStore returns a store over a migrated database.
func NewSQLiteStore(db *sql.DB, secret string) *SQLiteStore {
	return &SQLiteStore{db: db, secret: secret}
}

func (s *SQLiteStore) Load(ctx context.Context) (string, error) {
	var (
		value  []byte
		sealed bool
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT value, sealed FROM settings WHERE name = ?`, settingAPIKey,
	).Scan(&value, &sealed)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("credential: load: %w", err)
	}

	if !sealed {
		return string(value), nil
	}
	if s.secret == "" {
		return "", ErrSealed
	}
	plain, err := seal.Open(s.secret, value)
	if err != nil {
		return "", fmt.Errorf("credential: open: %w", err)
	}
	return string(plain), nil
}

func (s *SQLiteStore) Save(ctx context.Context, key string) error {
	if key == "" {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE name = ?`, settingAPIKey); err != nil {
			return fmt.Errorf("credential: delete: %w", err)
		}
		return nil
	}

	value, sealed := []byte(key), false
	if s.secret != "" {
		var err error
		if value, err = seal.Seal(s.secret, value); err != nil {
			return fmt.Errorf("credential: seal: %w", err)
		}
		sealed = true
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (name, value, sealed, updated_at)
		VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT(name) DO UPDATE SET
			value = excluded.value,
			sealed = excluded.sealed,
			updated_at = excluded.updated_at`,
		settingAPIKey, value, sealed,
	)
	if err != nil {
		return fmt.Errorf("credential: save: %w", err)
	}
	return nil
}

// KeyringStore keeps the key in the OS keyring and falls back to another
// store when no keyring backend is usable.
type KeyringStore struct {
	ring     keyring.Keyring
	fallback Store
}

// NewKeyringStore opens the OS keyring for serviceName. If that fails every
// operation goes to fallback.
func NewKeyringStore(serviceName string, fallback Store) *KeyringStore {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
	})
	if err != nil {
		ring = nil
	}
	return NewKeyringStoreWith(ring, fallback)
}

// NewKeyringStoreWith wraps an already opened keyring; ring may be nil.
func NewKeyringStoreWith(ring keyring.Keyring, fallback Store) *KeyringStore {
	return &KeyringStore{ring: ring, fallback: fallback}
}

// Available reports whether a keyring backend is in use.
func (k *KeyringStore) Available() bool { return k.ring != nil }

func (k *KeyringStore) Load(ctx context.Context) (string, error) {
	if k.ring != nil {
		item, err := k.ring.Get(settingAPIKey)
		if err == nil {
			return string(item.Data), nil
		}
		if !errors.Is(err, keyring.ErrKeyNotFound) {
			return "", fmt.Errorf("credential: keyring get: %w", err)
		}
	}
	if k.fallback == nil {
		return "", nil
	}
	return k.fallback.Load(ctx)
}

func (k *KeyringStore) Save(ctx context.Context, key string) error {
	if k.ring == nil {
		return k.saveFallback(ctx, key)
	}

	if key == "" {
		if err := k.ring.Remove(settingAPIKey); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
			return fmt.Errorf("credential: keyring remove: %w", err)
		}
		// a key may also have been written to the fallback before the keyring existed
		return k.saveFallback(ctx, "")
	}

	err := k.ring.Set(keyring.Item{
		Key:   settingAPIKey,
		Data:  []byte(key),
		Label: "seekassist API key",
	})
	if err == nil {
		return nil
	}
	if k.fallback == nil {
		return fmt.Errorf("credential: keyring set: %w", err)
	}
	return k.fallback.Save(ctx, key)
}

func (k *KeyringStore) saveFallback(ctx context.Context, key string) error {
	if k.fallback == nil {
		if key == "" {
			return nil
		}
		return errors.New("credential: no keyring and no fallback store")
	}
	return k.fallback.Save(ctx, key)
}
