// Package history is the append-only log of assistant requests. Failures that
// point at a provider anomaly keep the raw response body for diagnosis.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// List limits.
const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// fixed-width so created_at sorts lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is one recorded request. Immutable once written.
type Entry struct {
	ID          string    `json:"id"`
	Mode        string    `json:"mode"`
	Outcome     string    `json:"outcome"`
	FailureKind string    `json:"failureKind,omitempty"`
	Message     string    `json:"message,omitempty"`
	DurationMs  int64     `json:"durationMs"`
	Characters  int       `json:"characters"`
	RawBody     string    `json:"rawBody,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Service reads and appends request_log rows.
type Service struct {
	db  *sql.DB
	now func() time.Time
}

// NewService creates a history service over a migrated database.
func NewService(db *sql.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// Record appends e. ID (UUIDv7) and CreatedAt are filled when empty.
func (s *Service) Record(ctx context.Context, e Entry) error {
	if e.Mode == "" || e.Outcome == "" {
		return errors.New("history: mode and outcome are required")
	}
	if e.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("history: new id: %w", err)
		}
		e.ID = id.String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO request_log
			(id, mode, outcome, failure_kind, message, duration_ms, characters, raw_body, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Mode, e.Outcome, nullable(e.FailureKind), nullable(e.Message),
		e.DurationMs, e.Characters, nullable(e.RawBody),
		e.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("history: insert: %w", err)
	}
	return nil
}

// List returns up to limit entries, newest first. limit <= 0 means
// DefaultLimit; values above MaxLimit are clamped.
func (s *Service) List(ctx context.Context, limit int) ([]Entry, error) {
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, mode, outcome, failure_kind, message, duration_ms, characters, raw_body, created_at
		FROM request_log
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	out := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			e                      Entry
			kind, message, rawBody sql.NullString
			createdAt              string
		)
		if err := rows.Scan(&e.ID, &e.Mode, &e.Outcome, &kind, &message,
			&e.DurationMs, &e.Characters, &rawBody, &createdAt); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		e.FailureKind = kind.String
		e.Message = message.String
		e.RawBody = rawBody.String
		e.CreatedAt, err = time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("history: parse created_at %q: %w", createdAt, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: rows: %w", err)
	}
	return out, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
