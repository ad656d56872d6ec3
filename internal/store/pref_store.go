package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/soyeahso/obiefood/internal/domain"
)

// PrefStore implements prefs.Client backed by SQLite. The payload is
// stored as an opaque JSON blob, mirroring the key-value contract of the
// other backends.
type PrefStore struct {
	db *DB
}

// NewPrefStore creates a preference store using the given database.
func NewPrefStore(db *DB) *PrefStore {
	return &PrefStore{db: db}
}

// Get returns the saved preference for a user, or (nil, nil) when none
// exists.
func (s *PrefStore) Get(ctx context.Context, userID string) (*domain.Preference, error) {
	var payload string
	err := s.db.sql.QueryRowContext(ctx,
		`SELECT payload FROM user_prefs WHERE user_id = ?`, userID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("prefs get: %w", err)
	}

	var pref domain.Preference
	if err := json.Unmarshal([]byte(payload), &pref); err != nil {
		return nil, fmt.Errorf("prefs payload: %w", err)
	}
	return &pref, nil
}

// Set saves or clears a user's preference. nil clears.
func (s *PrefStore) Set(ctx context.Context, userID string, pref *domain.Preference) error {
	if pref == nil {
		if _, err := s.db.sql.ExecContext(ctx,
			`DELETE FROM user_prefs WHERE user_id = ?`, userID,
		); err != nil {
			return fmt.Errorf("prefs clear: %w", err)
		}
		return nil
	}

	payload, err := json.Marshal(pref)
	if err != nil {
		return fmt.Errorf("prefs marshal: %w", err)
	}

	_, err = s.db.sql.ExecContext(ctx,
		`INSERT INTO user_prefs (user_id, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		userID, string(payload), time.Now().Format(time.DateTime),
	)
	if err != nil {
		return fmt.Errorf("prefs set: %w", err)
	}
	return nil
}
