package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/engagemate-api/internal/database"
)

// settingsRepo is the concrete implementation of SettingsRepository
type settingsRepo struct {
	db *database.DB
}

// NewSettingsRepo creates a new settings repository
func NewSettingsRepo(db *database.DB) SettingsRepository {
	return &settingsRepo{db: db}
}

// Get decodes the JSON blob stored under key into dest
func (r *settingsRepo) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("failed to decode setting %q: %w", key, err)
	}
	return true, nil
}

const upsertSettingQuery = `
	INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, $3)
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
`

// Put stores value under key as JSON, replacing any previous blob
func (r *settingsRepo) Put(ctx context.Context, key string, value interface{}) error {
	raw, err := encodeSetting(key, value)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, upsertSettingQuery, key, raw, time.Now())
	return err
}

// PutAll upserts every key in a single transaction
func (r *settingsRepo) PutAll(ctx context.Context, values map[string]interface{}) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for key, value := range values {
		raw, err := encodeSetting(key, value)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, upsertSettingQuery, key, raw, now); err != nil {
			return fmt.Errorf("failed to save setting %q: %w", key, err)
		}
	}

	return tx.Commit()
}

// encodeSetting marshals value as text; lib/pq would send []byte as bytea
func encodeSetting(key string, value interface{}) (string, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("failed to encode setting %q: %w", key, err)
	}
	return string(raw), nil
}
