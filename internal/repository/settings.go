package repository

import (
	"database/sql"
	"fmt"
)

// GetSetting reads one settings row; ok is false when the key is absent.
func (r *Repository) GetSetting(key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM pawn.settings WHERE key = $1`, key).
		Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting %q: %w", key, err)
	}
	return value, true, nil
}

// SetSetting upserts one settings row.
func (r *Repository) SetSetting(key, value string) error {
	_, err := r.db.Exec(`
		INSERT INTO pawn.settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to write setting %q: %w", key, err)
	}
	return nil
}
