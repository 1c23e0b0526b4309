package repository

import (
	"context"
	"database/sql"
	"errors"
)

// Setting keys.
const (
	SettingStock      = "stock"
	SettingPriceCents = "price_cents"
)

// SettingsRepo handles the integer key/value settings (stock, price).
type SettingsRepo struct {
	db DBTX
}

func NewSettingsRepo(db DBTX) *SettingsRepo { return &SettingsRepo{db: db} }

// Get returns the value and whether the key exists.
func (r *SettingsRepo) Get(ctx context.Context, key string) (int64, bool, error) {
	var v int64
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return v, true, nil
}

func (r *SettingsRepo) Set(ctx context.Context, key string, value int64) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO settings(key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value=excluded.value;
	`, key, value)
	return err
}

// SetIfMissing writes value only when key has no row yet.
func (r *SettingsRepo) SetIfMissing(ctx context.Context, key string, value int64) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO settings(key, value) VALUES (?, ?)`, key, value)
	return err
}
