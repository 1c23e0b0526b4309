package repository

import (
	"context"
	"database/sql"
)

// ActivityRepo handles the admin feed.
type ActivityRepo struct {
	db DBTX
}

func NewActivityRepo(db DBTX) *ActivityRepo { return &ActivityRepo{db: db} }

func (r *ActivityRepo) Insert(ctx context.Context, a Activity) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO activities(id, type, amount, profile_name, notes, created_at)
	VALUES(?, ?, ?, ?, ?, ?);
	`, a.ID, a.Type, a.AmountCents, a.ProfileName, a.Notes, a.CreatedAt)
	return err
}

// List returns the newest rows first. limit <= 0 means no limit.
func (r *ActivityRepo) List(ctx context.Context, limit int) ([]Activity, error) {
	query := `SELECT id, type, amount, profile_name, notes, created_at FROM activities ORDER BY created_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Activity
	for rows.Next() {
		var a Activity
		var amount sql.NullInt64
		if err := rows.Scan(&a.ID, &a.Type, &amount, &a.ProfileName, &a.Notes, &a.CreatedAt); err != nil {
			return nil, err
		}
		if amount.Valid {
			v := amount.Int64
			a.AmountCents = &v
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
