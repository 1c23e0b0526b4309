package repository

import (
	"context"
	"database/sql"
	"errors"
)

// ProfileRepo handles profiles.
type ProfileRepo struct {
	db DBTX
}

func NewProfileRepo(db DBTX) *ProfileRepo { return &ProfileRepo{db: db} }

const profileColumns = "id, full_name, email, role, status, created_at"

func (r *ProfileRepo) Insert(ctx context.Context, p Profile) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO profiles(id, full_name, email, role, status, created_at)
	VALUES(?, ?, ?, ?, ?, ?);
	`, p.ID, p.FullName, p.Email, p.Role, p.Status, p.CreatedAt)
	return err
}

func (r *ProfileRepo) Get(ctx context.Context, id string) (*Profile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id)
	return scanOptionalProfile(row)
}

func (r *ProfileRepo) ByEmail(ctx context.Context, email string) (*Profile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE email = ?`, email)
	return scanOptionalProfile(row)
}

// ListByStatus returns profiles in the given state; pending ones oldest first so the
// queue is worked in arrival order, active ones by name.
func (r *ProfileRepo) ListByStatus(ctx context.Context, status Status) ([]Profile, error) {
	order := "full_name COLLATE NOCASE"
	if status == StatusPending {
		order = "created_at, rowid"
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE status = ? ORDER BY `+order, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Activate flips a pending profile to active and reports whether a row changed.
func (r *ProfileRepo) Activate(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE profiles SET status = ? WHERE id = ? AND status = ?`, StatusActive, id, StatusPending)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// DeletePending removes a profile only if it is still pending.
func (r *ProfileRepo) DeletePending(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ? AND status = ?`, id, StatusPending)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// Delete removes a profile; ledger rows cascade.
func (r *ProfileRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *ProfileRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&n)
	return n, err
}

// CountActiveAdmins counts admins able to approve registrations.
func (r *ProfileRepo) CountActiveAdmins(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM profiles WHERE role = ? AND status = ?`,
		RoleAdmin, StatusActive).Scan(&n)
	return n, err
}

func scanProfile(row scanner) (Profile, error) {
	var p Profile
	if err := row.Scan(&p.ID, &p.FullName, &p.Email, &p.Role, &p.Status, &p.CreatedAt); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func scanOptionalProfile(row scanner) (*Profile, error) {
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
