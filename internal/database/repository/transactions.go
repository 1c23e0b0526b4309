package repository

import (
	"context"
	"database/sql"
	"errors"
)

// TransactionRepo handles ledger rows.
type TransactionRepo struct {
	db DBTX
}

func NewTransactionRepo(db DBTX) *TransactionRepo { return &TransactionRepo{db: db} }

const transactionSelect = `
	SELECT t.id, t.profile_id, COALESCE(p.full_name, ''), t.type, t.amount, t.status, t.notes, t.created_at
	FROM transactions t LEFT JOIN profiles p ON p.id = t.profile_id`

// balanceExpr sums approved rows: payments and adjustments as stored, purchases negated.
const balanceExpr = `COALESCE(SUM(CASE WHEN type = 'purchase' THEN -amount ELSE amount END), 0)`

func (r *TransactionRepo) Insert(ctx context.Context, t Transaction) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO transactions(id, profile_id, type, amount, status, notes, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?);
	`, t.ID, t.ProfileID, t.Type, t.AmountCents, t.Status, t.Notes, t.CreatedAt)
	return err
}

func (r *TransactionRepo) Get(ctx context.Context, id string) (*Transaction, error) {
	row := r.db.QueryRowContext(ctx, transactionSelect+` WHERE t.id = ?`, id)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// ListByProfile returns a profile's rows newest first. limit <= 0 means no limit.
func (r *TransactionRepo) ListByProfile(ctx context.Context, profileID string, limit int) ([]Transaction, error) {
	query := transactionSelect + ` WHERE t.profile_id = ? ORDER BY t.created_at DESC, t.rowid DESC`
	args := []any{profileID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return r.list(ctx, query, args...)
}

// ListPendingDeposits returns pending payment rows oldest first.
func (r *TransactionRepo) ListPendingDeposits(ctx context.Context) ([]Transaction, error) {
	return r.list(ctx, transactionSelect+` WHERE t.type = ? AND t.status = ? ORDER BY t.created_at, t.rowid`, TxPayment, TxStatusPending)
}

// ApprovePending flips a pending row to approved and reports whether a row changed.
func (r *TransactionRepo) ApprovePending(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE transactions SET status = ? WHERE id = ? AND status = ?`, TxStatusApproved, id, TxStatusPending)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// DeletePending removes a row only while it is still pending.
func (r *TransactionRepo) DeletePending(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND status = ?`, id, TxStatusPending)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// Balance returns the signed balance of one profile from approved rows.
func (r *TransactionRepo) Balance(ctx context.Context, profileID string) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `SELECT `+balanceExpr+` FROM transactions WHERE profile_id = ? AND status = ?`, profileID, TxStatusApproved).Scan(&total)
	return total, err
}

// Balances returns signed balances keyed by profile id. Profiles without rows are absent.
func (r *TransactionRepo) Balances(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT profile_id, `+balanceExpr+` FROM transactions WHERE status = ? GROUP BY profile_id`, TxStatusApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int64{}
	for rows.Next() {
		var id string
		var total int64
		if err := rows.Scan(&id, &total); err != nil {
			return nil, err
		}
		out[id] = total
	}
	return out, rows.Err()
}

func (r *TransactionRepo) list(ctx context.Context, query string, args ...any) ([]Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTransaction(row scanner) (Transaction, error) {
	var t Transaction
	if err := row.Scan(&t.ID, &t.ProfileID, &t.ProfileName, &t.Type, &t.AmountCents, &t.Status, &t.Notes, &t.CreatedAt); err != nil {
		return Transaction{}, err
	}
	return t, nil
}
