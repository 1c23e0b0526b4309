package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jask/canteen/internal/database"
	"github.com/jask/canteen/internal/database/repository"
)

// Ledger is the local reference backend behind the UI's callback contracts.
// Every mutation runs in one sqlite transaction; approvals are conditional
// updates so a deposit or user is decided exactly once.
type Ledger struct {
	DB                   *sql.DB
	AllowNegativeBalance bool
	Now                  func() time.Time
}

// Dashboard is what a signed-in user sees.
type Dashboard struct {
	Balance    int64
	PriceCents int64
	Stock      int64
	Recent     []repository.Transaction
}

// AdminBoard is what the admin page shows.
type AdminBoard struct {
	Stock           int64
	PriceCents      int64
	PendingUsers    []repository.Profile
	PendingDeposits []repository.Transaction
	ActiveUsers     []repository.Profile
	Balances        map[string]int64
	Activities      []repository.Activity
}

func (l *Ledger) now() time.Time {
	if l.Now != nil {
		return l.Now().UTC()
	}
	return database.Now()
}

// Purchase debits the unit price from an active profile and takes one item from stock.
func (l *Ledger) Purchase(ctx context.Context, profileID string) error {
	return database.WithTx(ctx, l.DB, func(tx *sql.Tx) error {
		profile, err := activeProfile(ctx, tx, profileID)
		if err != nil {
			return err
		}
		settings := repository.NewSettingsRepo(tx)
		stock, _, err := settings.Get(ctx, repository.SettingStock)
		if err != nil {
			return err
		}
		if stock <= 0 {
			return ErrOutOfStock
		}
		price, err := priceOf(ctx, settings)
		if err != nil {
			return err
		}
		txs := repository.NewTransactionRepo(tx)
		if !l.AllowNegativeBalance {
			bal, err := txs.Balance(ctx, profile.ID)
			if err != nil {
				return err
			}
			if bal < price {
				return ErrInsufficientFunds
			}
		}
		at := l.now()
		if err := txs.Insert(ctx, repository.Transaction{
			ID:          uuid.NewString(),
			ProfileID:   profile.ID,
			Type:        repository.TxPurchase,
			AmountCents: price,
			Status:      repository.TxStatusApproved,
			CreatedAt:   at,
		}); err != nil {
			return fmt.Errorf("insert purchase: %w", err)
		}
		if err := settings.Set(ctx, repository.SettingStock, stock-1); err != nil {
			return err
		}
		return logActivity(ctx, tx, repository.TxPurchase, &price, profile.FullName, "", at)
	})
}

// RequestDeposit records a pending payment awaiting admin approval.
func (l *Ledger) RequestDeposit(ctx context.Context, profileID string, amountCents int64, notes string) error {
	if amountCents <= 0 {
		return ErrInvalidAmount
	}
	return database.WithTx(ctx, l.DB, func(tx *sql.Tx) error {
		profile, err := activeProfile(ctx, tx, profileID)
		if err != nil {
			return err
		}
		return repository.NewTransactionRepo(tx).Insert(ctx, repository.Transaction{
			ID:          uuid.NewString(),
			ProfileID:   profile.ID,
			Type:        repository.TxPayment,
			AmountCents: amountCents,
			Status:      repository.TxStatusPending,
			Notes:       notes,
			CreatedAt:   l.now(),
		})
	})
}

// ApproveDeposit credits a pending deposit request.
func (l *Ledger) ApproveDeposit(ctx context.Context, actorID, depositID string) error {
	return database.WithTx(ctx, l.DB, func(tx *sql.Tx) error {
		if _, err := requireAdmin(ctx, tx, actorID); err != nil {
			return err
		}
		txs := repository.NewTransactionRepo(tx)
		dep, err := depositByID(ctx, txs, depositID)
		if err != nil {
			return err
		}
		ok, err := txs.ApprovePending(ctx, dep.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAlreadyDecided
		}
		log.Printf("ledger: deposit %s approved by %s", dep.ID, actorID)
		return logActivity(ctx, tx, repository.TxPayment, &dep.AmountCents, dep.ProfileName, dep.Notes, l.now())
	})
}

// DenyDeposit drops a pending deposit request.
func (l *Ledger) DenyDeposit(ctx context.Context, actorID, depositID string) error {
	return database.WithTx(ctx, l.DB, func(tx *sql.Tx) error {
		if _, err := requireAdmin(ctx, tx, actorID); err != nil {
			return err
		}
		txs := repository.NewTransactionRepo(tx)
		dep, err := depositByID(ctx, txs, depositID)
		if err != nil {
			return err
		}
		ok, err := txs.DeletePending(ctx, dep.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAlreadyDecided
		}
		log.Printf("ledger: deposit %s denied by %s", dep.ID, actorID)
		return nil
	})
}

// ApproveUser activates a pending profile.
func (l *Ledger) ApproveUser(ctx context.Context, actorID, profileID string) error {
	return database.WithTx(ctx, l.DB, func(tx *sql.Tx) error {
		if _, err := requireAdmin(ctx, tx, actorID); err != nil {
			return err
		}
		profiles := repository.NewProfileRepo(tx)
		target, err := profiles.Get(ctx, profileID)
		if err != nil {
			return err
		}
		if target == nil {
			return ErrNotFound
		}
		ok, err := profiles.Activate(ctx, profileID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAlreadyDecided
		}
		log.Printf("ledger: user %s approved by %s", profileID, actorID)
		return logActivity(ctx, tx, repository.TxUserApproved, nil, target.FullName, "", l.now())
	})
}

// DenyUser removes a pending profile.
func (l *Ledger) DenyUser(ctx context.Context, actorID, profileID string) error {
	return database.WithTx(ctx, l.DB, func(tx *sql.Tx) error {
		if _, err := requireAdmin(ctx, tx, actorID); err != nil {
			return err
		}
		profiles := repository.NewProfileRepo(tx)
		ok, err := profiles.DeletePending(ctx, profileID)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		target, err := profiles.Get(ctx, profileID)
		if err != nil {
			return err
		}
		if target == nil {
			return ErrNotFound
		}
		return ErrAlreadyDecided
	})
}

// AdjustInventory moves stock by delta; stock never drops below zero.
func (l *Ledger) AdjustInventory(ctx context.Context, actorID string, delta int64) error {
	if delta == 0 {
		return ErrInvalidAmount
	}
	return database.WithTx(ctx, l.DB, func(tx *sql.Tx) error {
		if _, err := requireAdmin(ctx, tx, actorID); err != nil {
			return err
		}
		settings := repository.NewSettingsRepo(tx)
		stock, _, err := settings.Get(ctx, repository.SettingStock)
		if err != nil {
			return err
		}
		if stock+delta < 0 {
			return ErrOutOfStock
		}
		if err := settings.Set(ctx, repository.SettingStock, stock+delta); err != nil {
			return err
		}
		return logActivity(ctx, tx, repository.TxInventory, nil, "", fmt.Sprintf("%+d (%d)", delta, stock+delta), l.now())
	})
}

// SetPrice replaces the unit price.
func (l *Ledger) SetPrice(ctx context.Context, actorID string, priceCents int64) error {
	if priceCents <= 0 {
		return ErrInvalidAmount
	}
	return database.WithTx(ctx, l.DB, func(tx *sql.Tx) error {
		if _, err := requireAdmin(ctx, tx, actorID); err != nil {
			return err
		}
		if err := repository.NewSettingsRepo(tx).Set(ctx, repository.SettingPriceCents, priceCents); err != nil {
			return err
		}
		notes := fmt.Sprintf("מחיר יחידה: %d.%02d", priceCents/100, priceCents%100)
		return logActivity(ctx, tx, repository.TxAdjustment, nil, "", notes, l.now())
	})
}

// EditBalance applies a signed manual adjustment to a profile's balance.
func (l *Ledger) EditBalance(ctx context.Context, actorID, profileID string, deltaCents int64, notes string) error {
	if deltaCents == 0 {
		return ErrInvalidAmount
	}
	return database.WithTx(ctx, l.DB, func(tx *sql.Tx) error {
		if _, err := requireAdmin(ctx, tx, actorID); err != nil {
			return err
		}
		target, err := repository.NewProfileRepo(tx).Get(ctx, profileID)
		if err != nil {
			return err
		}
		if target == nil {
			return ErrNotFound
		}
		at := l.now()
		if err := repository.NewTransactionRepo(tx).Insert(ctx, repository.Transaction{
			ID:          uuid.NewString(),
			ProfileID:   target.ID,
			Type:        repository.TxAdjustment,
			AmountCents: deltaCents,
			Status:      repository.TxStatusApproved,
			Notes:       notes,
			CreatedAt:   at,
		}); err != nil {
			return fmt.Errorf("insert adjustment: %w", err)
		}
		return logActivity(ctx, tx, repository.TxAdjustment, &deltaCents, target.FullName, notes, at)
	})
}

// DeleteUser removes a profile and its ledger rows. Admins cannot delete themselves.
func (l *Ledger) DeleteUser(ctx context.Context, actorID, profileID string) error {
	if actorID == profileID {
		return ErrForbidden
	}
	return database.WithTx(ctx, l.DB, func(tx *sql.Tx) error {
		if _, err := requireAdmin(ctx, tx, actorID); err != nil {
			return err
		}
		profiles := repository.NewProfileRepo(tx)
		target, err := profiles.Get(ctx, profileID)
		if err != nil {
			return err
		}
		if target == nil {
			return ErrNotFound
		}
		if _, err := profiles.Delete(ctx, profileID); err != nil {
			return err
		}
		log.Printf("ledger: user %s deleted by %s", profileID, actorID)
		return logActivity(ctx, tx, repository.TxAdjustment, nil, target.FullName, "משתמש נמחק", l.now())
	})
}

// Balance returns one profile's signed balance.
func (l *Ledger) Balance(ctx context.Context, profileID string) (int64, error) {
	return repository.NewTransactionRepo(l.DB).Balance(ctx, profileID)
}

// Balances returns signed balances by profile id.
func (l *Ledger) Balances(ctx context.Context) (map[string]int64, error) {
	return repository.NewTransactionRepo(l.DB).Balances(ctx)
}

// RecentTransactions returns a profile's newest rows.
func (l *Ledger) RecentTransactions(ctx context.Context, profileID string, limit int) ([]repository.Transaction, error) {
	return repository.NewTransactionRepo(l.DB).ListByProfile(ctx, profileID, limit)
}

func (l *Ledger) PendingDeposits(ctx context.Context) ([]repository.Transaction, error) {
	return repository.NewTransactionRepo(l.DB).ListPendingDeposits(ctx)
}

func (l *Ledger) PendingUsers(ctx context.Context) ([]repository.Profile, error) {
	return repository.NewProfileRepo(l.DB).ListByStatus(ctx, repository.StatusPending)
}

func (l *Ledger) ActiveUsers(ctx context.Context) ([]repository.Profile, error) {
	return repository.NewProfileRepo(l.DB).ListByStatus(ctx, repository.StatusActive)
}

func (l *Ledger) Activities(ctx context.Context, limit int) ([]repository.Activity, error) {
	return repository.NewActivityRepo(l.DB).List(ctx, limit)
}

func (l *Ledger) Stock(ctx context.Context) (int64, error) {
	v, _, err := repository.NewSettingsRepo(l.DB).Get(ctx, repository.SettingStock)
	return v, err
}

func (l *Ledger) Price(ctx context.Context) (int64, error) {
	return priceOf(ctx, repository.NewSettingsRepo(l.DB))
}

// LoadDashboard gathers the user dashboard in one call.
func (l *Ledger) LoadDashboard(ctx context.Context, profileID string, recentLimit int) (Dashboard, error) {
	var d Dashboard
	var err error
	if d.Balance, err = l.Balance(ctx, profileID); err != nil {
		return Dashboard{}, fmt.Errorf("balance: %w", err)
	}
	if d.PriceCents, err = l.Price(ctx); err != nil {
		return Dashboard{}, fmt.Errorf("price: %w", err)
	}
	if d.Stock, err = l.Stock(ctx); err != nil {
		return Dashboard{}, fmt.Errorf("stock: %w", err)
	}
	if d.Recent, err = l.RecentTransactions(ctx, profileID, recentLimit); err != nil {
		return Dashboard{}, fmt.Errorf("recent: %w", err)
	}
	return d, nil
}

// LoadAdminBoard gathers the admin page in one call.
func (l *Ledger) LoadAdminBoard(ctx context.Context, activityLimit int) (AdminBoard, error) {
	var b AdminBoard
	var err error
	if b.Stock, err = l.Stock(ctx); err != nil {
		return AdminBoard{}, fmt.Errorf("stock: %w", err)
	}
	if b.PriceCents, err = l.Price(ctx); err != nil {
		return AdminBoard{}, fmt.Errorf("price: %w", err)
	}
	if b.PendingUsers, err = l.PendingUsers(ctx); err != nil {
		return AdminBoard{}, fmt.Errorf("pending users: %w", err)
	}
	if b.PendingDeposits, err = l.PendingDeposits(ctx); err != nil {
		return AdminBoard{}, fmt.Errorf("pending deposits: %w", err)
	}
	if b.ActiveUsers, err = l.ActiveUsers(ctx); err != nil {
		return AdminBoard{}, fmt.Errorf("active users: %w", err)
	}
	if b.Balances, err = l.Balances(ctx); err != nil {
		return AdminBoard{}, fmt.Errorf("balances: %w", err)
	}
	if b.Activities, err = l.Activities(ctx, activityLimit); err != nil {
		return AdminBoard{}, fmt.Errorf("activities: %w", err)
	}
	return b, nil
}

func activeProfile(ctx context.Context, db repository.DBTX, id string) (*repository.Profile, error) {
	p, err := repository.NewProfileRepo(db).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	if !p.IsActive() {
		return nil, ErrForbidden
	}
	return p, nil
}

func requireAdmin(ctx context.Context, db repository.DBTX, actorID string) (*repository.Profile, error) {
	p, err := activeProfile(ctx, db, actorID)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	return p, nil
}

func depositByID(ctx context.Context, txs *repository.TransactionRepo, id string) (*repository.Transaction, error) {
	dep, err := txs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if dep == nil || dep.Type != repository.TxPayment {
		return nil, ErrNotFound
	}
	return dep, nil
}

func priceOf(ctx context.Context, settings *repository.SettingsRepo) (int64, error) {
	price, ok, err := settings.Get(ctx, repository.SettingPriceCents)
	if err != nil {
		return 0, err
	}
	if !ok || price <= 0 {
		return 0, fmt.Errorf("price not configured: %w", ErrNotFound)
	}
	return price, nil
}

func logActivity(ctx context.Context, db repository.DBTX, kind repository.TxType, amount *int64, profileName, notes string, at time.Time) error {
	err := repository.NewActivityRepo(db).Insert(ctx, repository.Activity{
		ID:          uuid.NewString(),
		Type:        kind,
		AmountCents: amount,
		ProfileName: profileName,
		Notes:       notes,
		CreatedAt:   at,
	})
	if err != nil {
		return fmt.Errorf("log activity: %w", err)
	}
	return nil
}
