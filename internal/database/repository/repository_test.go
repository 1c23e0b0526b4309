package repository_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jask/canteen/internal/database"
	"github.com/jask/canteen/internal/database/repository"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "repo.db")
	require.NoError(t, database.RunMigrations(path))
	db, err := database.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func insertProfile(t *testing.T, ctx context.Context, repo *repository.ProfileRepo, name string, status repository.Status, at time.Time) repository.Profile {
	t.Helper()
	p := repository.Profile{
		ID:        uuid.NewString(),
		FullName:  name,
		Email:     name + "@example.com",
		Role:      repository.RoleUser,
		Status:    status,
		CreatedAt: at,
	}
	require.NoError(t, repo.Insert(ctx, p))
	return p
}

func TestProfileLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	profiles := repository.NewProfileRepo(newDB(t))

	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	late := insertProfile(t, ctx, profiles, "zohar", repository.StatusPending, base.Add(time.Hour))
	early := insertProfile(t, ctx, profiles, "avi", repository.StatusPending, base)

	pending, err := profiles.ListByStatus(ctx, repository.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	require.Equal(t, early.ID, pending[0].ID, "pending queue is oldest first")

	ok, err := profiles.Activate(ctx, late.ID)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = profiles.Activate(ctx, late.ID)
	require.NoError(t, err)
	require.False(t, ok, "second activation changes nothing")

	ok, err = profiles.DeletePending(ctx, late.ID)
	require.NoError(t, err)
	require.False(t, ok, "active profiles are not removed by deny")

	got, err := profiles.ByEmail(ctx, "zohar@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.True(t, got.IsActive())
	require.False(t, got.IsAdmin())

	missing, err := profiles.Get(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestBalancesAndPendingDeposits(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newDB(t)
	profiles := repository.NewProfileRepo(db)
	txs := repository.NewTransactionRepo(db)

	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	p := insertProfile(t, ctx, profiles, "noa", repository.StatusActive, now)

	rows := []repository.Transaction{
		{Type: repository.TxPayment, AmountCents: 2000, Status: repository.TxStatusApproved},
		{Type: repository.TxPurchase, AmountCents: 500, Status: repository.TxStatusApproved},
		{Type: repository.TxAdjustment, AmountCents: -250, Status: repository.TxStatusApproved},
		{Type: repository.TxPayment, AmountCents: 9999, Status: repository.TxStatusPending, Notes: "cash"},
	}
	for i, r := range rows {
		r.ID = uuid.NewString()
		r.ProfileID = p.ID
		r.CreatedAt = now.Add(time.Duration(i) * time.Minute)
		require.NoError(t, txs.Insert(ctx, r))
		rows[i] = r
	}

	bal, err := txs.Balance(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1250), bal, "pending deposit is not counted")

	all, err := txs.Balances(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]int64{p.ID: 1250}, all)

	recent, err := txs.ListByProfile(ctx, p.ID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, rows[3].ID, recent[0].ID, "newest first")
	require.Equal(t, "noa", recent[0].ProfileName)

	pending, err := txs.ListPendingDeposits(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "cash", pending[0].Notes)

	ok, err := txs.ApprovePending(ctx, pending[0].ID)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = txs.ApprovePending(ctx, pending[0].ID)
	require.NoError(t, err)
	require.False(t, ok)

	bal, err = txs.Balance(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, int64(11249), bal)

	// deleting the profile cascades to its ledger rows
	ok, err = profiles.Delete(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, ok)
	left, err := txs.ListByProfile(ctx, p.ID, 0)
	require.NoError(t, err)
	require.Empty(t, left)
}

func TestActivitiesNewestFirstWithOptionalAmount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	acts := repository.NewActivityRepo(newDB(t))

	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	amount := int64(500)
	require.NoError(t, acts.Insert(ctx, repository.Activity{ID: "a1", Type: repository.TxPurchase, AmountCents: &amount, ProfileName: "noa", CreatedAt: now}))
	require.NoError(t, acts.Insert(ctx, repository.Activity{ID: "a2", Type: repository.TxUserApproved, ProfileName: "avi", CreatedAt: now.Add(time.Second)}))

	list, err := acts.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "a2", list[0].ID)
	require.Nil(t, list[0].AmountCents)
	require.NotNil(t, list[1].AmountCents)
	require.Equal(t, int64(500), *list[1].AmountCents)
}

func TestSettings(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	settings := repository.NewSettingsRepo(newDB(t))

	_, ok, err := settings.Get(ctx, repository.SettingStock)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, settings.SetIfMissing(ctx, repository.SettingStock, 3))
	require.NoError(t, settings.SetIfMissing(ctx, repository.SettingStock, 7))
	v, ok, err := settings.Get(ctx, repository.SettingStock)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(3), v)

	require.NoError(t, settings.Set(ctx, repository.SettingStock, 12))
	v, _, err = settings.Get(ctx, repository.SettingStock)
	require.NoError(t, err)
	require.Equal(t, int64(12), v)
}
