package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/canteen/internal/database/repository"
)

func openMigrated(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "canteen.db")
	require.NoError(t, RunMigrations(path))
	return path
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	t.Parallel()

	path := openMigrated(t)
	require.NoError(t, RunMigrations(path))

	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	for _, table := range []string{"profiles", "transactions", "activities", "settings"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestSeedDefaultsCreatesAdminOnce(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	db, err := Open(openMigrated(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	seed := SeedFromConfig(5.5, " Admin@Example.com ", "Dana")
	require.Equal(t, int64(550), seed.PriceCents)
	require.NoError(t, SeedDefaults(ctx, db, seed))
	require.NoError(t, SeedDefaults(ctx, db, seed))

	profiles := repository.NewProfileRepo(db)
	n, err := profiles.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	admin, err := profiles.ByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	require.NotNil(t, admin)
	require.True(t, admin.IsAdmin())
	require.Equal(t, "Dana", admin.FullName)

	settings := repository.NewSettingsRepo(db)
	price, ok, err := settings.Get(ctx, repository.SettingPriceCents)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(550), price)

	// a changed config price never overwrites the stored one
	require.NoError(t, SeedDefaults(ctx, db, SeedFromConfig(9, "", "")))
	price, _, err = settings.Get(ctx, repository.SettingPriceCents)
	require.NoError(t, err)
	require.Equal(t, int64(550), price)
}

func TestHasActiveAdmin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := Open(openMigrated(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, SeedDefaults(ctx, db, SeedFromConfig(5, "", "")))
	ok, err := HasActiveAdmin(ctx, db)
	require.NoError(t, err)
	require.False(t, ok, "no bootstrap email leaves the database without an admin")

	require.NoError(t, SeedDefaults(ctx, db, SeedFromConfig(5, "admin@example.com", "Admin")))
	ok, err = HasActiveAdmin(ctx, db)
	require.NoError(t, err)
	require.True(t, ok)
}
