package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jask/canteen/internal/database/repository"
	"github.com/jask/canteen/internal/money"
)

// Seed carries the values written into an empty database.
type Seed struct {
	PriceCents int64
	AdminEmail string
	AdminName  string
}

// SeedFromConfig converts a configured decimal price into minor units.
func SeedFromConfig(price float64, adminEmail, adminName string) Seed {
	return Seed{
		PriceCents: money.FromFloat(price),
		AdminEmail: adminEmail,
		AdminName:  adminName,
	}
}

// SeedDefaults ensures baseline settings exist and, on a database without profiles,
// creates the bootstrap admin. It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB, seed Seed) error {
	return WithTx(ctx, db, func(tx *sql.Tx) error {
		settings := repository.NewSettingsRepo(tx)
		if err := settings.SetIfMissing(ctx, repository.SettingStock, 0); err != nil {
			return err
		}
		if seed.PriceCents > 0 {
			if err := settings.SetIfMissing(ctx, repository.SettingPriceCents, seed.PriceCents); err != nil {
				return err
			}
		}

		email := strings.ToLower(strings.TrimSpace(seed.AdminEmail))
		if email == "" {
			return nil
		}
		profiles := repository.NewProfileRepo(tx)
		n, err := profiles.Count(ctx)
		if err != nil || n > 0 {
			return err
		}
		name := strings.TrimSpace(seed.AdminName)
		if name == "" {
			name = email
		}
		return profiles.Insert(ctx, repository.Profile{
			ID:        uuid.NewSHA1(uuid.NameSpaceOID, []byte("profile:"+email)).String(),
			FullName:  name,
			Email:     email,
			Role:      repository.RoleAdmin,
			Status:    repository.StatusActive,
			CreatedAt: Now(),
		})
	})
}

// HasActiveAdmin reports whether anyone can approve new registrations.
func HasActiveAdmin(ctx context.Context, db *sql.DB) (bool, error) {
	n, err := repository.NewProfileRepo(db).CountActiveAdmins(ctx)
	if err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	return n > 0, nil
}
