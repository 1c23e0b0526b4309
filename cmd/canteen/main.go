package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/canteen/internal/config"
	"github.com/jask/canteen/internal/database"
	"github.com/jask/canteen/internal/money"
	"github.com/jask/canteen/internal/prefs"
	"github.com/jask/canteen/internal/service"
	"github.com/jask/canteen/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if len(os.Args) > 1 && os.Args[1] == "init-config" {
		if err := config.Save(cfg); err != nil {
			log.Fatalf("save config: %v", err)
		}
		fmt.Println("config written")
		return
	}

	if cfg.Log.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Log.Path), 0o755); err != nil {
			log.Fatalf("mkdir log dir: %v", err)
		}
		f, err := tea.LogToFile(cfg.Log.Path, "canteen")
		if err != nil {
			log.Fatalf("log file: %v", err)
		}
		defer f.Close()
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("mkdir db dir: %v", err)
	}
	if err := database.RunMigrations(cfg.Database.Path); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	seed := database.SeedFromConfig(cfg.Ledger.DefaultPrice, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminName)
	if err := database.SeedDefaults(ctx, db, seed); err != nil {
		log.Fatalf("seed defaults: %v", err)
	}

	if ok, err := database.HasActiveAdmin(ctx, db); err != nil {
		log.Printf("warn: %v", err)
	} else if !ok {
		log.Printf("warn: no active admin; registrations stay pending until bootstrap.admin_email is set on an empty database")
	}

	loc, err := time.LoadLocation(cfg.UI.Timezone)
	if err != nil {
		log.Printf("warn: using local timezone due to load failure: %v", err)
		loc = time.Local
	}

	ledger := &service.Ledger{DB: db, AllowNegativeBalance: cfg.Ledger.AllowNegativeBalance}
	sessions := &service.Sessions{DB: db}
	if cfg.Session.Email != "" {
		if _, err := sessions.SignIn(ctx, cfg.Session.Email); err != nil {
			log.Printf("warn: auto sign-in for %s: %v", cfg.Session.Email, err)
		}
	}

	store := prefs.Store{Path: cfg.UI.PrefsPath}
	stored, err := store.LoadTheme()
	if err != nil {
		log.Printf("warn: theme preference: %v", err)
	}
	theme := prefs.Resolve(stored, lipgloss.HasDarkBackground)

	appCtx := tui.NewAppContext(ctx, theme, money.Formatter{Symbol: cfg.UI.CurrencySymbol}, loc, cfg.UI.RTL, cfg.Ledger.CallTimeout)
	app := tui.New(appCtx, ledger, sessions, store, tui.Options{
		RecentLimit:   cfg.UI.RecentLimit,
		ActivityLimit: cfg.UI.ActivityLimit,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}
