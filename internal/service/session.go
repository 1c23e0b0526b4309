package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jask/canteen/internal/database"
	"github.com/jask/canteen/internal/database/repository"
)

// Sessions tracks the signed-in profile for this terminal. Commands run on
// their own goroutines, so access is serialized.
type Sessions struct {
	DB  *sql.DB
	Now func() time.Time

	mu      sync.Mutex
	current *repository.Profile
}

// SignIn starts a session for an existing profile.
func (s *Sessions) SignIn(ctx context.Context, email string) (repository.Profile, error) {
	email = normalizeEmail(email)
	if email == "" {
		return repository.Profile{}, ErrInvalidInput
	}
	p, err := repository.NewProfileRepo(s.DB).ByEmail(ctx, email)
	if err != nil {
		return repository.Profile{}, fmt.Errorf("lookup profile: %w", err)
	}
	if p == nil {
		return repository.Profile{}, ErrNotFound
	}
	s.set(p)
	return *p, nil
}

// Register creates a pending profile and signs it in.
func (s *Sessions) Register(ctx context.Context, email, fullName string) (repository.Profile, error) {
	email = normalizeEmail(email)
	fullName = strings.TrimSpace(fullName)
	if email == "" || fullName == "" || !strings.Contains(email, "@") {
		return repository.Profile{}, ErrInvalidInput
	}
	now := database.Now()
	if s.Now != nil {
		now = s.Now().UTC()
	}
	p := repository.Profile{
		ID:        uuid.NewString(),
		FullName:  fullName,
		Email:     email,
		Role:      repository.RoleUser,
		Status:    repository.StatusPending,
		CreatedAt: now,
	}
	err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		profiles := repository.NewProfileRepo(tx)
		existing, err := profiles.ByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrDuplicateEmail
		}
		return profiles.Insert(ctx, p)
	})
	if err != nil {
		return repository.Profile{}, err
	}
	s.set(&p)
	return p, nil
}

// Current returns the signed-in profile, if any.
func (s *Sessions) Current() (repository.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return repository.Profile{}, false
	}
	return *s.current, true
}

// Refresh reloads the signed-in profile. A profile deleted meanwhile ends the session.
func (s *Sessions) Refresh(ctx context.Context) (repository.Profile, error) {
	cur, ok := s.Current()
	if !ok {
		return repository.Profile{}, ErrNotFound
	}
	p, err := repository.NewProfileRepo(s.DB).Get(ctx, cur.ID)
	if err != nil {
		return repository.Profile{}, fmt.Errorf("refresh profile: %w", err)
	}
	if p == nil {
		s.set(nil)
		return repository.Profile{}, ErrNotFound
	}
	s.set(p)
	return *p, nil
}

// Logout ends the session.
func (s *Sessions) Logout(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.set(nil)
	return nil
}

func (s *Sessions) set(p *repository.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == nil {
		s.current = nil
		return
	}
	cp := *p
	s.current = &cp
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
