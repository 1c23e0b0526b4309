package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/canteen/internal/database/repository"
)

func TestSessionsSignInRefreshLogout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	s := &Sessions{DB: f.db}

	_, ok := s.Current()
	require.False(t, ok)

	_, err := s.SignIn(ctx, "nobody@example.com")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.SignIn(ctx, "   ")
	require.ErrorIs(t, err, ErrInvalidInput)

	p, err := s.Register(ctx, " Noa@Example.com ", "Noa")
	require.NoError(t, err)
	require.Equal(t, "noa@example.com", p.Email)
	require.Equal(t, repository.StatusPending, p.Status)

	cur, ok := s.Current()
	require.True(t, ok)
	require.Equal(t, p.ID, cur.ID)

	// approval elsewhere becomes visible on refresh
	require.NoError(t, f.ledger.ApproveUser(ctx, f.admin.ID, p.ID))
	cur, err = s.Refresh(ctx)
	require.NoError(t, err)
	require.True(t, cur.IsActive())

	require.NoError(t, s.Logout(ctx))
	_, ok = s.Current()
	require.False(t, ok)

	again, err := s.SignIn(ctx, "NOA@example.com")
	require.NoError(t, err)
	require.Equal(t, p.ID, again.ID)
}

func TestRefreshEndsSessionOfDeletedProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	u := f.activeUser(t, "noa@example.com", "Noa")

	s := &Sessions{DB: f.db}
	_, err := s.SignIn(ctx, u.Email)
	require.NoError(t, err)
	require.NoError(t, f.ledger.DeleteUser(ctx, f.admin.ID, u.ID))

	_, err = s.Refresh(ctx)
	require.ErrorIs(t, err, ErrNotFound)
	_, ok := s.Current()
	require.False(t, ok)
}

func TestRegisterValidatesInput(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	s := &Sessions{DB: f.db}

	_, err := s.Register(ctx, "not-an-email", "Name")
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.Register(ctx, "x@example.com", "  ")
	require.ErrorIs(t, err, ErrInvalidInput)
}
