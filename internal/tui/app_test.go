package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jask/canteen/internal/database"
	"github.com/jask/canteen/internal/money"
	"github.com/jask/canteen/internal/prefs"
	"github.com/jask/canteen/internal/service"
)

type harness struct {
	ledger   *service.Ledger
	sessions *service.Sessions
	store    prefs.Store
}

func newHarness(t *testing.T) harness {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "canteen.db")
	require.NoError(t, database.RunMigrations(path))
	db, err := database.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.SeedDefaults(context.Background(), db, database.SeedFromConfig(5, "admin@example.com", "Admin")))
	return harness{
		ledger:   &service.Ledger{DB: db, AllowNegativeBalance: true},
		sessions: &service.Sessions{DB: db},
		store:    prefs.Store{Path: filepath.Join(dir, "prefs.toml")},
	}
}

func (h harness) app(t *testing.T, theme prefs.Theme) *App {
	t.Helper()
	c := NewAppContext(context.Background(), theme, money.Formatter{}, nil, true, 0)
	a := New(c, h.ledger, h.sessions, h.store, Options{})
	a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return a
}

// drain runs cmd and every command produced while handling its messages.
func drain(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 500 {
			t.Fatalf("commands did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch m := next().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, m...)
		default:
			_, c := a.Update(m)
			queue = append(queue, c)
		}
	}
}

func press(t *testing.T, a *App, msgs ...tea.KeyMsg) {
	t.Helper()
	for _, m := range msgs {
		_, cmd := a.Update(m)
		drain(t, a, cmd)
	}
}

func typeInto(t *testing.T, a *App, s string) {
	t.Helper()
	for _, r := range s {
		press(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestSignInRegisterAndPendingGate(t *testing.T) {
	h := newHarness(t)
	a := h.app(t, prefs.ThemeLight)
	require.Nil(t, a.Init())
	require.Contains(t, a.View(), "דוא״ל")

	typeInto(t, a, "new@example.com")
	press(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, a.login.Registering(), "unknown email moves to registration")

	typeInto(t, a, "Dana Noy")
	press(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, a.ctx.SignedIn())

	view := a.View()
	require.Contains(t, view, "החשבון ממתין לאישור מנהל")
	require.NotContains(t, view, "ניהול", "pending accounts get no navigation")

	press(t, a, runes("A"))
	require.Equal(t, pageDashboard, a.page)
	press(t, a, runes("b"))
	require.False(t, a.quick.guard.Pending(), "pending accounts cannot buy")
}

func TestAdminLinkRequiresActiveAdmin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin, err := h.sessions.SignIn(ctx, "admin@example.com")
	require.NoError(t, err)

	a := h.app(t, prefs.ThemeLight)
	drain(t, a, a.Init())
	require.Contains(t, a.View(), "ניהול")
	press(t, a, runes("A"))
	require.Equal(t, pageAdmin, a.page)
	require.Contains(t, a.View(), "מחיר יחידה")
	require.Contains(t, a.View(), "₪5.00")

	// a regular active user never reaches the admin page
	user, err := (&service.Sessions{DB: h.ledger.DB}).Register(ctx, "u@example.com", "User")
	require.NoError(t, err)
	require.NoError(t, h.ledger.ApproveUser(ctx, admin.ID, user.ID))
	_, err = h.sessions.SignIn(ctx, "u@example.com")
	require.NoError(t, err)
	b := h.app(t, prefs.ThemeLight)
	drain(t, b, b.Init())
	press(t, b, runes("A"))
	require.Equal(t, pageDashboard, b.page)
	require.NotContains(t, b.navBar(), "ניהול")
}

func TestFailedPurchaseShowsBannerAndReenables(t *testing.T) {
	h := newHarness(t)
	_, err := h.sessions.SignIn(context.Background(), "admin@example.com")
	require.NoError(t, err)
	a := h.app(t, prefs.ThemeLight)
	drain(t, a, a.Init())
	require.False(t, a.quick.Loading)

	press(t, a, runes("b")) // stock starts at zero
	require.Contains(t, a.Banner(), "אין מלאי")
	require.True(t, a.quick.CanPurchase())
	require.Contains(t, a.View(), "אין מלאי")

	require.NoError(t, h.ledger.AdjustInventory(context.Background(), a.ctx.ActorID(), 3))
	press(t, a, runes("b"))
	require.Empty(t, a.Banner(), "a successful call clears the banner")
	require.Equal(t, int64(-500), a.balance.Balance, "settled actions reload the dashboard")
}

func TestAdminApprovesDepositThroughQueue(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin, err := h.sessions.SignIn(ctx, "admin@example.com")
	require.NoError(t, err)
	reg := &service.Sessions{DB: h.ledger.DB}
	u, err := reg.Register(ctx, "noa@example.com", "Noa")
	require.NoError(t, err)
	require.NoError(t, h.ledger.ApproveUser(ctx, admin.ID, u.ID))
	require.NoError(t, h.ledger.RequestDeposit(ctx, u.ID, 2000, "cash"))

	a := h.app(t, prefs.ThemeLight)
	drain(t, a, a.Init())
	press(t, a, runes("A"))
	require.Len(t, a.pendingDeposits.Items, 1)

	press(t, a, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, panePendingDeposits, a.focus)
	press(t, a, runes("a"))
	require.Empty(t, a.pendingDeposits.Items)
	require.Equal(t, int64(2000), a.users.BalanceOf(u.ID))
	require.Contains(t, a.View(), "אין הפקדות ממתינות לאישור")
}

func TestThemeWrittenOnlyOnToggle(t *testing.T) {
	h := newHarness(t)
	stored, err := h.store.LoadTheme()
	require.NoError(t, err)
	theme := prefs.Resolve(stored, func() bool { return true })
	require.Equal(t, prefs.ThemeDark, theme)

	_, err = h.sessions.SignIn(context.Background(), "admin@example.com")
	require.NoError(t, err)
	a := h.app(t, theme)
	drain(t, a, a.Init())
	_ = a.View()
	require.Equal(t, prefs.ThemeDark, a.ctx.Theme)
	_, err = os.Stat(h.store.Path)
	require.True(t, os.IsNotExist(err), "nothing is written before an explicit toggle")

	press(t, a, runes("t"))
	require.Equal(t, prefs.ThemeLight, a.ctx.Theme)
	got, err := h.store.LoadTheme()
	require.NoError(t, err)
	require.Equal(t, prefs.ThemeLight, got)
}

func TestMenuAndLogout(t *testing.T) {
	h := newHarness(t)
	_, err := h.sessions.SignIn(context.Background(), "admin@example.com")
	require.NoError(t, err)
	a := h.app(t, prefs.ThemeLight)
	drain(t, a, a.Init())

	press(t, a, runes("m"))
	require.True(t, a.menuOpen)
	view := a.View()
	for _, item := range []string{"ראשי", "ניהול", "התנתק"} {
		require.Contains(t, view, item)
	}
	press(t, a, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, a.menuOpen)
	require.Equal(t, pageAdmin, a.page)

	press(t, a, runes("L"))
	require.False(t, a.ctx.SignedIn())
	_, ok := h.sessions.Current()
	require.False(t, ok)
	require.True(t, strings.Contains(a.View(), "כניסה"))
}

func TestLateResultsAfterLogoutAreDropped(t *testing.T) {
	h := newHarness(t)
	_, err := h.sessions.SignIn(context.Background(), "admin@example.com")
	require.NoError(t, err)
	a := h.app(t, prefs.ThemeLight)
	drain(t, a, a.Init())
	require.True(t, a.isAdmin())

	old := a.ctx.Session()
	lateProfile := a.refreshSession()()
	lateBoard := a.loadAdminBoard()()
	lateBuy := a.quick.Purchase()
	require.NotNil(t, lateBuy)

	press(t, a, runes("L"))
	require.False(t, a.ctx.SignedIn())

	a.Update(lateProfile)
	a.Update(lateBoard)
	require.False(t, a.ctx.SignedIn(), "a refresh issued before logout does not sign back in")
	require.False(t, a.isAdmin())
	require.Empty(t, a.ctx.ActorID())
	require.True(t, a.inventory.Loading, "rebuilt widgets stay empty")
	_, ok := h.sessions.Current()
	require.False(t, ok)

	typeInto(t, a, "admin@example.com")
	press(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, a.ctx.SignedIn())
	require.NotEqual(t, old, a.ctx.Session())

	a.Update(dashboardMsg{session: old, data: service.Dashboard{Balance: 12345}})
	require.NotEqual(t, int64(12345), a.balance.Balance)
	a.Update(sessionEndedMsg{session: old})
	require.True(t, a.ctx.SignedIn(), "an old session's end does not close the new one")

	// a call from the old session cannot settle the new session's widget
	require.NotNil(t, a.quick.Purchase())
	a.Update(lateBuy())
	require.True(t, a.quick.guard.Pending())
}
