package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/canteen/internal/action"
	"github.com/jask/canteen/internal/database/repository"
)

const (
	pendingUsersTitle    = "משתמשים ממתינים"
	pendingDepositsTitle = "הפקדות ממתינות"
	noPendingUsers       = "אין משתמשים ממתינים לאישור"
	noPendingDeposits    = "אין הפקדות ממתינות לאישור"
	approveLabel         = "אשר"
	denyLabel            = "דחה"
)

// ApprovalQueue is a list of pending entities, each approvable or deniable.
// One guard covers the whole queue, so at most one row's call is in flight.
type ApprovalQueue[T any] struct {
	ctx     *AppContext
	to      target
	Title   string
	Empty   string
	Items   []T
	Loading bool

	ID        func(T) string
	Row       func(*AppContext, T) string
	OnApprove func(context.Context, T) error
	OnDeny    func(context.Context, T) error

	cursor int
	guard  action.Guard
}

// NewPendingUsers builds the user registration queue.
func NewPendingUsers(ctx *AppContext) *ApprovalQueue[repository.Profile] {
	return &ApprovalQueue[repository.Profile]{
		ctx:     ctx,
		to:      targetUsersQ,
		Title:   pendingUsersTitle,
		Empty:   noPendingUsers,
		Loading: true,
		ID:      func(p repository.Profile) string { return p.ID },
		Row: func(c *AppContext, p repository.Profile) string {
			return strings.Join([]string{
				c.Styles.Text.Render(displayName(p.FullName)),
				c.Styles.Muted.Render(p.Email),
				c.Styles.Muted.Render(c.local(p.CreatedAt).Format(recentTimeLayout)),
			}, "  ")
		},
	}
}

// NewPendingDeposits builds the deposit request queue.
func NewPendingDeposits(ctx *AppContext) *ApprovalQueue[repository.Transaction] {
	return &ApprovalQueue[repository.Transaction]{
		ctx:     ctx,
		to:      targetDepositsQ,
		Title:   pendingDepositsTitle,
		Empty:   noPendingDeposits,
		Loading: true,
		ID:      func(t repository.Transaction) string { return t.ID },
		Row: func(c *AppContext, t repository.Transaction) string {
			parts := []string{
				c.Styles.Text.Render(displayName(t.ProfileName)),
				c.Styles.Muted.Render(c.local(t.CreatedAt).Format(recentTimeLayout)),
				c.Styles.Tone(ToneCredit).Render(c.Money.Abs(t.AmountCents)),
			}
			if t.Notes != "" {
				parts = append(parts, c.Styles.Muted.Render(t.Notes))
			}
			return strings.Join(parts, "  ")
		},
	}
}

// SetItems replaces the list; rows only disappear this way.
func (q *ApprovalQueue[T]) SetItems(items []T) {
	q.Items = items
	q.Loading = false
	if q.cursor >= len(items) {
		q.cursor = max(0, len(items)-1)
	}
}

// Enabled reports whether approve and deny are available on any row.
func (q *ApprovalQueue[T]) Enabled() bool { return !q.guard.Pending() && !q.Loading }

func (q *ApprovalQueue[T]) Selected() (T, bool) {
	var zero T
	if len(q.Items) == 0 {
		return zero, false
	}
	return q.Items[q.cursor], true
}

func (q *ApprovalQueue[T]) Approve() tea.Cmd { return q.decide(approveLabel, "approve", q.OnApprove) }

func (q *ApprovalQueue[T]) Deny() tea.Cmd { return q.decide(denyLabel, "deny", q.OnDeny) }

func (q *ApprovalQueue[T]) decide(label, verb string, fn func(context.Context, T) error) tea.Cmd {
	item, ok := q.Selected()
	if !ok || !q.Enabled() {
		return nil
	}
	t, ok := q.guard.Begin(q.ID(item) + ":" + verb)
	if !ok {
		return nil
	}
	return q.ctx.call(q.to, t, q.Title+": "+label, func(ctx context.Context) error {
		if fn == nil {
			return nil
		}
		return fn(ctx, item)
	})
}

func (q *ApprovalQueue[T]) Update(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Up):
		if q.cursor > 0 {
			q.cursor--
		}
	case key.Matches(msg, keys.Down):
		if q.cursor < len(q.Items)-1 {
			q.cursor++
		}
	case key.Matches(msg, keys.Approve):
		return q.Approve()
	case key.Matches(msg, keys.Deny):
		return q.Deny()
	}
	return nil
}

func (q *ApprovalQueue[T]) Settle(m settledMsg) bool {
	return q.guard.Settle(m.result.Ticket, m.result.Err)
}

func (q *ApprovalQueue[T]) View(width int, focused bool) string {
	c := q.ctx
	badge := ""
	if len(q.Items) > 0 {
		badge = c.Styles.Badge.Render(fmt.Sprintf("(%d)", len(q.Items)))
	}
	switch {
	case q.Loading:
		return c.card(q.Title, badge, c.Styles.Muted.Render(loadingText), focused, width)
	case len(q.Items) == 0:
		return c.card(q.Title, badge, c.Styles.Muted.Render(q.Empty), focused, width)
	}
	enabled := q.Enabled()
	lines := make([]string, 0, len(q.Items))
	for i, item := range q.Items {
		id := q.ID(item)
		row := q.Row(c, item) + "  " +
			c.button("a", approveLabel, enabled, q.guard.InFlight(id+":approve")) + " " +
			c.button("d", denyLabel, enabled, q.guard.InFlight(id+":deny"))
		if focused && i == q.cursor {
			row = c.Styles.Selected.Render(row)
		}
		lines = append(lines, row)
	}
	return c.card(q.Title, badge, strings.Join(lines, "\n"), focused, width)
}
