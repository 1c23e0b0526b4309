package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/canteen/internal/action"
	"github.com/jask/canteen/internal/money"
)

const (
	quickBuyLabel   = "קנייה מהירה"
	addFundsTitle   = "טעינת יתרה"
	amountLabel     = "סכום (₪)"
	depositNotes    = "הערות (אופציונלי)"
	submitRequest   = "שלח בקשה"
	cancelLabel     = "ביטול"
	keyPurchase     = "purchase"
	keyDeposit      = "deposit"
	depositFieldAmt = 0
	depositFieldNts = 1
)

// QuickActions is the buy button and the add-funds dialog.
type QuickActions struct {
	ctx        *AppContext
	PriceCents int64
	Loading    bool

	OnPurchase func(ctx context.Context) error
	OnAddFunds func(ctx context.Context, amountCents int64, notes string) error

	guard  action.Guard
	dialog bool
	form   form
}

func NewQuickActions(ctx *AppContext) *QuickActions {
	return &QuickActions{
		ctx:     ctx,
		Loading: true,
		form:    newForm(newInput("0.00", 10), newInput("", 120)),
	}
}

func (q *QuickActions) CanPurchase() bool { return !q.Loading && !q.guard.Pending() }

// DialogOpen reports whether the add-funds dialog owns the keyboard.
func (q *QuickActions) DialogOpen() bool { return q.dialog }

// CanSubmit is true only for a positive amount with nothing in flight.
func (q *QuickActions) CanSubmit() bool {
	_, ok := money.ParsePositive(q.form.value(depositFieldAmt))
	return ok && !q.guard.Pending()
}

func (q *QuickActions) Purchase() tea.Cmd {
	if !q.CanPurchase() {
		return nil
	}
	t, ok := q.guard.Begin(keyPurchase)
	if !ok {
		return nil
	}
	on := q.OnPurchase
	return q.ctx.call(targetQuick, t, quickBuyLabel, func(ctx context.Context) error {
		if on == nil {
			return nil
		}
		return on(ctx)
	})
}

func (q *QuickActions) OpenDialog() {
	q.dialog = true
	q.form.reset()
	q.guard.ClearErr()
}

func (q *QuickActions) CloseDialog() {
	q.dialog = false
	q.form.reset()
	q.guard.ClearErr()
}

// Submit sends the deposit request; it is a no-op while CanSubmit is false.
func (q *QuickActions) Submit() tea.Cmd {
	if !q.CanSubmit() {
		return nil
	}
	cents, _ := money.ParsePositive(q.form.value(depositFieldAmt))
	notes := strings.TrimSpace(q.form.value(depositFieldNts))
	t, ok := q.guard.Begin(keyDeposit)
	if !ok {
		return nil
	}
	on := q.OnAddFunds
	return q.ctx.call(targetQuick, t, addFundsTitle, func(ctx context.Context) error {
		if on == nil {
			return nil
		}
		return on(ctx, cents, notes)
	})
}

func (q *QuickActions) Update(msg tea.KeyMsg) tea.Cmd {
	if q.dialog {
		switch {
		case key.Matches(msg, keys.Cancel):
			q.CloseDialog()
			return nil
		case key.Matches(msg, keys.NextFld):
			q.form.next()
			return nil
		case key.Matches(msg, keys.Confirm):
			return q.Submit()
		}
		return q.form.update(msg)
	}
	switch {
	case key.Matches(msg, keys.Buy):
		return q.Purchase()
	case key.Matches(msg, keys.AddFunds):
		q.OpenDialog()
	}
	return nil
}

// Settle returns the guard to idle; a successful deposit closes the dialog.
func (q *QuickActions) Settle(m settledMsg) bool {
	if !q.guard.Settle(m.result.Ticket, m.result.Err) {
		return false
	}
	if m.result.Ticket.Key == keyDeposit && m.result.OK() {
		q.CloseDialog()
	}
	return true
}

func (q *QuickActions) View(width int, focused bool) string {
	c := q.ctx
	price := c.Styles.Muted.Render(c.Money.Abs(q.PriceCents))
	if q.Loading {
		price = c.Styles.Muted.Render(loadingText)
	}
	lines := []string{
		c.button("b", quickBuyLabel, q.CanPurchase(), q.guard.InFlight(keyPurchase)) + "  " + price,
		c.button("f", addFundsTitle, !q.guard.Pending(), q.guard.InFlight(keyDeposit)),
	}
	return c.card(quickBuyLabel, "", strings.Join(lines, "\n"), focused, width)
}

// DialogView is the add-funds dialog body; the shell overlays it.
func (q *QuickActions) DialogView() string {
	c := q.ctx
	lines := []string{
		c.Styles.Title.Render(addFundsTitle),
		"",
		amountLabel,
		q.form.inputs[depositFieldAmt].View(),
		depositNotes,
		q.form.inputs[depositFieldNts].View(),
		"",
		c.button("enter", submitRequest, q.CanSubmit(), q.guard.InFlight(keyDeposit)) + "  " + c.button("esc", cancelLabel, true, false),
	}
	if err := q.guard.ErrFor(keyDeposit); err != nil {
		lines = append(lines, c.Styles.Error.Render(action.Classify(err).Message()))
	}
	return strings.Join(lines, "\n")
}
