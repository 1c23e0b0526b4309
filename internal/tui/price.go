package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/canteen/internal/action"
	"github.com/jask/canteen/internal/money"
)

const (
	priceTitle = "מחיר יחידה"
	priceStep  = 50 // half a shekel
)

// PriceControl edits the unit price by half-shekel steps or direct entry.
type PriceControl struct {
	ctx    *AppContext
	server int64
	local  int64

	OnSave func(ctx context.Context, priceCents int64) error

	editing bool
	input   textinput.Model
	guard   action.Guard
}

func NewPriceControl(ctx *AppContext) *PriceControl {
	return &PriceControl{ctx: ctx, input: newInput("0.00", 10)}
}

// SetPrice takes a new server value and re-syncs the local one.
func (p *PriceControl) SetPrice(cents int64) {
	p.server = cents
	p.local = cents
	if !p.editing {
		p.input.SetValue(money.Decimal(cents))
	}
}

func (p *PriceControl) Local() int64 { return p.local }

func (p *PriceControl) Editing() bool { return p.editing }

func (p *PriceControl) CanDecrement() bool { return !p.guard.Pending() && p.local > priceStep }

func (p *PriceControl) CanIncrement() bool { return !p.guard.Pending() && p.local > 0 }

func (p *PriceControl) Decrement() tea.Cmd {
	if !p.CanDecrement() {
		return nil
	}
	return p.save(max(priceStep, p.local-priceStep))
}

func (p *PriceControl) Increment() tea.Cmd {
	if !p.CanIncrement() {
		return nil
	}
	return p.save(p.local + priceStep)
}

func (p *PriceControl) save(cents int64) tea.Cmd {
	if cents <= 0 {
		return nil
	}
	t, ok := p.guard.Begin("save")
	if !ok {
		return nil
	}
	p.local = cents
	on := p.OnSave
	return p.ctx.call(targetPrice, t, priceTitle, func(ctx context.Context) error {
		if on == nil {
			return nil
		}
		return on(ctx, cents)
	})
}

// StartEdit focuses the entry field.
func (p *PriceControl) StartEdit() {
	if p.guard.Pending() {
		return
	}
	p.editing = true
	p.input.SetValue(money.Decimal(p.local))
	p.input.CursorEnd()
	p.input.Focus()
}

// commit is the blur handler: a positive entry is saved, anything else is
// dropped without a call.
func (p *PriceControl) commit() tea.Cmd {
	p.editing = false
	p.input.Blur()
	cents, ok := money.ParsePositive(p.input.Value())
	if !ok {
		p.input.SetValue(money.Decimal(p.local))
		return nil
	}
	if cents == p.server {
		p.local = cents
		return nil
	}
	return p.save(cents)
}

func (p *PriceControl) Update(msg tea.KeyMsg) tea.Cmd {
	if p.editing {
		switch {
		case key.Matches(msg, keys.Confirm), key.Matches(msg, keys.NextFld), key.Matches(msg, keys.Cancel):
			return p.commit()
		}
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(msg)
		return cmd
	}
	switch {
	case key.Matches(msg, keys.Inc):
		return p.Increment()
	case key.Matches(msg, keys.Dec):
		return p.Decrement()
	case key.Matches(msg, keys.Edit):
		p.StartEdit()
	}
	return nil
}

// Blur commits a pending entry when focus leaves the control.
func (p *PriceControl) Blur() tea.Cmd {
	if !p.editing {
		return nil
	}
	return p.commit()
}

// Settle returns to idle; on failure the local value snaps back to the server's.
func (p *PriceControl) Settle(m settledMsg) bool {
	if !p.guard.Settle(m.result.Ticket, m.result.Err) {
		return false
	}
	if !m.result.OK() {
		p.local = p.server
		p.input.SetValue(money.Decimal(p.server))
	}
	return true
}

func (p *PriceControl) View(width int, focused bool) string {
	x := p.ctx
	busy := p.guard.Pending()
	value := x.Styles.Big.Render(x.Money.Abs(p.local))
	if p.editing {
		value = p.input.View()
	}
	lines := []string{
		x.button("-", "", p.CanDecrement(), busy) + "  " + value + "  " + x.button("+", "", p.CanIncrement(), busy),
		x.Styles.Muted.Render(helpLine(keys.Edit)),
	}
	return x.card(priceTitle, "", strings.Join(lines, "\n"), focused, width)
}
