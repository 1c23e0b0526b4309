package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/canteen/internal/action"
)

const (
	inventoryTitle = "מלאי"
	unitsInStock   = "יחידות במלאי"
	stepLabel      = "כמות"
)

// InventoryControl adjusts the stock count by a user-chosen step.
type InventoryControl struct {
	ctx     *AppContext
	Stock   int64
	Loading bool

	OnAdjust func(ctx context.Context, delta int64) error

	step  textinput.Model
	guard action.Guard
}

func NewInventoryControl(ctx *AppContext) *InventoryControl {
	step := newInput("1", 5)
	step.SetValue("1")
	step.Focus()
	return &InventoryControl{ctx: ctx, Loading: true, step: step}
}

// clampStep reads a step; zero, negative and non-numeric input all mean 1.
func clampStep(text string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func (c *InventoryControl) Step() int64 { return clampStep(c.step.Value()) }

// SetStepText replaces the raw step entry.
func (c *InventoryControl) SetStepText(text string) { c.step.SetValue(text) }

func (c *InventoryControl) Enabled() bool { return !c.Loading && !c.guard.Pending() }

func (c *InventoryControl) Adjust(sign int64) tea.Cmd {
	if !c.Enabled() {
		return nil
	}
	delta := sign * c.Step()
	t, ok := c.guard.Begin(fmt.Sprintf("%+d", delta))
	if !ok {
		return nil
	}
	on := c.OnAdjust
	return c.ctx.call(targetInventory, t, inventoryTitle, func(ctx context.Context) error {
		if on == nil {
			return nil
		}
		return on(ctx, delta)
	})
}

func (c *InventoryControl) Update(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Inc):
		return c.Adjust(1)
	case key.Matches(msg, keys.Dec):
		return c.Adjust(-1)
	}
	if digits(msg) || msg.Type == tea.KeyBackspace || msg.Type == tea.KeyDelete {
		var cmd tea.Cmd
		c.step, cmd = c.step.Update(msg)
		return cmd
	}
	return nil
}

// digits reports whether msg types only 0-9.
func digits(msg tea.KeyMsg) bool {
	if msg.Type != tea.KeyRunes || len(msg.Runes) == 0 {
		return false
	}
	for _, r := range msg.Runes {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (c *InventoryControl) Settle(m settledMsg) bool {
	if !c.guard.Settle(m.result.Ticket, m.result.Err) {
		return false
	}
	c.step.SetValue(strconv.FormatInt(c.Step(), 10))
	return true
}

func (c *InventoryControl) View(width int, focused bool) string {
	x := c.ctx
	figure := x.Styles.Big.Render(strconv.FormatInt(c.Stock, 10))
	if c.Loading {
		figure = x.Styles.Muted.Render(loadingText)
	}
	enabled := c.Enabled()
	busy := c.guard.Pending()
	lines := []string{
		figure,
		x.Styles.Muted.Render(unitsInStock),
		x.button("-", "", enabled, busy) + "  " + stepLabel + " " + c.step.View() + "  " + x.button("+", "", enabled, busy),
	}
	return x.card(inventoryTitle, "", strings.Join(lines, "\n"), focused, width)
}
