package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/canteen/internal/money"
	"github.com/jask/canteen/internal/prefs"
)

func testContext() *AppContext {
	return NewAppContext(context.Background(), prefs.ThemeLight, money.Formatter{}, time.UTC, true, 0)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(update func(tea.KeyMsg) tea.Cmd, s string) {
	for _, r := range s {
		update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// mustSettle runs a widget command and returns its settlement.
func mustSettle(t *testing.T, cmd tea.Cmd) settledMsg {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command, got nil")
	}
	m, ok := cmd().(settledMsg)
	if !ok {
		t.Fatalf("expected settledMsg")
	}
	return m
}

// withErr rewrites a settlement as a failure.
func withErr(m settledMsg, err error) settledMsg {
	m.result.Err = err
	return m
}
