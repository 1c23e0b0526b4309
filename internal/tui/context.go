package tui

import (
	"context"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/canteen/internal/action"
	"github.com/jask/canteen/internal/database/repository"
	"github.com/jask/canteen/internal/money"
	"github.com/jask/canteen/internal/prefs"
	"github.com/jask/canteen/widgets"
)

// AppContext is built once at startup and shared by pointer with every widget.
// The session fields are guarded by mu; commands read them from their own
// goroutines.
type AppContext struct {
	Ctx context.Context

	mu       sync.RWMutex
	profile  repository.Profile
	signedIn bool
	session  uint64 // bumped whenever the signed-in identity changes

	Theme    prefs.Theme
	Styles   Styles
	Money    money.Formatter
	Location *time.Location
	RTL      bool
	Timeout  time.Duration // per-call bound; zero means none
}

// NewAppContext fills defaults for anything left zero.
func NewAppContext(ctx context.Context, theme prefs.Theme, fmtr money.Formatter, loc *time.Location, rtl bool, timeout time.Duration) *AppContext {
	if ctx == nil {
		ctx = context.Background()
	}
	if loc == nil {
		loc = time.Local
	}
	c := &AppContext{Ctx: ctx, Money: fmtr, Location: loc, RTL: rtl, Timeout: timeout}
	c.SetTheme(theme)
	return c
}

// SetProfile records the signed-in profile; signedIn false clears it.
func (c *AppContext) SetProfile(p repository.Profile, signedIn bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !signedIn {
		p = repository.Profile{}
	}
	if signedIn != c.signedIn || p.ID != c.profile.ID {
		c.session++
	}
	c.profile = p
	c.signedIn = signedIn
}

// Profile is the signed-in profile, zero when signed out.
func (c *AppContext) Profile() repository.Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profile
}

// Session identifies the current sign-in. Results issued under an older
// session are stale.
func (c *AppContext) Session() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *AppContext) SignedIn() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.signedIn
}

// ActorID is the signed-in profile id, safe to call from commands.
func (c *AppContext) ActorID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profile.ID
}

// SetTheme applies a theme and rebuilds the styles.
func (c *AppContext) SetTheme(t prefs.Theme) {
	if t != prefs.ThemeDark {
		t = prefs.ThemeLight
	}
	c.Theme = t
	c.Styles = NewStyles(t)
}

func (c *AppContext) align() lipgloss.Position {
	if c.RTL {
		return lipgloss.Right
	}
	return lipgloss.Left
}

func (c *AppContext) local(t time.Time) time.Time {
	return t.In(c.Location)
}

// card frames content the same way across pages.
func (c *AppContext) card(title, badge, content string, focused bool, width int) string {
	frame := c.Styles.Frame
	if focused {
		frame = c.Styles.Focused
	}
	return widgets.Card{
		Title:   title,
		Badge:   badge,
		Content: content,
		Frame:   frame,
		Header:  c.Styles.Title,
		Align:   c.align(),
	}.Render(width)
}

// button renders a keyed control, greyed out when disabled.
func (c *AppContext) button(keyHint, label string, enabled, busy bool) string {
	text := "[" + keyHint + "] " + label
	if busy {
		text += " " + spinnerGlyph
	}
	if !enabled {
		return c.Styles.Disabled.Render(text)
	}
	return c.Styles.Button.Render(text)
}

// call runs fn off the event loop and reports a settledMsg addressed to target.
func (c *AppContext) call(to target, t action.Ticket, label string, fn func(context.Context) error) tea.Cmd {
	parent, timeout, gen := c.Ctx, c.Timeout, c.Session()
	return func() tea.Msg {
		ctx := parent
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(parent, timeout)
			defer cancel()
		}
		var err error
		if fn != nil {
			err = fn(ctx)
		}
		return settledMsg{to: to, session: gen, label: label, result: action.Result{Ticket: t, Err: err}}
	}
}

const (
	spinnerGlyph = "…"
	loadingText  = "טוען" + spinnerGlyph
	noName       = "ללא שם"
)

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return noName
	}
	return name
}
