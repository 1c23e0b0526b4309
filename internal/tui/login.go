package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/canteen/internal/action"
	"github.com/jask/canteen/internal/database/repository"
	"github.com/jask/canteen/internal/service"
)

const (
	brand          = "שק״מ"
	loginTitle     = "כניסה"
	emailLabel     = "דוא״ל"
	fullNameLabel  = "שם מלא"
	signInLabel    = "כניסה"
	registerLabel  = "הרשמה"
	registerPrompt = "משתמש חדש? הזן שם מלא להרשמה"
)

type loginMsg struct {
	ticket  action.Ticket
	profile repository.Profile
	err     error
}

// LoginScreen signs in by email; an unknown email switches to registration.
type LoginScreen struct {
	ctx *AppContext

	OnSignIn   func(ctx context.Context, email string) (repository.Profile, error)
	OnRegister func(ctx context.Context, email, fullName string) (repository.Profile, error)

	form     form // email, full name
	register bool
	guard    action.Guard
}

func NewLoginScreen(ctx *AppContext) *LoginScreen {
	return &LoginScreen{ctx: ctx, form: newForm(newInput("name@example.com", 120), newInput("", 80))}
}

func (l *LoginScreen) Registering() bool { return l.register }

func (l *LoginScreen) Reset() {
	l.register = false
	l.form.reset()
	l.guard.ClearErr()
}

func (l *LoginScreen) Submit() tea.Cmd {
	email := strings.TrimSpace(l.form.value(0))
	name := strings.TrimSpace(l.form.value(1))
	if email == "" || (l.register && name == "") {
		return nil
	}
	op := "signin"
	if l.register {
		op = "register"
	}
	t, ok := l.guard.Begin(op)
	if !ok {
		return nil
	}
	register, signIn, reg := l.register, l.OnSignIn, l.OnRegister
	parent, timeout := l.ctx.Ctx, l.ctx.Timeout
	return func() tea.Msg {
		ctx := parent
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(parent, timeout)
			defer cancel()
		}
		var p repository.Profile
		var err error
		switch {
		case register && reg != nil:
			p, err = reg(ctx, email, name)
		case !register && signIn != nil:
			p, err = signIn(ctx, email)
		default:
			err = service.ErrNotFound
		}
		return loginMsg{ticket: t, profile: p, err: err}
	}
}

// Settle reports the signed-in profile on success. An unknown email moves
// the screen to registration.
func (l *LoginScreen) Settle(m loginMsg) (repository.Profile, bool) {
	if !l.guard.Settle(m.ticket, m.err) {
		return repository.Profile{}, false
	}
	if m.err == nil {
		l.Reset()
		return m.profile, true
	}
	if !l.register && errors.Is(m.err, service.ErrNotFound) {
		l.register = true
		l.guard.ClearErr()
		l.form.focusAt(1)
	}
	return repository.Profile{}, false
}

func (l *LoginScreen) Update(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Confirm):
		return l.Submit()
	case key.Matches(msg, keys.Cancel):
		if l.register {
			l.register = false
			l.form.inputs[1].SetValue("")
			l.form.focusAt(0)
		}
		return nil
	case key.Matches(msg, keys.NextFld):
		if l.register {
			l.form.next()
		}
		return nil
	}
	return l.form.update(msg)
}

func (l *LoginScreen) View(width int) string {
	x := l.ctx
	lines := []string{
		x.Styles.Title.Render(brand),
		"",
		emailLabel,
		l.form.inputs[0].View(),
	}
	label := signInLabel
	if l.register {
		label = registerLabel
		lines = append(lines, "", x.Styles.Notice.UnsetPadding().Render(registerPrompt), fullNameLabel, l.form.inputs[1].View())
	}
	lines = append(lines, "", x.button("enter", label, !l.guard.Pending(), l.guard.Pending()))
	if err := l.guard.Err(); err != nil {
		lines = append(lines, x.Styles.Error.Render(failureText(err)))
	}
	return x.card(loginTitle, "", strings.Join(lines, "\n"), true, min(width, 60))
}
