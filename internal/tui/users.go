package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/canteen/internal/action"
	"github.com/jask/canteen/internal/database/repository"
	"github.com/jask/canteen/internal/money"
)

const (
	usersTitle      = "ניהול משתמשים"
	noActiveUsers   = "אין משתמשים פעילים"
	adminBadge      = "מנהל"
	editTitle       = "עריכת יתרה"
	directionLabel  = "סוג פעולה"
	directionAdd    = "הוספה"
	directionRemove = "הורדה"
	noteLabel       = "הערה"
	saveLabel       = "שמור"
	deleteTitle     = "מחיקת משתמש"
	deleteConfirm   = "אני מאשר את מחיקת המשתמש"
	deleteLabel     = "מחק משתמש"
	deleteWarning   = "פעולה זו תמחק את המשתמש וכל הנתונים הקשורים אליו. לא ניתן לבטל פעולה זו."
	searchLabel     = "חיפוש"
	noMatches       = "לא נמצאו משתמשים"
	keyEditBalance  = "balance"
	keyDeleteUser   = "delete"
)

type userDialog int

const (
	dialogNone userDialog = iota
	dialogBalance
	dialogDelete
)

const (
	balanceFieldDirection = iota
	balanceFieldAmount
	balanceFieldNotes
)

// UserManagement lists active users with their balances and hosts the
// balance edit and delete dialogs.
type UserManagement struct {
	ctx      *AppContext
	Users    []repository.Profile
	Balances map[string]int64
	Loading  bool

	OnEditBalance func(ctx context.Context, user repository.Profile, signedCents int64, notes string) error
	OnDeleteUser  func(ctx context.Context, user repository.Profile) error

	cursor    int
	searching bool
	search    textinput.Model

	dialog   userDialog
	selected repository.Profile
	remove   bool
	field    int
	form     form // amount, notes
	confirm  bool
	guard    action.Guard
}

func NewUserManagement(ctx *AppContext) *UserManagement {
	return &UserManagement{
		ctx:     ctx,
		Loading: true,
		search:  newInput("", 40),
		form:    newForm(newInput("0.00", 10), newInput("", 120)),
	}
}

// SetUsers takes a fresh list and the balance lookup.
func (u *UserManagement) SetUsers(users []repository.Profile, balances map[string]int64) {
	u.Users = users
	u.Balances = balances
	u.Loading = false
	if n := len(u.Visible()); u.cursor >= n {
		u.cursor = max(0, n-1)
	}
}

// BalanceOf defaults to zero for users without ledger rows.
func (u *UserManagement) BalanceOf(id string) int64 { return u.Balances[id] }

// Visible applies the search filter, best match first.
func (u *UserManagement) Visible() []repository.Profile {
	query := u.search.Value()
	if strings.TrimSpace(query) == "" {
		return u.Users
	}
	type scored struct {
		p     repository.Profile
		score int
	}
	var hits []scored
	for _, p := range u.Users {
		if s, ok := matchScore(query, p); ok {
			hits = append(hits, scored{p, s})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score < hits[j].score })
	out := make([]repository.Profile, len(hits))
	for i, h := range hits {
		out[i] = h.p
	}
	return out
}

// matchScore compares the query against name words, the full name and the
// email. Substrings score 0; otherwise the edit distance to the best prefix
// must stay within a third of the query length.
func matchScore(query string, p repository.Profile) (int, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0, true
	}
	name := strings.ToLower(p.FullName)
	email := strings.ToLower(p.Email)
	fields := append(strings.Fields(name), name, email)
	if local, _, ok := strings.Cut(email, "@"); ok {
		fields = append(fields, local)
	}
	qlen := utf8.RuneCountInString(q)
	best := -1
	for _, f := range fields {
		if f == "" {
			continue
		}
		if strings.Contains(f, q) {
			return 0, true
		}
		d := levenshtein.ComputeDistance(q, runePrefix(f, qlen))
		if best < 0 || d < best {
			best = d
		}
	}
	return best, best >= 0 && best <= max(1, qlen/3)
}

func runePrefix(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func (u *UserManagement) Selected() (repository.Profile, bool) {
	list := u.Visible()
	if len(list) == 0 {
		return repository.Profile{}, false
	}
	return list[min(u.cursor, len(list)-1)], true
}

// Capturing reports whether a dialog or the search field owns the keyboard.
func (u *UserManagement) Capturing() bool { return u.dialog != dialogNone || u.searching }

func (u *UserManagement) DialogOpen() bool { return u.dialog != dialogNone }

func (u *UserManagement) OpenEditBalance(p repository.Profile) {
	u.resetDialog()
	u.selected = p
	u.dialog = dialogBalance
	u.field = balanceFieldAmount
	u.form.focusAt(0)
}

func (u *UserManagement) OpenDelete(p repository.Profile) {
	u.resetDialog()
	u.selected = p
	u.dialog = dialogDelete
}

// dialogKey names the call the open dialog submits.
func (u *UserManagement) dialogKey() string {
	switch u.dialog {
	case dialogBalance:
		return u.selected.ID + ":" + keyEditBalance
	case dialogDelete:
		return u.selected.ID + ":" + keyDeleteUser
	}
	return ""
}

// CloseDialog dismisses either dialog and clears every field.
func (u *UserManagement) CloseDialog() { u.resetDialog() }

func (u *UserManagement) resetDialog() {
	u.dialog = dialogNone
	u.selected = repository.Profile{}
	u.remove = false
	u.field = balanceFieldDirection
	u.form.reset()
	u.confirm = false
	u.guard.ClearErr()
}

func (u *UserManagement) SetRemove(remove bool) { u.remove = remove }

func (u *UserManagement) ToggleConfirm() { u.confirm = !u.confirm }

func (u *UserManagement) Confirmed() bool { return u.confirm }

// signedAmount is the delta a balance submission would send.
func (u *UserManagement) signedAmount() (int64, bool) {
	cents, ok := money.ParsePositive(u.form.value(0))
	if !ok {
		return 0, false
	}
	if u.remove {
		cents = -cents
	}
	return cents, true
}

func (u *UserManagement) CanSaveBalance() bool {
	_, ok := u.signedAmount()
	return ok && !u.guard.Pending()
}

func (u *UserManagement) CanDelete() bool { return u.confirm && !u.guard.Pending() }

func (u *UserManagement) SubmitBalance() tea.Cmd {
	if u.dialog != dialogBalance || !u.CanSaveBalance() {
		return nil
	}
	delta, _ := u.signedAmount()
	notes := strings.TrimSpace(u.form.value(1))
	user := u.selected
	t, ok := u.guard.Begin(u.dialogKey())
	if !ok {
		return nil
	}
	on := u.OnEditBalance
	return u.ctx.call(targetManage, t, editTitle, func(ctx context.Context) error {
		if on == nil {
			return nil
		}
		return on(ctx, user, delta, notes)
	})
}

func (u *UserManagement) SubmitDelete() tea.Cmd {
	if u.dialog != dialogDelete || !u.CanDelete() {
		return nil
	}
	user := u.selected
	t, ok := u.guard.Begin(u.dialogKey())
	if !ok {
		return nil
	}
	on := u.OnDeleteUser
	return u.ctx.call(targetManage, t, deleteTitle, func(ctx context.Context) error {
		if on == nil {
			return nil
		}
		return on(ctx, user)
	})
}

func (u *UserManagement) Update(msg tea.KeyMsg) tea.Cmd {
	switch u.dialog {
	case dialogBalance:
		return u.updateBalance(msg)
	case dialogDelete:
		return u.updateDelete(msg)
	}
	if u.searching {
		switch {
		case key.Matches(msg, keys.Cancel):
			u.searching = false
			u.search.SetValue("")
			u.search.Blur()
			u.cursor = 0
			return nil
		case key.Matches(msg, keys.Confirm), key.Matches(msg, keys.NextFld):
			u.searching = false
			u.search.Blur()
			return nil
		}
		var cmd tea.Cmd
		u.search, cmd = u.search.Update(msg)
		u.cursor = 0
		return cmd
	}
	switch {
	case key.Matches(msg, keys.Up):
		if u.cursor > 0 {
			u.cursor--
		}
	case key.Matches(msg, keys.Down):
		if u.cursor < len(u.Visible())-1 {
			u.cursor++
		}
	case key.Matches(msg, keys.Search):
		u.searching = true
		u.search.Focus()
	case key.Matches(msg, keys.Edit):
		if p, ok := u.Selected(); ok {
			u.OpenEditBalance(p)
		}
	case key.Matches(msg, keys.Delete):
		if p, ok := u.Selected(); ok {
			u.OpenDelete(p)
		}
	}
	return nil
}

func (u *UserManagement) updateBalance(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Cancel):
		u.CloseDialog()
		return nil
	case key.Matches(msg, keys.Confirm):
		return u.SubmitBalance()
	case msg.Type == tea.KeyTab:
		u.field = (u.field + 1) % 3
		u.focusBalanceField()
		return nil
	case msg.Type == tea.KeyShiftTab:
		u.field = (u.field + 2) % 3
		u.focusBalanceField()
		return nil
	}
	if u.field == balanceFieldDirection {
		switch msg.String() {
		case " ", "left", "right", "h", "l":
			u.remove = !u.remove
		}
		return nil
	}
	return u.form.update(msg)
}

func (u *UserManagement) focusBalanceField() {
	switch u.field {
	case balanceFieldAmount:
		u.form.focusAt(0)
	case balanceFieldNotes:
		u.form.focusAt(1)
	default:
		for i := range u.form.inputs {
			u.form.inputs[i].Blur()
		}
	}
}

func (u *UserManagement) updateDelete(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Cancel):
		u.CloseDialog()
	case key.Matches(msg, keys.Toggle):
		u.ToggleConfirm()
	case key.Matches(msg, keys.Confirm):
		return u.SubmitDelete()
	}
	return nil
}

// Settle closes the dialog that made the call on success; on failure it stays
// open as filled in. A dialog opened since then is left alone.
func (u *UserManagement) Settle(m settledMsg) bool {
	if !u.guard.Settle(m.result.Ticket, m.result.Err) {
		return false
	}
	if m.result.OK() && u.DialogOpen() && m.result.Ticket.Key == u.dialogKey() {
		u.CloseDialog()
	}
	return true
}

func (u *UserManagement) View(width int, focused bool) string {
	x := u.ctx
	var header []string
	if u.searching || u.search.Value() != "" {
		header = append(header, searchLabel+" "+u.search.View())
	}
	switch {
	case u.Loading:
		return x.card(usersTitle, "", x.Styles.Muted.Render(loadingText), focused, width)
	case len(u.Users) == 0:
		return x.card(usersTitle, "", x.Styles.Muted.Render(noActiveUsers), focused, width)
	}
	list := u.Visible()
	if len(list) == 0 {
		header = append(header, x.Styles.Muted.Render(noMatches))
	}
	lines := header
	for i, p := range list {
		bal := u.BalanceOf(p.ID)
		_, tone := balanceTone(bal)
		figure := x.Money.Abs(bal)
		if bal < 0 {
			figure = "-" + figure
		}
		row := x.Styles.Text.Render(displayName(p.FullName)) + "  " + x.Styles.Muted.Render(p.Email)
		if p.IsAdmin() {
			row += "  " + x.Styles.Badge.Render(adminBadge)
		}
		row += "  " + x.Styles.Tone(tone).Render(figure)
		if focused && i == u.cursor {
			row = x.Styles.Selected.Render(row)
		}
		lines = append(lines, row)
	}
	lines = append(lines, x.Styles.Muted.Render(helpLine(keys.Edit, keys.Delete, keys.Search)))
	return x.card(usersTitle, fmt.Sprintf("(%d)", len(u.Users)), strings.Join(lines, "\n"), focused, width)
}

// DialogView renders whichever dialog is open.
func (u *UserManagement) DialogView() string {
	switch u.dialog {
	case dialogBalance:
		return u.balanceDialogView()
	case dialogDelete:
		return u.deleteDialogView()
	}
	return ""
}

func (u *UserManagement) balanceDialogView() string {
	x := u.ctx
	add, rem := "( ) "+directionAdd, "( ) "+directionRemove
	if u.remove {
		rem = "(•) " + directionRemove
	} else {
		add = "(•) " + directionAdd
	}
	dir := add + "   " + rem
	if u.field == balanceFieldDirection {
		dir = x.Styles.Selected.Render(dir)
	}
	lines := []string{
		x.Styles.Title.Render(editTitle + " - " + displayName(u.selected.FullName)),
		"",
		directionLabel,
		dir,
		amountLabel,
		u.form.inputs[0].View(),
		noteLabel,
		u.form.inputs[1].View(),
		"",
		x.button("enter", saveLabel, u.CanSaveBalance(), u.guard.Pending()) + "  " + x.button("esc", cancelLabel, true, false),
	}
	return u.withError(lines)
}

func (u *UserManagement) deleteDialogView() string {
	x := u.ctx
	box := "[ ] "
	if u.confirm {
		box = "[x] "
	}
	lines := []string{
		x.Styles.Error.Render(deleteTitle),
		"",
		"האם אתה בטוח שברצונך למחוק את המשתמש " + x.Styles.Title.Render(displayName(u.selected.FullName)) + "?",
		x.Styles.Muted.Render(deleteWarning),
		"",
		box + deleteConfirm,
		"",
		x.button("enter", deleteLabel, u.CanDelete(), u.guard.Pending()) + "  " + x.button("esc", cancelLabel, true, false),
	}
	return u.withError(lines)
}

func (u *UserManagement) withError(lines []string) string {
	if err := u.guard.ErrFor(u.dialogKey()); err != nil {
		lines = append(lines, u.ctx.Styles.Error.Render(action.Classify(err).Message()))
	}
	return strings.Join(lines, "\n")
}
