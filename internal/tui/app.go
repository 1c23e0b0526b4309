package tui

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/canteen/internal/action"
	"github.com/jask/canteen/internal/database/repository"
	"github.com/jask/canteen/internal/prefs"
	"github.com/jask/canteen/internal/service"
	"github.com/jask/canteen/widgets"
)

// Ledger is the backend surface the widgets call into.
type Ledger interface {
	LoadDashboard(ctx context.Context, profileID string, recentLimit int) (service.Dashboard, error)
	LoadAdminBoard(ctx context.Context, activityLimit int) (service.AdminBoard, error)
	Purchase(ctx context.Context, profileID string) error
	RequestDeposit(ctx context.Context, profileID string, amountCents int64, notes string) error
	ApproveDeposit(ctx context.Context, actorID, depositID string) error
	DenyDeposit(ctx context.Context, actorID, depositID string) error
	ApproveUser(ctx context.Context, actorID, profileID string) error
	DenyUser(ctx context.Context, actorID, profileID string) error
	AdjustInventory(ctx context.Context, actorID string, delta int64) error
	SetPrice(ctx context.Context, actorID string, priceCents int64) error
	EditBalance(ctx context.Context, actorID, profileID string, deltaCents int64, notes string) error
	DeleteUser(ctx context.Context, actorID, profileID string) error
}

// Sessions is the sign-in surface.
type Sessions interface {
	SignIn(ctx context.Context, email string) (repository.Profile, error)
	Register(ctx context.Context, email, fullName string) (repository.Profile, error)
	Current() (repository.Profile, bool)
	Refresh(ctx context.Context) (repository.Profile, error)
	Logout(ctx context.Context) error
}

// ThemeStore persists the theme preference.
type ThemeStore interface {
	SaveTheme(prefs.Theme) error
}

// Options are the list limits read from config.
type Options struct {
	RecentLimit   int
	ActivityLimit int
}

type page string

const (
	pageDashboard page = "dashboard"
	pageAdmin     page = "admin"
)

const (
	navDashboard  = "ראשי"
	navAdmin      = "ניהול"
	navLogout     = "התנתק"
	navTheme      = "ערכת צבעים"
	pendingNotice = "החשבון ממתין לאישור מנהל"
	loadFailed    = "שגיאה בטעינת נתונים"
	themeFailed   = "שמירת ערכת הצבעים נכשלה"
)

// admin panes in focus order
const (
	paneInventory = iota
	panePrice
	panePendingUsers
	panePendingDeposits
	paneUsers
	paneCount
)

type menuItem struct {
	label string
	run   func(a *App) tea.Cmd
}

// App is the navigation shell: sign-in, the two pages, menu and dialogs.
type App struct {
	ctx      *AppContext
	ledger   Ledger
	sessions Sessions
	themes   ThemeStore
	opts     Options

	width  int
	height int
	page   page
	focus  int
	banner string

	menuOpen   bool
	menuCursor int
	logout     action.Guard

	login           *LoginScreen
	balance         *BalanceCard
	recent          *RecentTransactions
	quick           *QuickActions
	inventory       *InventoryControl
	price           *PriceControl
	pendingUsers    *ApprovalQueue[repository.Profile]
	pendingDeposits *ApprovalQueue[repository.Transaction]
	users           *UserManagement
	activity        *ActivityLog
}

// New wires the widgets to the backend. A session already present in
// sessions is picked up directly.
func New(ctx *AppContext, ledger Ledger, sessions Sessions, themes ThemeStore, opts Options) *App {
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = 10
	}
	if opts.ActivityLimit <= 0 {
		opts.ActivityLimit = 50
	}
	a := &App{
		ctx:      ctx,
		ledger:   ledger,
		sessions: sessions,
		themes:   themes,
		opts:     opts,
		page:     pageDashboard,
	}
	if p, ok := sessions.Current(); ok {
		ctx.SetProfile(p, true)
	}
	a.build()
	return a
}

func (a *App) build() {
	c := a.ctx
	a.login = NewLoginScreen(c)
	a.login.OnSignIn = a.sessions.SignIn
	a.login.OnRegister = a.sessions.Register

	a.balance = NewBalanceCard(c)
	a.recent = NewRecentTransactions(c)
	a.quick = NewQuickActions(c)
	a.quick.OnPurchase = func(ctx context.Context) error {
		return a.ledger.Purchase(ctx, c.ActorID())
	}
	a.quick.OnAddFunds = func(ctx context.Context, cents int64, notes string) error {
		return a.ledger.RequestDeposit(ctx, c.ActorID(), cents, notes)
	}

	a.inventory = NewInventoryControl(c)
	a.inventory.OnAdjust = func(ctx context.Context, delta int64) error {
		return a.ledger.AdjustInventory(ctx, c.ActorID(), delta)
	}
	a.price = NewPriceControl(c)
	a.price.OnSave = func(ctx context.Context, cents int64) error {
		return a.ledger.SetPrice(ctx, c.ActorID(), cents)
	}
	a.pendingUsers = NewPendingUsers(c)
	a.pendingUsers.OnApprove = func(ctx context.Context, p repository.Profile) error {
		return a.ledger.ApproveUser(ctx, c.ActorID(), p.ID)
	}
	a.pendingUsers.OnDeny = func(ctx context.Context, p repository.Profile) error {
		return a.ledger.DenyUser(ctx, c.ActorID(), p.ID)
	}
	a.pendingDeposits = NewPendingDeposits(c)
	a.pendingDeposits.OnApprove = func(ctx context.Context, t repository.Transaction) error {
		return a.ledger.ApproveDeposit(ctx, c.ActorID(), t.ID)
	}
	a.pendingDeposits.OnDeny = func(ctx context.Context, t repository.Transaction) error {
		return a.ledger.DenyDeposit(ctx, c.ActorID(), t.ID)
	}
	a.users = NewUserManagement(c)
	a.users.OnEditBalance = func(ctx context.Context, u repository.Profile, delta int64, notes string) error {
		return a.ledger.EditBalance(ctx, c.ActorID(), u.ID, delta, notes)
	}
	a.users.OnDeleteUser = func(ctx context.Context, u repository.Profile) error {
		return a.ledger.DeleteUser(ctx, c.ActorID(), u.ID)
	}
	a.activity = NewActivityLog(c)
}

func (a *App) active() bool {
	return a.ctx.SignedIn() && a.ctx.Profile().IsActive()
}

func (a *App) isAdmin() bool { return a.active() && a.ctx.Profile().IsAdmin() }

func (a *App) Init() tea.Cmd {
	if !a.ctx.SignedIn() {
		return nil
	}
	return a.refresh()
}

// refresh reloads the session and whatever the current profile may see.
func (a *App) refresh() tea.Cmd {
	if !a.ctx.SignedIn() {
		return nil
	}
	cmds := []tea.Cmd{a.refreshSession()}
	if a.active() {
		cmds = append(cmds, a.loadDashboard())
	}
	if a.isAdmin() {
		cmds = append(cmds, a.loadAdminBoard())
	}
	return tea.Batch(cmds...)
}

func (a *App) refreshSession() tea.Cmd {
	ctx, gen := a.ctx.Ctx, a.ctx.Session()
	return func() tea.Msg {
		p, err := a.sessions.Refresh(ctx)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return sessionEndedMsg{session: gen}
			}
			return errMsg{session: gen, error: err}
		}
		return profileMsg{session: gen, profile: p}
	}
}

func (a *App) loadDashboard() tea.Cmd {
	ctx, gen, id, limit := a.ctx.Ctx, a.ctx.Session(), a.ctx.ActorID(), a.opts.RecentLimit
	return func() tea.Msg {
		d, err := a.ledger.LoadDashboard(ctx, id, limit)
		if err != nil {
			return errMsg{session: gen, error: err}
		}
		return dashboardMsg{session: gen, data: d}
	}
}

func (a *App) loadAdminBoard() tea.Cmd {
	ctx, gen, limit := a.ctx.Ctx, a.ctx.Session(), a.opts.ActivityLimit
	return func() tea.Msg {
		b, err := a.ledger.LoadAdminBoard(ctx, limit)
		if err != nil {
			return errMsg{session: gen, error: err}
		}
		return adminBoardMsg{session: gen, data: b}
	}
}

func (a *App) saveTheme(t prefs.Theme) tea.Cmd {
	store := a.themes
	return func() tea.Msg {
		if store == nil {
			return themeSavedMsg{}
		}
		return themeSavedMsg{err: store.SaveTheme(t)}
	}
}

// ToggleTheme is the only path that writes the preference.
func (a *App) ToggleTheme() tea.Cmd {
	next := a.ctx.Theme.Toggle()
	a.ctx.SetTheme(next)
	return a.saveTheme(next)
}

func (a *App) Logout() tea.Cmd {
	t, ok := a.logout.Begin("logout")
	if !ok {
		return nil
	}
	a.menuOpen = false
	return a.ctx.call(targetLogout, t, navLogout, a.sessions.Logout)
}

// endSession returns the shell to the sign-in screen with fresh widgets.
func (a *App) endSession() {
	a.ctx.SetProfile(repository.Profile{}, false)
	a.page = pageDashboard
	a.focus = 0
	a.menuOpen = false
	a.build()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
	case tea.KeyMsg:
		return a, a.handleKey(m)
	case loginMsg:
		p, ok := a.login.Settle(m)
		if !ok {
			return a, nil
		}
		a.ctx.SetProfile(p, true)
		a.page = pageDashboard
		a.banner = ""
		return a, a.refresh()
	case settledMsg:
		return a, a.settle(m)
	case profileMsg:
		if !a.current(m.session) {
			return a, nil
		}
		wasActive := a.active()
		a.ctx.SetProfile(m.profile, true)
		if a.page == pageAdmin && !a.isAdmin() {
			a.page = pageDashboard
		}
		if !wasActive && a.active() {
			return a, a.refresh()
		}
	case sessionEndedMsg:
		if a.current(m.session) {
			a.endSession()
		}
	case dashboardMsg:
		if !a.current(m.session) {
			return a, nil
		}
		a.balance.Balance = m.data.Balance
		a.balance.Loading = false
		a.recent.Rows = m.data.Recent
		a.recent.Loading = false
		a.quick.PriceCents = m.data.PriceCents
		a.quick.Loading = false
	case adminBoardMsg:
		if !a.current(m.session) {
			return a, nil
		}
		a.inventory.Stock = m.data.Stock
		a.inventory.Loading = false
		a.price.SetPrice(m.data.PriceCents)
		a.pendingUsers.SetItems(m.data.PendingUsers)
		a.pendingDeposits.SetItems(m.data.PendingDeposits)
		a.users.SetUsers(m.data.ActiveUsers, m.data.Balances)
		a.activity.Rows = m.data.Activities
		a.activity.Loading = false
	case themeSavedMsg:
		if m.err != nil {
			log.Printf("save theme: %v", m.err)
			a.banner = themeFailed
		}
	case errMsg:
		if !a.current(m.session) {
			return a, nil
		}
		log.Printf("load: %v", m.error)
		a.banner = loadFailed
	}
	return a, nil
}

// current reports whether a result was issued under the open session.
func (a *App) current(gen uint64) bool { return a.ctx.SignedIn() && gen == a.ctx.Session() }

// settle routes a finished call back to its widget, surfaces failures and
// reloads the data every widget shows.
func (a *App) settle(m settledMsg) tea.Cmd {
	if !a.current(m.session) {
		return nil
	}
	var accepted bool
	switch m.to {
	case targetQuick:
		accepted = a.quick.Settle(m)
	case targetInventory:
		accepted = a.inventory.Settle(m)
	case targetPrice:
		accepted = a.price.Settle(m)
	case targetUsersQ:
		accepted = a.pendingUsers.Settle(m)
	case targetDepositsQ:
		accepted = a.pendingDeposits.Settle(m)
	case targetManage:
		accepted = a.users.Settle(m)
	case targetLogout:
		if !a.logout.Settle(m.result.Ticket, m.result.Err) {
			return nil
		}
		if !m.result.OK() {
			log.Printf("logout: %v", m.result.Err)
			a.banner = navLogout + ": " + failureText(m.result.Err)
			return nil
		}
		a.endSession()
		a.banner = ""
		return nil
	}
	if !accepted {
		return nil
	}
	if m.result.OK() {
		a.banner = ""
	} else {
		log.Printf("%s: %v", m.to, m.result.Err)
		a.banner = m.label + ": " + failureText(m.result.Err)
	}
	return a.refresh()
}

// Banner is the current error line, empty when the last call succeeded.
func (a *App) Banner() string { return a.banner }

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return tea.Quit
	}
	if !a.ctx.SignedIn() {
		return a.login.Update(msg)
	}
	if a.menuOpen {
		return a.handleMenuKey(msg)
	}
	if cmd, ok := a.handleCaptured(msg); ok {
		return cmd
	}
	switch {
	case key.Matches(msg, keys.Quit):
		return tea.Quit
	case key.Matches(msg, keys.Theme):
		return a.ToggleTheme()
	case key.Matches(msg, keys.Refresh):
		return a.refresh()
	case key.Matches(msg, keys.Logout):
		return a.Logout()
	case key.Matches(msg, keys.Menu):
		a.menuOpen = true
		a.menuCursor = 0
		return nil
	}
	if !a.active() {
		return nil
	}
	switch {
	case key.Matches(msg, keys.Dashboard):
		return a.navigate(pageDashboard)
	case key.Matches(msg, keys.Admin):
		return a.navigate(pageAdmin)
	}
	if a.page == pageDashboard {
		return a.quick.Update(msg)
	}
	switch {
	case key.Matches(msg, keys.NextPane):
		return a.moveFocus(1)
	case key.Matches(msg, keys.PrevPane):
		return a.moveFocus(-1)
	}
	return a.updateFocused(msg)
}

// handleCaptured forwards keys to a widget that has a dialog or field open.
func (a *App) handleCaptured(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case a.page == pageDashboard && a.quick.DialogOpen():
		return a.quick.Update(msg), true
	case a.page == pageAdmin && a.users.Capturing():
		return a.users.Update(msg), true
	case a.page == pageAdmin && a.price.Editing():
		return a.price.Update(msg), true
	}
	return nil, false
}

func (a *App) navigate(p page) tea.Cmd {
	if p == pageAdmin && !a.isAdmin() {
		return nil
	}
	var cmd tea.Cmd
	if a.page == pageAdmin && p != pageAdmin {
		cmd = a.price.Blur()
	}
	a.page = p
	a.menuOpen = false
	return tea.Batch(cmd, a.refresh())
}

func (a *App) moveFocus(delta int) tea.Cmd {
	var cmd tea.Cmd
	if a.focus == panePrice {
		cmd = a.price.Blur()
	}
	a.focus = (a.focus + delta + paneCount) % paneCount
	return cmd
}

func (a *App) updateFocused(msg tea.KeyMsg) tea.Cmd {
	switch a.focus {
	case paneInventory:
		return a.inventory.Update(msg)
	case panePrice:
		return a.price.Update(msg)
	case panePendingUsers:
		return a.pendingUsers.Update(msg)
	case panePendingDeposits:
		return a.pendingDeposits.Update(msg)
	case paneUsers:
		return a.users.Update(msg)
	}
	return nil
}

func (a *App) menuItems() []menuItem {
	var items []menuItem
	if a.active() {
		items = append(items, menuItem{navDashboard, func(a *App) tea.Cmd { return a.navigate(pageDashboard) }})
	}
	if a.isAdmin() {
		items = append(items, menuItem{navAdmin, func(a *App) tea.Cmd { return a.navigate(pageAdmin) }})
	}
	items = append(items,
		menuItem{navTheme, func(a *App) tea.Cmd { return a.ToggleTheme() }},
		menuItem{navLogout, func(a *App) tea.Cmd { return a.Logout() }},
	)
	return items
}

func (a *App) handleMenuKey(msg tea.KeyMsg) tea.Cmd {
	items := a.menuItems()
	switch {
	case key.Matches(msg, keys.Cancel), key.Matches(msg, keys.Menu):
		a.menuOpen = false
	case key.Matches(msg, keys.Up):
		if a.menuCursor > 0 {
			a.menuCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.menuCursor < len(items)-1 {
			a.menuCursor++
		}
	case key.Matches(msg, keys.Confirm):
		item := items[min(a.menuCursor, len(items)-1)]
		a.menuOpen = false
		return item.run(a)
	}
	return nil
}

// pane adapts a width-taking render func to widgets.Widget.
type pane func(width int) string

func (p pane) Render(width int) string { return p(width) }

func (a *App) View() string {
	width, height := a.width, a.height
	if width <= 0 {
		width = 100
	}
	if height <= 0 {
		height = 30
	}
	c := a.ctx
	if !c.SignedIn() {
		return widgets.VStack{Widgets: []widgets.Widget{pane(a.login.View)}}.Render(width)
	}
	var sections []widgets.Widget
	if a.active() {
		sections = append(sections, widgets.Text(a.navBar()))
	}
	if a.banner != "" {
		sections = append(sections, widgets.Text(c.Styles.Error.Render(a.banner)))
	}
	switch {
	case !a.active():
		sections = append(sections, widgets.Text(c.Styles.Notice.Render(pendingNotice)))
	case a.page == pageAdmin:
		sections = append(sections, a.adminPage()...)
	default:
		sections = append(sections, a.dashboardPage()...)
	}
	sections = append(sections, widgets.Text(c.Styles.Footer.Render(a.footer())))
	base := widgets.VStack{Widgets: sections, Spacing: 1}.Render(width)

	switch {
	case a.menuOpen:
		return widgets.RenderPopup(base, a.menuView(), width, height, c.Styles.Dialog)
	case a.page == pageDashboard && a.quick.DialogOpen():
		return widgets.RenderPopup(base, a.quick.DialogView(), width, height, c.Styles.Dialog)
	case a.page == pageAdmin && a.users.DialogOpen():
		return widgets.RenderPopup(base, a.users.DialogView(), width, height, c.Styles.Dialog)
	}
	return base
}

func (a *App) navBar() string {
	s := a.ctx.Styles
	tab := func(label string, p page) string {
		if a.page == p {
			return s.NavActive.Render(label)
		}
		return s.NavIdle.Render(label)
	}
	parts := []string{s.Title.Render(brand), tab(navDashboard, pageDashboard)}
	if a.isAdmin() {
		parts = append(parts, tab(navAdmin, pageAdmin))
	}
	parts = append(parts, s.Muted.Render(displayName(a.ctx.Profile().FullName)), s.NavIdle.Render("["+string(a.ctx.Theme)+"]"))
	return strings.Join(parts, "   ")
}

func (a *App) footer() string {
	bindings := []key.Binding{keys.Menu, keys.Theme, keys.Refresh, keys.Logout, keys.Quit}
	if a.active() {
		switch a.page {
		case pageAdmin:
			bindings = append([]key.Binding{keys.NextPane, keys.Dashboard}, bindings...)
		default:
			bindings = append([]key.Binding{keys.Buy, keys.AddFunds}, bindings...)
			if a.isAdmin() {
				bindings = append(bindings, keys.Admin)
			}
		}
	}
	return helpLine(bindings...)
}

func (a *App) dashboardPage() []widgets.Widget {
	top := widgets.HStack{
		Widgets: []widgets.Widget{
			pane(a.balance.View),
			pane(func(w int) string { return a.quick.View(w, true) }),
		},
		Ratios: []float64{1, 1},
		Gap:    1,
	}
	return []widgets.Widget{top, pane(a.recent.View)}
}

func (a *App) adminPage() []widgets.Widget {
	focused := func(i int) bool { return a.focus == i }
	controls := widgets.HStack{
		Widgets: []widgets.Widget{
			pane(func(w int) string { return a.inventory.View(w, focused(paneInventory)) }),
			pane(func(w int) string { return a.price.View(w, focused(panePrice)) }),
		},
		Ratios: []float64{1, 1},
		Gap:    1,
	}
	queues := widgets.HStack{
		Widgets: []widgets.Widget{
			pane(func(w int) string { return a.pendingUsers.View(w, focused(panePendingUsers)) }),
			pane(func(w int) string { return a.pendingDeposits.View(w, focused(panePendingDeposits)) }),
		},
		Ratios: []float64{1, 1},
		Gap:    1,
	}
	return []widgets.Widget{
		controls,
		queues,
		pane(func(w int) string { return a.users.View(w, focused(paneUsers)) }),
		pane(func(w int) string { return a.activity.View(w, false) }),
	}
}

func (a *App) menuView() string {
	s := a.ctx.Styles
	items := a.menuItems()
	lines := make([]string, 0, len(items)+2)
	lines = append(lines, s.Title.Render(brand), "")
	for i, it := range items {
		line := "  " + it.label
		if i == a.menuCursor {
			line = s.Selected.Render("› " + it.label)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func failureText(err error) string { return action.Classify(err).Message() }
