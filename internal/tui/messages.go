package tui

import (
	"github.com/jask/canteen/internal/action"
	"github.com/jask/canteen/internal/database/repository"
	"github.com/jask/canteen/internal/service"
)

// target names the widget a settled call belongs to.
type target string

const (
	targetQuick     target = "quick"
	targetInventory target = "inventory"
	targetPrice     target = "price"
	targetUsersQ    target = "pending_users"
	targetDepositsQ target = "pending_deposits"
	targetManage    target = "manage"
	targetLogin     target = "login"
	targetLogout    target = "logout"
)

type settledMsg struct {
	to      target
	session uint64
	label   string
	result  action.Result
}

// Loads and settlements carry the session they were issued under; the shell
// drops any that arrive after that session ended.

type dashboardMsg struct {
	session uint64
	data    service.Dashboard
}

type adminBoardMsg struct {
	session uint64
	data    service.AdminBoard
}

type profileMsg struct {
	session uint64
	profile repository.Profile
}

// sessionEndedMsg means the profile is gone or signed out.
type sessionEndedMsg struct {
	session uint64
}

type themeSavedMsg struct {
	err error
}

type errMsg struct {
	session uint64
	error
}
