// Package action implements the Idle -> Pending -> Idle machine shared by every
// async control. A Guard admits one in-flight call at a time; settlement
// returns it to Idle whether the call succeeded or failed, and keeps the
// failure so the caller can surface it.
package action

import (
	"context"
	"errors"

	"github.com/jask/canteen/internal/service"
)

// State of a guarded control.
type State int

const (
	Idle State = iota
	Pending
)

func (s State) String() string {
	if s == Pending {
		return "pending"
	}
	return "idle"
}

// Ticket identifies one admitted call.
type Ticket struct {
	Key string
	gen uint64
}

// Guard tracks at most one outstanding call for a widget or a whole queue.
// It is not safe for concurrent use; it lives on the UI event loop.
type Guard struct {
	state   State
	key     string
	gen     uint64
	lastKey string
	lastErr error
}

// Begin moves Idle -> Pending. It returns false, changing nothing, while a call
// is already outstanding.
func (g *Guard) Begin(key string) (Ticket, bool) {
	if g.state == Pending {
		return Ticket{}, false
	}
	g.gen++
	g.state = Pending
	g.key = key
	g.lastErr = nil
	return Ticket{Key: key, gen: g.gen}, true
}

// Settle moves Pending -> Idle for the matching ticket and records err.
// Stale or foreign tickets are ignored and Settle reports false.
func (g *Guard) Settle(t Ticket, err error) bool {
	if g.state != Pending || t.gen != g.gen {
		return false
	}
	g.state = Idle
	g.lastKey = g.key
	g.key = ""
	g.lastErr = err
	return true
}

func (g *Guard) State() State { return g.state }

func (g *Guard) Pending() bool { return g.state == Pending }

// InFlight reports whether the outstanding call was started by key.
func (g *Guard) InFlight(key string) bool { return g.state == Pending && g.key == key }

// Err returns the failure of the last settled call, if any.
func (g *Guard) Err() error { return g.lastErr }

// ErrFor is Err restricted to a call started with key.
func (g *Guard) ErrFor(key string) error {
	if g.lastKey != key {
		return nil
	}
	return g.lastErr
}

func (g *Guard) ClearErr() { g.lastErr = nil }

// Result is the typed outcome of one external call.
type Result struct {
	Ticket Ticket
	Err    error
}

func (r Result) OK() bool { return r.Err == nil }

// Failure classifies the error for display.
func (r Result) Failure() Failure { return Classify(r.Err) }

// Failure is a closed set of error classes the UI knows how to describe.
type Failure int

const (
	FailureNone Failure = iota
	FailureInvalid
	FailureNotFound
	FailureConflict
	FailureForbidden
	FailureOutOfStock
	FailureInsufficientFunds
	FailureTimeout
	FailureInternal
)

// Classify maps backend sentinel errors onto a Failure.
func Classify(err error) Failure {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, service.ErrInvalidAmount), errors.Is(err, service.ErrInvalidInput):
		return FailureInvalid
	case errors.Is(err, service.ErrNotFound):
		return FailureNotFound
	case errors.Is(err, service.ErrAlreadyDecided), errors.Is(err, service.ErrDuplicateEmail):
		return FailureConflict
	case errors.Is(err, service.ErrForbidden):
		return FailureForbidden
	case errors.Is(err, service.ErrOutOfStock):
		return FailureOutOfStock
	case errors.Is(err, service.ErrInsufficientFunds):
		return FailureInsufficientFunds
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return FailureTimeout
	default:
		return FailureInternal
	}
}

// Message returns the Hebrew banner text for a failure class.
func (f Failure) Message() string {
	switch f {
	case FailureNone:
		return ""
	case FailureInvalid:
		return "ערך לא תקין"
	case FailureNotFound:
		return "הפריט לא נמצא"
	case FailureConflict:
		return "הפעולה כבר בוצעה"
	case FailureForbidden:
		return "אין הרשאה"
	case FailureOutOfStock:
		return "אין מלאי"
	case FailureInsufficientFunds:
		return "אין מספיק יתרה"
	case FailureTimeout:
		return "הפעולה ארכה יותר מדי זמן"
	default:
		return "שגיאה בשרת"
	}
}
