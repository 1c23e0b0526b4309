package action

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jask/canteen/internal/service"
)

func TestGuardAdmitsOneCallAtATime(t *testing.T) {
	var g Guard
	t1, ok := g.Begin("u1:approve")
	if !ok {
		t.Fatalf("first Begin should be admitted")
	}
	if _, ok := g.Begin("u2:deny"); ok {
		t.Fatalf("second Begin must be refused while pending")
	}
	if !g.Pending() || !g.InFlight("u1:approve") || g.InFlight("u2:deny") {
		t.Fatalf("unexpected in-flight state: %v key=%q", g.State(), g.key)
	}
	if !g.Settle(t1, nil) {
		t.Fatalf("settle of current ticket should apply")
	}
	if g.Pending() {
		t.Fatalf("guard should be idle after settle")
	}
	if _, ok := g.Begin("u2:deny"); !ok {
		t.Fatalf("Begin after settle should be admitted")
	}
}

func TestGuardSettlesOnFailureAndKeepsError(t *testing.T) {
	var g Guard
	tk, _ := g.Begin("buy")
	boom := errors.New("boom")
	g.Settle(tk, boom)
	if g.Pending() {
		t.Fatalf("failure must still return to idle")
	}
	if !errors.Is(g.Err(), boom) {
		t.Fatalf("Err() = %v, want boom", g.Err())
	}
	g.ClearErr()
	if g.Err() != nil {
		t.Fatalf("ClearErr should reset the error")
	}
	tk, _ = g.Begin("buy")
	g.Settle(tk, boom)
	if _, ok := g.Begin("buy"); !ok || g.Err() != nil {
		t.Fatalf("Begin should clear the previous failure")
	}
}

func TestGuardIgnoresStaleTickets(t *testing.T) {
	var g Guard
	old, _ := g.Begin("a")
	g.Settle(old, nil)
	cur, _ := g.Begin("b")
	if g.Settle(old, errors.New("late")) {
		t.Fatalf("stale ticket must be ignored")
	}
	if !g.InFlight("b") {
		t.Fatalf("current call should still be pending")
	}
	if !g.Settle(cur, nil) {
		t.Fatalf("current ticket should settle")
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want Failure
	}{
		{nil, FailureNone},
		{service.ErrInvalidAmount, FailureInvalid},
		{fmt.Errorf("wrap: %w", service.ErrNotFound), FailureNotFound},
		{service.ErrAlreadyDecided, FailureConflict},
		{service.ErrForbidden, FailureForbidden},
		{service.ErrOutOfStock, FailureOutOfStock},
		{service.ErrInsufficientFunds, FailureInsufficientFunds},
		{context.DeadlineExceeded, FailureTimeout},
		{errors.New("disk full"), FailureInternal},
	}
	for _, c := range cases {
		if got := Classify(c.err); got != c.want {
			t.Errorf("Classify(%v) = %v, want %v", c.err, got, c.want)
		}
		r := Result{Err: c.err}
		if r.OK() != (c.err == nil) {
			t.Errorf("Result{%v}.OK() mismatch", c.err)
		}
		if (c.want == FailureNone) != (r.Failure().Message() == "") {
			t.Errorf("message presence mismatch for %v", c.err)
		}
	}
}

func TestGuardErrForMatchesKey(t *testing.T) {
	var g Guard
	tk, _ := g.Begin("purchase")
	boom := errors.New("boom")
	g.Settle(tk, boom)
	if !errors.Is(g.ErrFor("purchase"), boom) {
		t.Fatalf("ErrFor(purchase) = %v, want boom", g.ErrFor("purchase"))
	}
	if err := g.ErrFor("deposit"); err != nil {
		t.Fatalf("ErrFor(deposit) = %v, want nil", err)
	}
}
