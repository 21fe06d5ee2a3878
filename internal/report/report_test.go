package report_test

import (
	"testing"

	"lathe/internal/report"
)

func TestDisplaySetsFlagAndMessage(t *testing.T) {
	state := report.NewState(nil)
	if state.Active() {
		t.Fatal("new state must be inactive")
	}

	state.Display("bad mesh")
	if !state.Active() {
		t.Fatal("expected active after Display")
	}
	if state.Message() != "bad mesh" {
		t.Fatalf("unexpected message: %q", state.Message())
	}
}

func TestDisplayLastWriteWins(t *testing.T) {
	state := report.NewState(nil)
	state.Display("first")
	state.Display("second")
	if state.Message() != "second" {
		t.Fatalf("expected last write to win, got %q", state.Message())
	}
}

func TestClearIsIdempotent(t *testing.T) {
	state := report.NewState(nil)
	state.Display("boom")
	state.Clear()
	if state.Active() {
		t.Fatal("expected inactive after Clear")
	}
	// Clearing again with the banner already detached must not fail.
	state.Clear()
	state.Clear()
	if state.Active() || state.Message() != "" {
		t.Fatalf("unexpected state after repeated Clear: %+v", state.Snapshot())
	}
}

func TestNilStateIsSafe(t *testing.T) {
	var state *report.State
	state.Display("ignored")
	state.Clear()
	if state.Active() {
		t.Fatal("nil state must report inactive")
	}
}
