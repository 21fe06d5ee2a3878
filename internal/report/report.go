// Package report owns the single-slot error state surfaced to viewer clients.
//
// The daemon exposes exactly one error banner; every failure boundary writes
// into it last-write-wins, and a successful scene load clears it. Export
// operations consult the flag before producing output.
package report

import (
	"log/slog"
	"sync"

	"lathe/internal/logging"
)

// State is the process-wide error flag and banner slot.
type State struct {
	mu       sync.Mutex
	active   bool
	message  string
	attached bool
	logger   *slog.Logger
}

// Snapshot is a point-in-time copy of the error state.
type Snapshot struct {
	Active  bool   `json:"active"`
	Message string `json:"message,omitempty"`
}

// NewState builds an inactive error state.
func NewState(logger *slog.Logger) *State {
	return &State{logger: logging.NewComponentLogger(logger, "error-reporter")}
}

// Display activates the error flag with the given message and attaches the
// banner. Repeated calls overwrite the previous message.
func (s *State) Display(message string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.active = true
	s.message = message
	s.attached = true
	s.mu.Unlock()
	s.logger.Error("viewer error", logging.String("message", message))
}

// Clear resets the flag and detaches the banner. Clearing an already-detached
// banner is a no-op.
func (s *State) Clear() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
	s.message = ""
	if !s.attached {
		return
	}
	s.attached = false
}

// Active reports whether an error is currently displayed.
func (s *State) Active() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Message returns the current banner text, empty when inactive.
func (s *State) Message() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// Snapshot returns a copy of the current state for API responses.
func (s *State) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Active: s.active, Message: s.message}
}
