// Package goalengine implements the topology goal engine:
// goal admission against an active set and a pending queue, exclusivity
// and concurrency bitsets, and the procedure/script abstraction that
// realises a goal.
package goalengine

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/tws-core/earbud-core/pkg/ruleevent"
)

// ContentionPolicy controls how a goal interacts with the currently
// active set.
type ContentionPolicy uint8

const (
	// CancelOthers cancels the goal's exclusive partner (if active) before
	// starting.
	CancelOthers ContentionPolicy = iota
	// ConcurrentWithSet allows the goal to run alongside any goal in its
	// declared concurrency set.
	ConcurrentWithSet
	// Wait defers the goal onto the pending queue until its exclusive
	// partner (if active) completes.
	Wait
)

// Procedure is a single unit of work realising a goal. Run blocks until
// the procedure completes or ctx is cancelled. Cancel requests
// cooperative teardown and returns immediately; it does not itself
// return an error, since completion is always observed through Run's
// return value once wind-down finishes.
type Procedure interface {
	Run(ctx context.Context) error
	Cancel()
}

// ProcedureFunc adapts a plain function to a Procedure with no
// cancellation behaviour beyond context cancellation.
type ProcedureFunc func(ctx context.Context) error

func (f ProcedureFunc) Run(ctx context.Context) error { return f(ctx) }
func (f ProcedureFunc) Cancel()                       {}

// Script runs a fixed sequence of procedures in order, stopping (and not
// running later steps) if an earlier one fails. Cancel cancels whichever
// step is currently running.
type Script struct {
	Steps []Procedure

	mu      sync.Mutex
	current Procedure
}

func (s *Script) Run(ctx context.Context) error {
	for _, step := range s.Steps {
		s.mu.Lock()
		s.current = step
		s.mu.Unlock()

		if err := step.Run(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Script) Cancel() {
	s.mu.Lock()
	cur := s.current
	s.mu.Unlock()
	if cur != nil {
		cur.Cancel()
	}
}

// Goal is a unit of work driven by a rule decision.
type Goal struct {
	ID int

	// CorrelationID identifies one run of this goal across its log
	// lines, independent of ID (the same goal ID can run many times
	// over a session). Assigned by the caller (topology.SubmitGoal) at
	// submission time.
	CorrelationID uuid.UUID

	// Procedure realises the goal; may be a single Procedure or a *Script.
	Procedure Procedure

	// ExclusiveGoalID names the other goal that must be cancelled (or
	// awaited, per Contention) before this one may run. Zero means none.
	ExclusiveGoalID int

	// ConcurrentWith lists goal ids this goal may run alongside even
	// though they are not explicitly declared exclusive.
	ConcurrentWith []int

	Contention ContentionPolicy

	SuccessEvent ruleevent.Set
	FailureEvent ruleevent.Set
	TimeoutEvent ruleevent.Set
}

func (g *Goal) concurrentWith(other int) bool {
	for _, id := range g.ConcurrentWith {
		if id == other {
			return true
		}
	}
	return false
}
