package goalengine

import (
	"context"
	"strconv"
	"sync"

	"github.com/tws-core/earbud-core/internal/corelog"
)

// Decision is what a rule returns for a given evaluation round.
type Decision uint8

const (
	DecisionIgnore Decision = iota
	DecisionRun
	DecisionRunWithParams
	DecisionDefer
)

type running struct {
	goal   *Goal
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Engine is the topology goal engine: it admits rule decisions against
// an active set and a pending queue. All mutation of that state is
// guarded by mu; individual procedures run on their own goroutines.
type Engine struct {
	logger corelog.Logger

	mu      sync.Mutex
	active  map[int]*running
	pending []*Goal

	// onComplete is invoked on the finishing procedure's goroutine
	// whenever a goal finishes, with the goal and its error (nil on
	// success).
	onComplete func(goal *Goal, err error)
}

// New creates an empty goal engine. logger may be corelog.NoopLogger{}.
func New(logger corelog.Logger) *Engine {
	if logger == nil {
		logger = corelog.NoopLogger{}
	}
	return &Engine{
		logger: logger,
		active: make(map[int]*running),
	}
}

// OnComplete sets the callback invoked when any goal finishes.
func (e *Engine) OnComplete(fn func(goal *Goal, err error)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onComplete = fn
}

// IsActive reports whether a goal with the given id is currently running.
func (e *Engine) IsActive(id int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.active[id]
	return ok
}

// IsPending reports whether a goal with the given id is queued.
func (e *Engine) IsPending(id int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, g := range e.pending {
		if g.ID == id {
			return true
		}
	}
	return false
}

// Submit admits a goal decision. A new rule decision is queued on the
// pending task only if its exclusive or non-concurrent partner is
// active; CancelOthers policy instead tears down the
// conflicting goal immediately and starts the new one.
func (e *Engine) Submit(goal *Goal) {
	e.mu.Lock()

	if conflict := e.conflictingActive(goal); conflict != nil {
		switch goal.Contention {
		case CancelOthers:
			e.cancelLocked(conflict)
			e.startLocked(goal)
		case Wait:
			e.pending = append(e.pending, goal)
			e.logLocked(goal, "defer")
		case ConcurrentWithSet:
			// Declared concurrent but conflictingActive() only returns a
			// conflict when the set does NOT cover it, so this branch is
			// unreachable in practice; treat as wait defensively.
			e.pending = append(e.pending, goal)
		}
		e.mu.Unlock()
		return
	}

	e.startLocked(goal)
	e.mu.Unlock()
}

// conflictingActive returns the active goal that blocks admission of
// goal, or nil if none.
func (e *Engine) conflictingActive(goal *Goal) *Goal {
	if goal.ExclusiveGoalID == 0 {
		return nil
	}
	if r, ok := e.active[goal.ExclusiveGoalID]; ok {
		if goal.concurrentWith(r.goal.ID) || r.goal.concurrentWith(goal.ID) {
			return nil
		}
		return r.goal
	}
	return nil
}

func (e *Engine) startLocked(goal *Goal) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &running{goal: goal, cancel: cancel, done: make(chan struct{})}
	e.active[goal.ID] = r

	e.logLocked(goal, "run")

	go func() {
		err := goal.Procedure.Run(ctx)
		e.finish(goal.ID, err)
	}()
}

func (e *Engine) cancelLocked(goal *Goal) {
	if r, ok := e.active[goal.ID]; ok {
		r.cancel()
		goal.Procedure.Cancel()
	}
}

// finish is called from a procedure's goroutine once it returns. It
// removes the goal from the active set, releases the matching pending
// goal (if any), and invokes the completion callback.
func (e *Engine) finish(id int, err error) {
	e.mu.Lock()
	r, ok := e.active[id]
	if !ok {
		e.mu.Unlock()
		return
	}
	delete(e.active, id)
	r.err = err
	close(r.done)

	cb := e.onComplete
	goal := r.goal

	// Release the pending queue: admit every goal no longer blocked by
	// the set the just-finished goal held. This mirrors the pending
	// task's message-handling draining queued goals.
	var stillPending []*Goal
	for _, pg := range e.pending {
		if e.conflictingActive(pg) == nil {
			e.startLocked(pg)
		} else {
			stillPending = append(stillPending, pg)
		}
	}
	e.pending = stillPending

	e.mu.Unlock()

	if cb != nil {
		cb(goal, err)
	}
}

// Wait blocks until the goal with the given id completes, or ctx is
// cancelled. Returns immediately with (nil, false) if the goal is not
// active.
func (e *Engine) Wait(ctx context.Context, id int) (err error, found bool) {
	e.mu.Lock()
	r, ok := e.active[id]
	e.mu.Unlock()
	if !ok {
		return nil, false
	}

	select {
	case <-r.done:
		return r.err, true
	case <-ctx.Done():
		return ctx.Err(), true
	}
}

// Cancel requests cooperative cancellation of an active goal. It returns
// immediately; the procedure's own Run still has to observe ctx.Done()
// (or its Cancel callback) and return before finish() fires.
func (e *Engine) Cancel(goal *Goal) {
	e.mu.Lock()
	e.cancelLocked(goal)
	e.mu.Unlock()
}

// CancelByID requests cooperative cancellation of the active goal with
// the given id, if any is running. Used by rules whose only effect is
// "stop this in-flight goal" rather than admitting a new one (e.g. the
// out-of-case watchdog-stop rule cancelling an in-case watchdog).
func (e *Engine) CancelByID(id int) {
	e.mu.Lock()
	r, ok := e.active[id]
	e.mu.Unlock()
	if ok {
		e.Cancel(r.goal)
	}
}

func (e *Engine) logLocked(goal *Goal, decision string) {
	e.logger.Log(corelog.Event{
		Component: "goalengine",
		Layer:     corelog.LayerGoal,
		Category:  corelog.CategoryGoalStart,
		Goal: &corelog.GoalEventData{
			GoalID:        goalName(goal.ID),
			Outcome:       decision,
			CorrelationID: goal.CorrelationID.String(),
		},
	})
}

func goalName(id int) string {
	return "goal#" + strconv.Itoa(id)
}
