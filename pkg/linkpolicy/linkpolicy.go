// Package linkpolicy implements the peer-mode link-policy sub state
// machine: it drives the BR/EDR link between
// the two earbuds between Sniff and Active modes and serialises
// role-switches behind a transition lock: a mutex-guarded state field,
// a retry backoff, and callback hooks instead of channel-based pub/sub,
// since the whole core runs single-threaded cooperative per handler
// frame.
package linkpolicy

import (
	"errors"
	"sync"
	"time"

	"github.com/tws-core/earbud-core/internal/corelog"
)

// State is a peer link-policy mode.
type State uint8

const (
	StateDisconnected State = iota
	StateActive
	StateEnterSniff
	StateSniff
	StateExitSniff
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateActive:
		return "ACTIVE"
	case StateEnterSniff:
		return "ENTER_SNIFF"
	case StateSniff:
		return "SNIFF"
	case StateExitSniff:
		return "EXIT_SNIFF"
	default:
		return "UNKNOWN"
	}
}

// inTransition reports whether the state is one of the transitional
// enter-sniff/exit-sniff sub-states, during which the transition lock
// is held.
func (s State) inTransition() bool {
	return s == StateEnterSniff || s == StateExitSniff
}

// Target is the ambition set via SetTarget; only Active and Sniff are
// legal targets.
type Target uint8

const (
	TargetSniff Target = iota
	TargetActive
)

// MirrorSteady is queried to gate entry into enter-sniff: the mirror
// main-SM must be in ACL_CONNECTED and not mid-transition.
// The mirror package's main SM satisfies this via its own IsACLConnectedSteady method.
type MirrorSteady interface {
	IsACLConnectedSteady() bool
}

// RoleCfmStatus is the controller status code for a role-switch confirm.
type RoleCfmStatus uint8

const (
	RoleCfmSuccess RoleCfmStatus = iota
	RoleCfmFailure
)

var ErrNotInitialised = errors.New("linkpolicy: not initialised for this peer")

const roleRetryDelay = 500 * time.Millisecond

// SM is the peer-mode link-policy sub-state-machine for a single peer
// address.
type SM struct {
	mu sync.Mutex

	addr   string
	state  State
	target Target

	// initialised is cleared on disconnect.
	initialised bool

	mirror MirrorSteady
	logger corelog.Logger

	activePeriodTimer *time.Timer
	roleRetryTimer    *time.Timer

	onSteady func(state State)
}

// New creates a link-policy sub-SM for addr. mirror supplies the mirror
// main-SM steady-state query used to gate active->enter-sniff; it may
// be nil in tests that don't exercise that gate.
func New(addr string, mirror MirrorSteady, logger corelog.Logger) *SM {
	if logger == nil {
		logger = corelog.NoopLogger{}
	}
	return &SM{
		addr:   addr,
		state:  StateDisconnected,
		target: TargetSniff,
		mirror: mirror,
		logger: logger,
	}
}

// OnSteady registers a callback fired whenever the SM settles into a
// steady (non-transitional) state.
func (s *SM) OnSteady(fn func(state State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSteady = fn
}

// State returns the current state.
func (s *SM) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Locked reports whether the transition lock is held, i.e. the SM is in
// enter-sniff or exit-sniff.
func (s *SM) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.inTransition()
}

// HandleConnectInd marks the sub-SM initialised and active on peer
// connect.
func (s *SM) HandleConnectInd() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialised = true
	s.setState(StateActive)
}

// HandleDisconnectInd resets all state on peer link loss.
func (s *SM) HandleDisconnectInd() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelTimersLocked()
	s.initialised = false
	s.target = TargetSniff
	s.setState(StateDisconnected)
}

// SetTarget sets the ambition and kicks the SM. It returns true if the
// target was already reached synchronously.
func (s *SM) SetTarget(target Target) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.target = target
	return s.evaluateLocked()
}

// ActivePeriod forces Active for the given window; a deferred timer
// returns to Sniff when it elapses unless superseded by a later call or
// an explicit SetTarget(Sniff).
func (s *SM) ActivePeriod(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.target = TargetActive
	s.evaluateLocked()

	if s.activePeriodTimer != nil {
		s.activePeriodTimer.Stop()
	}
	s.activePeriodTimer = time.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.activePeriodTimer = nil
		s.target = TargetSniff
		s.evaluateLocked()
	})
}

// evaluateLocked applies the transition policy given the current target. Must be called with mu held.
// Returns true if the target state is already reached.
func (s *SM) evaluateLocked() bool {
	if !s.initialised {
		return false
	}
	if s.state.inTransition() {
		// A commit is deferred behind the lock; evaluateLocked is
		// re-invoked when the sub-step confirms (HandleModeChange).
		return false
	}

	switch {
	case s.target == TargetSniff && s.state == StateActive:
		if s.mirror != nil && !s.mirror.IsACLConnectedSteady() {
			return false
		}
		s.setState(StateEnterSniff)
		return false
	case s.target == TargetActive && s.state == StateSniff:
		s.setState(StateExitSniff)
		return false
	case s.target == TargetSniff && s.state == StateSniff:
		return true
	case s.target == TargetActive && s.state == StateActive:
		return true
	}
	return false
}

// HandleModeChange is the link-policy confirmation that the controller
// has reached the addressed mode; the SM advances to the matching
// steady state and releases the lock.
func (s *SM) HandleModeChange(mode Target) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateEnterSniff:
		if mode == TargetSniff {
			s.setState(StateSniff)
		}
	case StateExitSniff:
		if mode == TargetActive {
			s.setState(StateActive)
		}
	}
	// Re-evaluate in case the target moved again while locked.
	s.evaluateLocked()
}

// HandleRoleCfm processes a role-switch confirmation. Failure requeues a
// retry timer.
func (s *SM) HandleRoleCfm(status RoleCfmStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if status == RoleCfmSuccess {
		return
	}

	if s.roleRetryTimer != nil {
		s.roleRetryTimer.Stop()
	}
	s.roleRetryTimer = time.AfterFunc(roleRetryDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.roleRetryTimer = nil
		s.evaluateLocked()
	})
}

// HandleRoleInd processes an unsolicited role-switch indication from
// the controller; treated the same as a confirm for retry purposes.
func (s *SM) HandleRoleInd(status RoleCfmStatus) {
	s.HandleRoleCfm(status)
}

func (s *SM) cancelTimersLocked() {
	if s.activePeriodTimer != nil {
		s.activePeriodTimer.Stop()
		s.activePeriodTimer = nil
	}
	if s.roleRetryTimer != nil {
		s.roleRetryTimer.Stop()
		s.roleRetryTimer = nil
	}
}

func (s *SM) setState(next State) {
	prev := s.state
	s.state = next

	s.logger.Log(corelog.Event{
		Component:  "linkpolicy",
		DeviceAddr: s.addr,
		Layer:      corelog.LayerSM,
		Category:   corelog.CategoryTransition,
		Transition: &corelog.TransitionEvent{OldState: prev.String(), NewState: next.String()},
	})

	if !next.inTransition() && s.onSteady != nil {
		fn := s.onSteady
		go fn(next)
	}
}
