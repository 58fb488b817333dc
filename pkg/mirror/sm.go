package mirror

import (
	"sync"
	"time"

	"github.com/tws-core/earbud-core/internal/corelog"
	"github.com/tws-core/earbud-core/internal/coreutil"
)

// AudioSource identifies a mirrorable voice source for admissibility and
// audio-sync-ready checks.
type AudioSource uint8

// Preconditions collects the optional collaborator hooks the SM consults
// before committing a transitional state:
//   - ACL_CONNECTING requires the peer BR/EDR link to already be in Sniff.
//   - ESCO_CONNECTING/A2DP_CONNECTING request an Active window on the
//     peer link on every entry; the number of BR/EDR-connected handsets
//     is not checked.
//   - A2DP_CONNECTING requires the audio-sync handshake to be ready.
//
// All fields are optional; a nil hook is treated as already satisfied,
// which keeps the SM usable standalone in tests that don't wire a real
// link-policy/audio-sync collaborator.
type Preconditions struct {
	PeerLinkIsSniff    func() bool
	RequestPeerActive  func(d time.Duration)
	AudioSyncIsReady   func() bool
}

const peerActiveWindow = 2 * time.Second

// SM is the mirror-profile main state machine for one peer link. Only
// the Primary commits targets; the Secondary only ever accepts
// controller-driven transitions mirrored from its peer.
type SM struct {
	mu sync.Mutex

	addr string

	isPrimary bool
	state     State

	// priorSteady is the steady state to unwind to if the in-flight
	// transition times out or fails.
	priorSteady State

	// pendingTarget holds a SetTarget call received while the lock is
	// held; it commits once the lock clears.
	pendingTarget    Target
	hasPendingTarget bool

	pre    Preconditions
	logger corelog.Logger

	transitionTimer *time.Timer

	onSteady func(state State)
}

// New creates a mirror main-SM for addr. pre may be the zero value.
func New(addr string, isPrimary bool, pre Preconditions, logger corelog.Logger) *SM {
	if logger == nil {
		logger = corelog.NoopLogger{}
	}
	return &SM{
		addr:        addr,
		isPrimary:   isPrimary,
		state:       StateDisconnected,
		priorSteady: StateDisconnected,
		pre:         pre,
		logger:      logger,
	}
}

// IsACLConnectedSteady satisfies linkpolicy.MirrorSteady: the peer
// link-policy SM gates entry into Sniff on this being true.
func (s *SM) IsACLConnectedSteady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateACLConnected
}

// State returns the current state.
func (s *SM) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Locked reports whether the transition lock is held.
func (s *SM) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.state.IsSteady()
}

// OnSteady registers a callback fired whenever the SM settles into a
// steady state, including in-place A2DP_CONNECTED<->A2DP_ROUTED moves.
func (s *SM) OnSteady(fn func(state State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSteady = fn
}

// SetTarget commits the Primary's derived target state.
// Only valid on the Primary; the Secondary ignores it. Returns true if
// the target is already the current steady state.
func (s *SM) SetTarget(target Target) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isPrimary {
		return matchesSteady(s.state, target)
	}

	if !s.state.IsSteady() {
		s.pendingTarget = target
		s.hasPendingTarget = true
		return false
	}

	return s.commitLocked(target)
}

// commitLocked must be called with mu held and s.state steady. It applies
// the ordered transition table and any preconditions that gate the move,
// returning true if no transition was necessary.
func (s *SM) commitLocked(target Target) bool {
	next, transitioning := transitionFor(s.state, target)
	if !transitioning {
		if next != s.state {
			s.setState(next)
		}
		return true
	}

	if !s.preconditionsSatisfiedLocked(next) {
		// Preconditions arrange their own async follow-up (e.g. a peer
		// active-period request); remember the ambition and retry once
		// that follow-up lands.
		s.pendingTarget = target
		s.hasPendingTarget = true
		return false
	}

	s.priorSteady = s.state
	s.setState(next)
	// A teardown hop that does not itself land on the target (e.g.
	// A2DP_DISCONNECTING on the way to eSCO) keeps the target so it
	// re-raises once the hop is confirmed.
	if next.sub() == subDisconnecting && !matchesSteady(landingState(next, false), target) {
		s.pendingTarget = target
		s.hasPendingTarget = true
	}
	return false
}

// preconditionsSatisfiedLocked implements 
func (s *SM) preconditionsSatisfiedLocked(next State) bool {
	switch next {
	case StateACLConnecting:
		if s.pre.PeerLinkIsSniff != nil && !s.pre.PeerLinkIsSniff() {
			return false
		}
	case StateESCOConnecting, StateA2DPConnecting:
		if s.pre.RequestPeerActive != nil {
			s.pre.RequestPeerActive(peerActiveWindow)
		}
		if next == StateA2DPConnecting && s.pre.AudioSyncIsReady != nil && !s.pre.AudioSyncIsReady() {
			return false
		}
	}
	return true
}

// ConfirmConnected is the controller's confirmation that a *_CONNECTING
// transition completed; the SM lands on the matching steady state and
// re-evaluates any pending target.
func (s *SM) ConfirmConnected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.land(true)
}

// ConfirmDisconnected is the controller's confirmation that a
// *_DISCONNECTING transition completed.
func (s *SM) ConfirmDisconnected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.land(false)
}

func (s *SM) land(connected bool) {
	if s.state.IsSteady() {
		return
	}
	s.cancelTransitionTimerLocked()
	transitional := s.state
	next := landingState(transitional, connected)
	if next == transitional {
		// landingState's switch covers every transitional State value;
		// reaching its fallback means s.state holds a value outside the
		// enum, which corrupts every Steady()/group() check downstream.
		coreutil.Corepanic(s.logger, "mirror", "confirmation on unknown transitional state "+transitional.String())
	}
	s.setState(next)
	s.retryPendingLocked()
}

// Timeout unwinds a stalled transition back to the prior steady state and
// re-raises any pending target.
func (s *SM) Timeout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.IsSteady() {
		return
	}
	s.cancelTransitionTimerLocked()
	s.setState(s.priorSteady)
	s.retryPendingLocked()
}

func (s *SM) retryPendingLocked() {
	if !s.hasPendingTarget {
		return
	}
	target := s.pendingTarget
	s.hasPendingTarget = false
	if s.state.IsSteady() {
		s.commitLocked(target)
	}
}

// armTransitionTimeout schedules Timeout to fire after d unless a
// confirmation lands first. Armed automatically on every
// transitional entry via setState.
func (s *SM) armTransitionTimeout(d time.Duration) {
	s.cancelTransitionTimerLocked()
	s.transitionTimer = time.AfterFunc(d, s.Timeout)
}

func (s *SM) cancelTransitionTimerLocked() {
	if s.transitionTimer != nil {
		s.transitionTimer.Stop()
		s.transitionTimer = nil
	}
}

const defaultTransitionTimeout = 5 * time.Second

func (s *SM) setState(next State) {
	prev := s.state
	s.state = next

	s.logger.Log(corelog.Event{
		Component:  "mirror",
		DeviceAddr: s.addr,
		Layer:      corelog.LayerSM,
		Category:   corelog.CategoryTransition,
		Transition: &corelog.TransitionEvent{OldState: prev.String(), NewState: next.String()},
	})

	if !next.IsSteady() {
		s.armTransitionTimeout(defaultTransitionTimeout)
	} else {
		s.cancelTransitionTimerLocked()
		if s.onSteady != nil {
			fn := s.onSteady
			go fn(next)
		}
	}
}

// HandleDisconnectInd resets the SM to DISCONNECTED on ACL loss.
func (s *SM) HandleDisconnectInd() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelTransitionTimerLocked()
	s.hasPendingTarget = false
	s.priorSteady = StateDisconnected
	s.setState(StateDisconnected)
}
