package topology

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tws-core/earbud-core/internal/corelog"
	"github.com/tws-core/earbud-core/pkg/goalengine"
	"github.com/tws-core/earbud-core/pkg/ruleevent"
)

type lifecycleState uint8

const (
	lifecycleStopped lifecycleState = iota
	lifecycleStarting
	lifecycleStarted
	lifecycleStopping
)

// DefaultStopTimeout is TwsTopologyConfig_TwsTopologyStopTimeoutS, the
// bound on how long Stop waits for the system-stop goal to settle.
const DefaultStopTimeout = 2 * time.Second

//go:generate mockery --name MessageClient --output ./mocks --outpkg mocks

// MessageClient receives topology notifications: role changes, start/stop confirmations.
type MessageClient interface {
	RoleChanged(role Role)
	StartConfirm(role Role)
	StopConfirm(success bool)
}

// GoalRunner builds the procedure for a goal id; Topology looks this up
// when a rule decision admits a goal. Returning nil skips
// submission - used for goals not wired into a given deployment.
type GoalRunner func(id int) goalengine.Procedure

// ruleBinding ties a pure Rule function to the goal id it drives and the
// events that goal completes with. Rule functions stay
// pure and reusable (e.g. from rule-set unit tests); the binding is what
// makes Topology itself able to submit the right goal.
type ruleBinding struct {
	rule       Rule
	goalID     int
	contention goalengine.ContentionPolicy
	success    ruleevent.Set
	failure    ruleevent.Set
	timeout    ruleevent.Set

	// cancelGoalID, when set, makes a Run/RunWithParams decision cancel
	// the named active goal instead of submitting goalID. Used by the
	// watchdog-stop rules, whose only effect is tearing down an
	// in-flight in-case watchdog.
	cancelGoalID int
}

// Topology is the public contract for the topology/role-selection goal
// engine.
type Topology struct {
	mu sync.Mutex

	state lifecycleState
	role  Role

	peerPaired bool
	world      WorldState

	stopTimeout time.Duration

	engine  *goalengine.Engine
	tracker *ruleevent.Tracker
	runner  GoalRunner

	primaryRules   []ruleBinding
	secondaryRules []ruleBinding

	clients []MessageClient
	logger  corelog.Logger

	prohibitHandover bool

	findRoleBackoff *findRoleBackoff
}

// New creates a stopped Topology. runner may be nil in tests that only
// exercise rule admission, not procedure execution.
func New(runner GoalRunner, logger corelog.Logger) *Topology {
	if logger == nil {
		logger = corelog.NoopLogger{}
	}
	t := &Topology{
		state:       lifecycleStopped,
		stopTimeout: DefaultStopTimeout,
		engine:          goalengine.New(logger),
		tracker:         ruleevent.NewTracker(),
		runner:          runner,
		logger:          logger,
		findRoleBackoff: newFindRoleBackoff(),
		primaryRules: []ruleBinding{
			{rule: PriShutDown, goalID: GoalSystemStop, contention: goalengine.CancelOthers},
			{rule: PriPairPeer, goalID: GoalPairPeer, contention: goalengine.Wait,
				success: ruleevent.Set(ruleevent.PeerPaired)},
			{rule: PriPeerPairedOutCase, goalID: GoalPrimaryConnectablePeer, contention: goalengine.Wait,
				success: ruleevent.Set(ruleevent.PeerConnectedBREDR)},
			{rule: PriPeerPairedInCase, goalID: GoalPrimaryConnectablePeer, contention: goalengine.Wait,
				success: ruleevent.Set(ruleevent.PeerConnectedBREDR)},
			{rule: PriEnableConnectablePeer, goalID: GoalEnableConnectablePeer, contention: goalengine.Wait},
			{rule: PriDisableConnectablePeer, goalID: GoalDisableConnectablePeer, contention: goalengine.Wait},
			{rule: PriConnectPeerProfiles, goalID: GoalPrimaryConnectPeerProfiles, contention: goalengine.Wait},
			{rule: PriDisconnectPeerProfiles, goalID: GoalPrimaryDisconnectPeerProfiles, contention: goalengine.Wait},
			{rule: PriReleasePeer, goalID: GoalReleasePeer, contention: goalengine.Wait},
			{rule: PriPeerLostFindRole, goalID: GoalNoRoleFindRole, contention: goalengine.CancelOthers,
				success: ruleevent.Set(ruleevent.RoleSwitch), failure: ruleevent.Set(ruleevent.NoRole)},
			{rule: PriPeerConnectedCancelFindRole, cancelGoalID: GoalNoRoleFindRole},
			{rule: PriSelectedPrimary, goalID: GoalBecomePrimary, contention: goalengine.CancelOthers},
			{rule: PriSelectedActingPrimary, goalID: GoalBecomeActingPrimary, contention: goalengine.CancelOthers},
			{rule: PriNoRoleSelectedSecondary, goalID: GoalBecomeSecondary, contention: goalengine.CancelOthers},
			{rule: PriPrimarySelectedSecondary, goalID: GoalRoleSwitchToSecondary, contention: goalengine.CancelOthers},
			{rule: PriEnableConnectableHandset, goalID: GoalConnectableHandset, contention: goalengine.ConcurrentWithSet},
			{rule: PriEnableLeConnectableHandset, goalID: GoalLEConnectableHandset, contention: goalengine.ConcurrentWithSet},
			{rule: PriDisableConnectableHandset, goalID: GoalConnectableHandset, contention: goalengine.Wait},
			{rule: PriAllowHandsetConnect, goalID: GoalAllowHandsetConnect, contention: goalengine.ConcurrentWithSet},
			{rule: PriRoleSwitchConnectHandset, goalID: GoalConnectHandset, contention: goalengine.CancelOthers,
				success: ruleevent.Set(ruleevent.HandsetConnectedBREDR)},
			{rule: PriOutCaseConnectHandset, goalID: GoalConnectHandset, contention: goalengine.CancelOthers,
				success: ruleevent.Set(ruleevent.HandsetConnectedBREDR)},
			{rule: PriHandsetLinkLossReconnect, goalID: GoalConnectHandset, contention: goalengine.Wait,
				success: ruleevent.Set(ruleevent.HandsetConnectedBREDR)},
			{rule: PriUserRequestConnectHandset, goalID: GoalConnectHandset, contention: goalengine.CancelOthers,
				success: ruleevent.Set(ruleevent.HandsetConnectedBREDR)},
			{rule: PriDisconnectHandset, goalID: GoalDisconnectHandset, contention: goalengine.CancelOthers,
				success: ruleevent.Set(ruleevent.HandsetDisconnectedBREDR)},
			{rule: PriDisconnectLruHandset, goalID: GoalDisconnectLRUHandset, contention: goalengine.Wait,
				success: ruleevent.Set(ruleevent.HandsetDisconnectedBREDR)},
			{rule: PriInCaseDisconnectHandset, goalID: GoalDisconnectHandset, contention: goalengine.Wait,
				success: ruleevent.Set(ruleevent.HandsetDisconnectedBREDR)},
			{rule: PriInCaseWatchdogStart, goalID: GoalInCaseWatchdog, contention: goalengine.Wait},
			{rule: PriOutOfCaseWatchdogStop, cancelGoalID: GoalInCaseWatchdog},
		},
		secondaryRules: []ruleBinding{
			{rule: SecShutDown, goalID: GoalSystemStop, contention: goalengine.CancelOthers},
			{rule: SecPeerPairedOutCase, goalID: GoalSecondaryConnectPeer, contention: goalengine.Wait,
				success: ruleevent.Set(ruleevent.PeerConnectedBREDR), failure: ruleevent.Set(ruleevent.FailedPeerConnect)},
			{rule: SecRoleSwitchPeerConnect, goalID: GoalSecondaryConnectPeer, contention: goalengine.CancelOthers,
				success: ruleevent.Set(ruleevent.PeerConnectedBREDR), failure: ruleevent.Set(ruleevent.FailedPeerConnect)},
			{rule: SecNoRoleIdle, goalID: GoalNoRoleIdle, contention: goalengine.Wait},
			{rule: SecFailedConnectFindRole, goalID: GoalNoRoleFindRole, contention: goalengine.CancelOthers,
				success: ruleevent.Set(ruleevent.RoleSwitch), failure: ruleevent.Set(ruleevent.NoRole)},
			{rule: SecFailedSwitchSecondaryFindRole, goalID: GoalNoRoleFindRole, contention: goalengine.CancelOthers,
				success: ruleevent.Set(ruleevent.RoleSwitch), failure: ruleevent.Set(ruleevent.NoRole)},
			{rule: SecPeerLostFindRole, goalID: GoalNoRoleFindRole, contention: goalengine.CancelOthers,
				success: ruleevent.Set(ruleevent.RoleSwitch), failure: ruleevent.Set(ruleevent.NoRole)},
			{rule: SecInCaseWatchdogStart, goalID: GoalInCaseWatchdog, contention: goalengine.Wait},
			{rule: SecOutOfCaseWatchdogStop, cancelGoalID: GoalInCaseWatchdog},
		},
	}
	t.engine.OnComplete(t.handleGoalComplete)
	return t
}

// RegisterMessageClient adds a notification sink.
func (t *Topology) RegisterMessageClient(c MessageClient) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clients = append(t.clients, c)
}

// GetRole returns the current role.
func (t *Topology) GetRole() Role {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.role
}

func (t *Topology) IsPrimary() bool       { return t.GetRole() == RolePrimary }
func (t *Topology) IsSecondary() bool     { return t.GetRole() == RoleSecondary }
func (t *Topology) IsActingPrimary() bool { return t.GetRole() == RoleActingPrimary }

// IsFullPrimary reports Primary as opposed to the Acting-Primary
// fallback role.
func (t *Topology) IsFullPrimary() bool { return t.GetRole() == RolePrimary }

// ProhibitHandover sets or clears the handover-prohibited flag.
func (t *Topology) ProhibitHandover(prohibit bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.prohibitHandover = prohibit
}

// HandoverProhibited reports the current flag (consulted before
// admitting a dynamic-handover goal).
func (t *Topology) HandoverProhibited() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.prohibitHandover
}

// NextFindRoleRetryDelay returns the next backoff delay a find-role
// GoalRunner should wait before retrying after a failed attempt. The
// delay grows exponentially with jitter until a role is successfully
// assigned, at which point it resets.
func (t *Topology) NextFindRoleRetryDelay() time.Duration {
	return t.findRoleBackoff.Next()
}

// ProhibitHandsetConnection sets or clears the app-prohibit-connect flag
// consulted by PriConnectHandset.
func (t *Topology) ProhibitHandsetConnection(prohibit bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.world.AppProhibitConnect = prohibit
}

// SetDFUMode sets the DFU flag consulted by PriInCaseWatchdogStart.
func (t *Topology) SetDFUMode(active bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.world.DFUActive = active
}

// EndDFU clears DFU mode.
func (t *Topology) EndDFU() { t.SetDFUMode(false) }

// EnableRemainActiveForPeer / EnableRemainActiveForHandset set the
// overriding flags consulted by the in-case teardown policy.
func (t *Topology) EnableRemainActiveForPeer(enable bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.world.RemainActiveForPeer = enable
}

func (t *Topology) EnableRemainActiveForHandset(enable bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.world.RemainActiveForHandset = enable
}

// SetHandsetKnown records whether a handset is bonded, consulted by
// every connect-handset and connectable-handset rule.
func (t *Topology) SetHandsetKnown(known bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.world.HandsetKnown = known
}

// SetPreviouslyConnectedProfiles records the handset profile set to
// restore on a reconnect (role-switch, linkloss) rather than the full
// HFP+A2DP set used for an out-of-case or pairing connect.
func (t *Topology) SetPreviouslyConnectedProfiles(profiles HandsetProfile) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.world.PreviouslyConnectedProfiles = profiles
}

// SetReconnectPostHandover flags the next role-switch handset reconnect
// as following a just-completed dynamic handover rather than a plain
// find-role outcome; PriRoleSwitchConnectHandset consumes and the
// caller is expected to clear it once consumed.
func (t *Topology) SetReconnectPostHandover(postHandover bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.world.ReconnectPostHandover = postHandover
}

// SetAnotherAGStreaming flags whether a different audio gateway is
// mid-stream, consulted by the linkloss-reconnect rule to avoid
// contending for bandwidth.
func (t *Topology) SetAnotherAGStreaming(streaming bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.world.AnotherAGStreaming = streaming
}

// SetPeerProfileConnectMask is a pass-through configuration hook; the
// mask itself is consumed by the mirror package's peer-profile policy
// (mirror.PeerProfileMaskFor).
func (t *Topology) SetPeerProfileConnectMask(mask uint8) {
	// Intentionally stateless here: the mask is recomputed from flags by
	// mirror.PeerProfileMaskFor on every case-state change rather than
	// cached, so there is nothing to store beyond acknowledging the call.
	_ = mask
}

// ConnectMRUHandset, DisconnectLRUHandset, DisconnectAllHandsets submit
// the matching user-request rule events.
func (t *Topology) ConnectMRUHandset() {
	t.raise(ruleevent.Set(ruleevent.UserRequestConnectHandset))
}

func (t *Topology) DisconnectLRUHandset() {
	t.raise(ruleevent.Set(ruleevent.UserRequestDisconnectLRUHandset))
}

func (t *Topology) DisconnectAllHandsets() {
	t.raise(ruleevent.Set(ruleevent.UserRequestDisconnectAllHandsets))
}

// Init prepares the topology for Start. Idempotent.
func (t *Topology) Init() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = lifecycleStopped
}

// Start is only accepted in the stopped state. If not yet
// peer-paired, it raises NO_PEER (triggering the pair-peer goal) and the
// caller is not yet informed of start; StartConfirm fires later once
// PEER_PAIRED lands. If already peer-paired, it raises PEER_PAIRED and
// confirms start immediately with the current role.
func (t *Topology) Start() {
	t.mu.Lock()
	if t.state != lifecycleStopped {
		t.mu.Unlock()
		return
	}
	t.state = lifecycleStarting
	paired := t.peerPaired
	role := t.role
	t.mu.Unlock()

	if !paired {
		t.raise(ruleevent.Set(ruleevent.NoPeer))
		return
	}

	t.raise(ruleevent.Set(ruleevent.PeerPaired))
	t.mu.Lock()
	t.state = lifecycleStarted
	t.mu.Unlock()
	t.notifyStartConfirm(role)
}

// Stop begins the stop script; it must complete within stopTimeout or
// the caller is told failure, though internal state is marked stopped
// regardless. All goal decisions received
// after Stop is initiated are silently dropped.
func (t *Topology) Stop() {
	t.mu.Lock()
	if t.state == lifecycleStopped || t.state == lifecycleStopping {
		t.mu.Unlock()
		return
	}
	t.state = lifecycleStopping
	timeout := t.stopTimeout
	runner := t.runner
	t.mu.Unlock()

	success := true
	if runner != nil {
		if proc := runner(GoalSystemStop); proc != nil {
			goal := &goalengine.Goal{ID: GoalSystemStop, Procedure: proc, Contention: goalengine.CancelOthers}
			t.engine.Submit(goal)

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			err, found := t.engine.Wait(ctx, GoalSystemStop)
			if found {
				success = err == nil
			}
			cancel()
		}
	}

	t.mu.Lock()
	t.state = lifecycleStopped
	t.mu.Unlock()

	t.notifyStopConfirm(success)
}

func (t *Topology) notifyStartConfirm(role Role) {
	t.mu.Lock()
	clients := append([]MessageClient(nil), t.clients...)
	t.mu.Unlock()
	for _, c := range clients {
		c.StartConfirm(role)
	}
}

func (t *Topology) notifyStopConfirm(success bool) {
	t.mu.Lock()
	clients := append([]MessageClient(nil), t.clients...)
	t.mu.Unlock()
	for _, c := range clients {
		c.StopConfirm(success)
	}
}

func (t *Topology) notifyRoleChanged(role Role) {
	t.mu.Lock()
	clients := append([]MessageClient(nil), t.clients...)
	t.mu.Unlock()
	for _, c := range clients {
		c.RoleChanged(role)
	}
}

// RaiseEvents injects external rule events (case lid, peer-signal,
// connection, handset, HDMA data-flow) into the mask and re-evaluates
// the active rule set. Dropped entirely once stop has been initiated.
func (t *Topology) RaiseEvents(events ruleevent.Set) {
	t.raise(events)
}

func (t *Topology) raise(events ruleevent.Set) {
	t.mu.Lock()
	if t.state == lifecycleStopping || t.state == lifecycleStopped {
		// All goal decisions received after stop is initiated are
		// silently dropped until Start is called again.
		// Start's own NO_PEER/PEER_PAIRED raises run while state is
		// lifecycleStarting, so they are unaffected by this guard.
		t.mu.Unlock()
		return
	}
	t.tracker.Raise(events)
	t.applyWorldTransitionsLocked(events)
	mask := t.tracker.Active()
	role := t.role
	world := t.world
	world.Role = role
	world.IsActingPrimary = role == RoleActingPrimary
	world.IsGoalActiveOrQueued = t.isGoalActiveOrQueued
	rules := t.rulesForRole(role)
	t.mu.Unlock()

	if events.Has(ruleevent.PeerPaired) {
		t.mu.Lock()
		// A Start that found no peer is confirmed once pairing lands.
		confirmStart := t.state == lifecycleStarting && !t.peerPaired
		t.peerPaired = true
		t.world.SecondaryKnown = true
		t.world.PrimaryKnown = true
		if confirmStart {
			t.state = lifecycleStarted
		}
		t.mu.Unlock()
		if confirmStart {
			t.notifyStartConfirm(role)
		}
	}

	for _, binding := range rules {
		decision := binding.rule(mask, world)
		if decision != goalengine.DecisionRun && decision != goalengine.DecisionRunWithParams {
			continue
		}
		if binding.cancelGoalID != 0 {
			t.engine.CancelByID(binding.cancelGoalID)
			continue
		}
		t.SubmitGoal(binding.goalID, binding.success, binding.failure, binding.timeout, binding.contention)
	}
}

// applyWorldTransitionsLocked updates the world-state fields that track
// physical/connection state directly from the events just raised,
// distinct from bonding facts (SecondaryKnown/PrimaryKnown/HandsetKnown)
// which persist independently of any one event. Caller holds t.mu.
func (t *Topology) applyWorldTransitionsLocked(events ruleevent.Set) {
	if events.Has(ruleevent.InCase) {
		t.world.JustWentInCase = !t.world.InCase
		t.world.InCase = true
	}
	if events.Has(ruleevent.OutCase) {
		t.world.InCase = false
		t.world.JustWentInCase = false
	}
	if events.Has(ruleevent.CaseLidOpen) {
		t.world.LidSupported = true
		t.world.LidOpen = true
	}
	if events.Has(ruleevent.CaseLidClosed) {
		t.world.LidSupported = true
		t.world.LidOpen = false
	}
	if events.Has(ruleevent.HandsetConnectedBREDR) {
		t.world.HandsetConnected = true
	}
	if events.HasAny(ruleevent.HandsetDisconnectedBREDR | ruleevent.HandsetLinkloss) {
		t.world.HandsetConnected = false
	}
	if events.Has(ruleevent.PeerConnectedBREDR) {
		t.world.PeerConnected = true
	}
	if events.HasAny(ruleevent.PeerDisconnectedBREDR | ruleevent.PeerLinkloss) {
		t.world.PeerConnected = false
	}
}

func (t *Topology) rulesForRole(role Role) []ruleBinding {
	if role == RoleSecondary {
		return t.secondaryRules
	}
	return t.primaryRules
}

func (t *Topology) isGoalActiveOrQueued(id int) bool {
	return t.engine.IsActive(id) || t.engine.IsPending(id)
}

// SubmitGoal is the explicit entry point a GoalRunner-driven caller uses
// once it has resolved which goal id a rule decision corresponds to; it
// applies the exclusivity/concurrency table.
func (t *Topology) SubmitGoal(id int, successEvent, failureEvent, timeoutEvent ruleevent.Set, contention goalengine.ContentionPolicy) {
	t.mu.Lock()
	if t.state == lifecycleStopping {
		t.mu.Unlock()
		return
	}
	runner := t.runner
	t.mu.Unlock()
	if runner == nil {
		return
	}
	proc := runner(id)
	if proc == nil {
		return
	}

	goal := &goalengine.Goal{
		ID:              id,
		CorrelationID:   uuid.New(),
		Procedure:       proc,
		ExclusiveGoalID: exclusivePairs[id],
		ConcurrentWith:  concurrentSets[id],
		Contention:      contention,
		SuccessEvent:    successEvent,
		FailureEvent:    failureEvent,
		TimeoutEvent:    timeoutEvent,
	}
	t.engine.Submit(goal)
}

func (t *Topology) handleGoalComplete(goal *goalengine.Goal, err error) {
	var toRaise ruleevent.Set
	if err == nil {
		toRaise = goal.SuccessEvent
	} else if err == context.DeadlineExceeded {
		toRaise = goal.TimeoutEvent
	} else {
		toRaise = goal.FailureEvent
	}

	switch goal.ID {
	case GoalBecomePrimary:
		if err == nil {
			t.mu.Lock()
			t.role = RolePrimary
			t.mu.Unlock()
			t.findRoleBackoff.Reset()
			t.notifyRoleChanged(RolePrimary)
		}
	case GoalBecomeSecondary:
		if err == nil {
			t.mu.Lock()
			t.role = RoleSecondary
			t.mu.Unlock()
			t.findRoleBackoff.Reset()
			t.notifyRoleChanged(RoleSecondary)
		}
	case GoalBecomeActingPrimary:
		if err == nil {
			t.mu.Lock()
			t.role = RoleActingPrimary
			t.mu.Unlock()
			t.findRoleBackoff.Reset()
			t.notifyRoleChanged(RoleActingPrimary)
		}
	case GoalDynamicHandover:
		if err == nil {
			t.mu.Lock()
			next := RoleSecondary
			if t.role == RoleSecondary {
				next = RolePrimary
			}
			t.role = next
			t.mu.Unlock()
			t.notifyRoleChanged(next)
		}
	case GoalInCaseWatchdog:
		if err == nil {
			// The watchdog elapsed without an out-of-case/lid-open event
			// cancelling it first: tear the peer link down rather than
			// hold it open indefinitely while sat in the case.
			t.SubmitGoal(GoalPrimaryDisconnectPeerProfiles, 0, 0, 0, goalengine.Wait)
			t.SubmitGoal(GoalReleasePeer, 0, 0, 0, goalengine.Wait)
		}
	}

	if toRaise != 0 {
		t.raise(toRaise)
	}
}
