// Package topology implements the topology/role-selection goal engine:
// the rule sets that turn the 64-bit rule-event mask plus world-state
// into goal decisions, the goal
// engine wiring, the connect-handset sub-SM, and the start/stop
// lifecycle: one rule-event mask plus a small world snapshot, evaluated
// by a battery of pure rule functions.
package topology

import (
	"github.com/tws-core/earbud-core/pkg/goalengine"
	"github.com/tws-core/earbud-core/pkg/ruleevent"
)

// Role is the TWS role a device currently holds.
type Role uint8

const (
	RoleNone Role = iota
	RolePrimary
	RoleSecondary
	RoleActingPrimary
)

// WorldState is the small world-state snapshot every rule consumes
// alongside the event mask.
type WorldState struct {
	Role Role

	PeerConnected    bool
	HandsetConnected bool

	// SecondaryKnown/PrimaryKnown/HandsetKnown report whether this
	// device has a bonded peer (as secondary or primary) or handset at
	// all; an unpaired device ignores every rule that would otherwise
	// act on that bond.
	SecondaryKnown bool
	PrimaryKnown   bool
	HandsetKnown   bool

	InCase         bool
	JustWentInCase bool
	LidSupported   bool
	LidOpen        bool

	DFUActive bool

	AppProhibitConnect     bool
	RemainActiveForPeer    bool
	RemainActiveForHandset bool

	// IsActingPrimary suppresses connectable-peer page scan: an acting
	// primary already owns the peer link and should not re-advertise.
	IsActingPrimary bool

	// AnotherAGStreaming reports whether a different audio gateway is
	// mid-stream, used by PriConnectHandset's linkloss guard.
	AnotherAGStreaming bool

	// ReconnectPostHandover is consumed (and expected to be cleared by
	// the caller) once PriRoleSwitchConnectHandset runs: it distinguishes
	// a plain role-switch reconnect from the reconnect following a
	// just-completed dynamic handover.
	ReconnectPostHandover bool

	// PreviouslyConnectedProfiles is the profile bitmask the handset had
	// connected before its last disconnect/linkloss, consulted by every
	// PriConnectHandset variant except the out-of-case/pairing ones
	// (which always pull in HFP+A2DP regardless).
	PreviouslyConnectedProfiles HandsetProfile

	IsGoalActiveOrQueued func(id int) bool
}

func (w WorldState) goalBusy(id int) bool {
	if w.IsGoalActiveOrQueued == nil {
		return false
	}
	return w.IsGoalActiveOrQueued(id)
}

// lidClosedBlocksInCase is the "in case, lid closed or lid events
// unsupported, remain-active-for-peer not set" guard repeated by nearly
// every primary/secondary rule: while the device sits in a closed case
// there is no point paging a peer or handset that physically cannot hear
// the radio.
func (w WorldState) lidClosedBlocksInCase() bool {
	if !w.InCase || w.RemainActiveForPeer {
		return false
	}
	if !w.LidSupported {
		return true
	}
	return !w.LidOpen
}

// Rule is a pure function of the event mask and world-state, returning
// an admission decision.
type Rule func(mask ruleevent.Set, world WorldState) goalengine.Decision

// PriShutDown always runs: shutdown is unconditional once requested.
func PriShutDown(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !mask.Has(ruleevent.Shutdown) {
		return goalengine.DecisionIgnore
	}
	return goalengine.DecisionRun
}

// PriPeerPairedOutCase: run iff (not in case, or
// remain-active-for-peer, or lid open) and no-role-find-role is not
// active/queued.
func PriPeerPairedOutCase(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !mask.Has(ruleevent.PeerPaired) {
		return goalengine.DecisionIgnore
	}
	if world.goalBusy(GoalNoRoleFindRole) {
		return goalengine.DecisionIgnore
	}
	if !world.InCase || world.RemainActiveForPeer || (world.LidSupported && world.LidOpen) {
		return goalengine.DecisionRun
	}
	return goalengine.DecisionIgnore
}

// PriPeerPairedInCase mirrors PriPeerPairedOutCase for the case where the
// device is already in the case when pairing completes: it drives the
// same connectable-peer goal, just gated on the complementary in-case
// condition (in case, or remain-active-for-peer).
func PriPeerPairedInCase(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !mask.Has(ruleevent.PeerPaired) {
		return goalengine.DecisionIgnore
	}
	if !world.InCase && !world.RemainActiveForPeer {
		return goalengine.DecisionIgnore
	}
	return goalengine.DecisionRun
}

// PriPairPeer runs whenever no peer is bonded yet: it is the entry point
// into peer discovery/pairing, triggered by Start() raising NoPeer.
func PriPairPeer(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !mask.Has(ruleevent.NoPeer) {
		return goalengine.DecisionIgnore
	}
	return goalengine.DecisionRun
}

// PriEnableConnectablePeer: run iff the secondary is bonded, not already
// connected, this device is not acting primary, and (out of case, lid
// open, or remain-active-for-peer).
func PriEnableConnectablePeer(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !mask.HasAny(ruleevent.OutCase | ruleevent.CaseLidOpen | ruleevent.PeerDisconnectedBREDR | ruleevent.PeerLinkloss) {
		return goalengine.DecisionIgnore
	}
	if !world.SecondaryKnown {
		return goalengine.DecisionIgnore
	}
	if world.PeerConnected {
		return goalengine.DecisionIgnore
	}
	if world.IsActingPrimary {
		return goalengine.DecisionIgnore
	}
	if world.lidClosedBlocksInCase() {
		return goalengine.DecisionIgnore
	}
	return goalengine.DecisionRun
}

// PriDisableConnectablePeer: run once the secondary actually connects,
// so the page-scan window started by PriEnableConnectablePeer closes.
func PriDisableConnectablePeer(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !mask.Has(ruleevent.PeerConnectedBREDR) {
		return goalengine.DecisionIgnore
	}
	if !world.SecondaryKnown || !world.PeerConnected {
		return goalengine.DecisionIgnore
	}
	return goalengine.DecisionRun
}

// PriConnectPeerProfiles: once the peer BR/EDR link is up, bring up its
// profile set (peer signalling always; the rest only once out of case,
// unless a partial in-case connect mask says otherwise).
func PriConnectPeerProfiles(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !mask.Has(ruleevent.PeerConnectedBREDR) {
		return goalengine.DecisionIgnore
	}
	return goalengine.DecisionRun
}

// PriDisconnectPeerProfiles: run once the role is surrendered, tearing
// down the peer profile set the opposite of PriConnectPeerProfiles.
func PriDisconnectPeerProfiles(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !mask.Has(ruleevent.NoRole) {
		return goalengine.DecisionIgnore
	}
	return goalengine.DecisionRun
}

// PriReleasePeer: run once the device settles in the case without
// remain-active-for-peer set, releasing the peer link entirely.
func PriReleasePeer(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !mask.Has(ruleevent.InCase) {
		return goalengine.DecisionIgnore
	}
	if world.RemainActiveForPeer {
		return goalengine.DecisionIgnore
	}
	return goalengine.DecisionRun
}

// PriSelectedPrimary: a find-role outcome resolved this device as
// Primary; become it.
func PriSelectedPrimary(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !mask.Has(ruleevent.RoleSelectedPrimary) {
		return goalengine.DecisionIgnore
	}
	return goalengine.DecisionRun
}

// PriSelectedActingPrimary: a find-role outcome resolved this device as
// a temporary Acting Primary (peer unreachable, handset still served).
func PriSelectedActingPrimary(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !mask.Has(ruleevent.RoleSelectedActingPrimary) {
		return goalengine.DecisionIgnore
	}
	return goalengine.DecisionRun
}

// PriNoRoleSelectedSecondary: a find-role outcome resolved this
// previously roleless device as Secondary.
func PriNoRoleSelectedSecondary(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !mask.Has(ruleevent.RoleSelectedSecondary) {
		return goalengine.DecisionIgnore
	}
	if world.Role != RoleNone {
		return goalengine.DecisionIgnore
	}
	return goalengine.DecisionRun
}

// PriPrimarySelectedSecondary: an already-Primary device is told it has
// lost the election rerun and must switch down to Secondary, handing the
// handset connection off rather than discovering it fresh.
func PriPrimarySelectedSecondary(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !mask.Has(ruleevent.RoleSelectedSecondary) {
		return goalengine.DecisionIgnore
	}
	if world.Role != RolePrimary {
		return goalengine.DecisionIgnore
	}
	return goalengine.DecisionRun
}

// PriPeerLostFindRole: run iff role==primary, no
// role-switch goal active, secondary is not reachable (peer
// disconnected), and we did not just go in-case (unless
// remain-active-for-peer).
func PriPeerLostFindRole(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !mask.HasAny(ruleevent.PeerLinkloss | ruleevent.PeerDisconnectedBREDR) {
		return goalengine.DecisionIgnore
	}
	if world.Role != RolePrimary {
		return goalengine.DecisionIgnore
	}
	if world.goalBusy(GoalBecomePrimary) || world.goalBusy(GoalBecomeSecondary) || world.goalBusy(GoalRoleSwitchToSecondary) {
		return goalengine.DecisionIgnore
	}
	if world.PeerConnected {
		return goalengine.DecisionIgnore
	}
	if world.JustWentInCase && !world.RemainActiveForPeer {
		return goalengine.DecisionIgnore
	}
	return goalengine.DecisionRun
}

// PriPeerConnectedCancelFindRole: a peer reconnects while this device
// was mid-search for a role; stop searching rather than racing the two
// outcomes against each other.
func PriPeerConnectedCancelFindRole(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !mask.Has(ruleevent.PeerConnectedBREDR) {
		return goalengine.DecisionIgnore
	}
	if !world.goalBusy(GoalNoRoleFindRole) {
		return goalengine.DecisionIgnore
	}
	return goalengine.DecisionRun
}

// PriEnableConnectableHandset: run iff a handset is bonded, this device
// is Primary, the no-role-idle goal is not active, and (out of case,
// lid open, or remain-active-for-handset).
func PriEnableConnectableHandset(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !mask.HasAny(ruleevent.OutCase | ruleevent.CaseLidOpen | ruleevent.RoleSelectedPrimary | ruleevent.RoleSwitch) {
		return goalengine.DecisionIgnore
	}
	if !world.HandsetKnown {
		return goalengine.DecisionIgnore
	}
	if world.Role != RolePrimary {
		return goalengine.DecisionIgnore
	}
	if world.goalBusy(GoalNoRoleIdle) {
		return goalengine.DecisionIgnore
	}
	if world.InCase && !world.RemainActiveForHandset {
		if world.LidSupported && !world.LidOpen {
			return goalengine.DecisionIgnore
		}
		if !world.LidSupported {
			return goalengine.DecisionIgnore
		}
	}
	return goalengine.DecisionRun
}

// PriEnableLeConnectableHandset: run for a Primary iff out of case, lid
// open, or remain-active-for-handset — independent of whether a handset
// is already bonded, since LE adverts are how a *new* handset finds us.
func PriEnableLeConnectableHandset(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !mask.HasAny(ruleevent.OutCase | ruleevent.CaseLidOpen | ruleevent.RoleSelectedPrimary) {
		return goalengine.DecisionIgnore
	}
	if world.Role != RolePrimary {
		return goalengine.DecisionIgnore
	}
	if world.InCase && !world.RemainActiveForHandset {
		if world.LidSupported && !world.LidOpen {
			return goalengine.DecisionIgnore
		}
		if !world.LidSupported {
			return goalengine.DecisionIgnore
		}
	}
	return goalengine.DecisionRun
}

// PriDisableConnectableHandset: run only if a handset is
// BR/EDR-connected.
func PriDisableConnectableHandset(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !world.HandsetConnected {
		return goalengine.DecisionIgnore
	}
	return goalengine.DecisionRun
}

// ConnectReason parameterises PriConnectHandset.
type ConnectReason uint8

const (
	ConnectReasonRoleSwitch ConnectReason = iota
	ConnectReasonOutOfCase
	ConnectReasonPairing
	ConnectReasonLinkloss
	ConnectReasonUser
	ConnectReasonPostHandover
)

// HandsetProfile is a bit in the profile mask PriConnectHandset produces.
type HandsetProfile uint8

const (
	ProfileHFP HandsetProfile = 1 << iota
	ProfileA2DP
	ProfileAVRCP
)

// PriConnectHandset: for out-of-case/pairing always include HFP+A2DP;
// otherwise restrict to previouslyConnected (user and post-handover
// reconnects run even when that set is empty, other reasons are then
// ignored), and ignore outright if no handset is bonded, connection is
// app-prohibited, a role-switch reconnect finds a handset already
// connected, or a linkloss reconnect would contend with another AG that
// is mid-stream.
func PriConnectHandset(world WorldState, reason ConnectReason, previouslyConnected HandsetProfile) (goalengine.Decision, HandsetProfile) {
	if !world.HandsetKnown {
		return goalengine.DecisionIgnore, 0
	}
	if world.AppProhibitConnect {
		return goalengine.DecisionIgnore, 0
	}
	if reason == ConnectReasonLinkloss && world.AnotherAGStreaming {
		return goalengine.DecisionIgnore, 0
	}
	if reason == ConnectReasonRoleSwitch && world.HandsetConnected {
		return goalengine.DecisionIgnore, 0
	}

	alwaysConnect := reason == ConnectReasonOutOfCase || reason == ConnectReasonPairing || reason == ConnectReasonUser || reason == ConnectReasonPostHandover
	if previouslyConnected == 0 && !alwaysConnect {
		return goalengine.DecisionIgnore, 0
	}

	if reason == ConnectReasonOutOfCase || reason == ConnectReasonPairing {
		return goalengine.DecisionRunWithParams, previouslyConnected | ProfileHFP | ProfileA2DP
	}
	return goalengine.DecisionRunWithParams, previouslyConnected
}

// PriRoleSwitchConnectHandset reconnects the handset once a role switch
// completes; a pending post-handover reconnect (flagged on the world
// snapshot by the caller and expected to be cleared there) takes the
// post-handover reason instead of the plain role-switch one.
func PriRoleSwitchConnectHandset(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !mask.Has(ruleevent.RoleSwitch) {
		return goalengine.DecisionIgnore
	}
	reason := ConnectReasonRoleSwitch
	if world.ReconnectPostHandover {
		reason = ConnectReasonPostHandover
	}
	decision, _ := PriConnectHandset(world, reason, world.PreviouslyConnectedProfiles)
	return decision
}

// PriOutCaseConnectHandset reconnects the handset on leaving the case.
func PriOutCaseConnectHandset(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !mask.HasAny(ruleevent.OutCase | ruleevent.CaseLidOpen) {
		return goalengine.DecisionIgnore
	}
	decision, _ := PriConnectHandset(world, ConnectReasonOutOfCase, world.PreviouslyConnectedProfiles)
	return decision
}

// PriHandsetLinkLossReconnect reconnects the handset after a BR/EDR
// linkloss, unless another audio gateway is mid-stream.
func PriHandsetLinkLossReconnect(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !mask.Has(ruleevent.HandsetLinkloss) {
		return goalengine.DecisionIgnore
	}
	decision, _ := PriConnectHandset(world, ConnectReasonLinkloss, world.PreviouslyConnectedProfiles)
	return decision
}

// PriUserRequestConnectHandset reconnects the handset on an explicit
// user request (ConnectMRUHandset).
func PriUserRequestConnectHandset(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !mask.Has(ruleevent.UserRequestConnectHandset) {
		return goalengine.DecisionIgnore
	}
	decision, _ := PriConnectHandset(world, ConnectReasonUser, world.PreviouslyConnectedProfiles)
	return decision
}

// PriDisconnectHandset disconnects every bonded handset on an explicit
// disconnect-all request.
func PriDisconnectHandset(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !mask.Has(ruleevent.UserRequestDisconnectAllHandsets) {
		return goalengine.DecisionIgnore
	}
	return goalengine.DecisionRun
}

// PriDisconnectLruHandset: run on an explicit LRU-disconnect request iff
// a handset is connected and no connect/disconnect goal is already in
// flight for it.
func PriDisconnectLruHandset(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !mask.Has(ruleevent.UserRequestDisconnectLRUHandset) {
		return goalengine.DecisionIgnore
	}
	if world.goalBusy(GoalDisconnectHandset) || world.goalBusy(GoalConnectHandset) {
		return goalengine.DecisionIgnore
	}
	if !world.HandsetConnected {
		return goalengine.DecisionIgnore
	}
	return goalengine.DecisionRun
}

// PriInCaseDisconnectHandset: run once the device settles in the case
// while still connected to a handset.
func PriInCaseDisconnectHandset(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !mask.Has(ruleevent.InCase) {
		return goalengine.DecisionIgnore
	}
	if !world.HandsetConnected {
		return goalengine.DecisionIgnore
	}
	return goalengine.DecisionRun
}

// PriAllowHandsetConnect: run iff primary out-of-case (or
// remain-active set; lid not closed if lid-events enabled).
func PriAllowHandsetConnect(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if world.Role != RolePrimary {
		return goalengine.DecisionIgnore
	}
	if world.InCase && !world.RemainActiveForHandset {
		if world.LidSupported && !world.LidOpen {
			return goalengine.DecisionIgnore
		}
		if !world.LidSupported {
			return goalengine.DecisionIgnore
		}
	}
	return goalengine.DecisionRun
}

// InCaseWatchdogTimeout is the configured timer duration passed back by
// PriInCaseWatchdogStart's run-with-params decision.
const InCaseWatchdogTimeout = InCaseWatchdogSeconds

// PriInCaseWatchdogStart: run with configured timer iff in
// case, lid closed or lid events disabled, no peer-pairing active, and
// not in DFU.
func PriInCaseWatchdogStart(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !world.InCase {
		return goalengine.DecisionIgnore
	}
	if world.LidSupported && world.LidOpen {
		return goalengine.DecisionIgnore
	}
	if mask.Has(ruleevent.PairingActivityChanged) {
		return goalengine.DecisionIgnore
	}
	if world.goalBusy(GoalPairPeer) {
		return goalengine.DecisionIgnore
	}
	if world.DFUActive {
		return goalengine.DecisionIgnore
	}
	return goalengine.DecisionRunWithParams
}

// PriOutOfCaseWatchdogStop: run (cancelling any in-flight in-case
// watchdog) once the lid opens or the device leaves the case outright.
func PriOutOfCaseWatchdogStop(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if world.InCase {
		if !world.LidSupported {
			return goalengine.DecisionIgnore
		}
		if !world.LidOpen {
			return goalengine.DecisionIgnore
		}
	}
	return goalengine.DecisionRun
}

// --- Secondary rule set. A Secondary never talks to a handset directly,
// so its rule set covers peer pairing/loss, the in-case idle teardown,
// and the propagated in-case watchdog.

// SecShutDown always runs: shutdown is unconditional once requested.
func SecShutDown(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !mask.Has(ruleevent.Shutdown) {
		return goalengine.DecisionIgnore
	}
	return goalengine.DecisionRun
}

// SecPeerPairedOutCase mirrors PriPeerPairedOutCase for a Secondary:
// run iff not in case (or remain-active-for-peer, or lid open) and no
// find-role goal is in flight.
func SecPeerPairedOutCase(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !mask.Has(ruleevent.PeerPaired) {
		return goalengine.DecisionIgnore
	}
	if world.goalBusy(GoalNoRoleFindRole) {
		return goalengine.DecisionIgnore
	}
	if !world.InCase || world.RemainActiveForPeer || (world.LidSupported && world.LidOpen) {
		return goalengine.DecisionRun
	}
	return goalengine.DecisionIgnore
}

// SecRoleSwitchPeerConnect: once this device is confirmed Secondary,
// connect to its Primary if not already connected.
func SecRoleSwitchPeerConnect(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !mask.Has(ruleevent.RoleSwitch) {
		return goalengine.DecisionIgnore
	}
	if !world.PrimaryKnown {
		return goalengine.DecisionIgnore
	}
	if world.lidClosedBlocksInCase() {
		return goalengine.DecisionIgnore
	}
	if world.PeerConnected {
		return goalengine.DecisionIgnore
	}
	return goalengine.DecisionRun
}

// SecNoRoleIdle: a Secondary settled in the case (and not in DFU or
// remain-active-for-peer) goes idle rather than keep searching.
func SecNoRoleIdle(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !mask.Has(ruleevent.InCase) {
		return goalengine.DecisionIgnore
	}
	if world.DFUActive || world.RemainActiveForPeer {
		return goalengine.DecisionIgnore
	}
	return goalengine.DecisionRun
}

// SecFailedConnectFindRole: a Secondary whose connect-to-primary attempt
// failed (primary bonded, no peer link) searches for a role again.
func SecFailedConnectFindRole(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !mask.Has(ruleevent.FailedPeerConnect) {
		return goalengine.DecisionIgnore
	}
	if !world.PrimaryKnown {
		return goalengine.DecisionIgnore
	}
	if world.PeerConnected {
		return goalengine.DecisionIgnore
	}
	return goalengine.DecisionRun
}

// SecFailedSwitchSecondaryFindRole: a device that failed to switch into
// Secondary (or holds the role without a peer link) searches again.
func SecFailedSwitchSecondaryFindRole(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !mask.Has(ruleevent.FailedSwitchSecondary) {
		return goalengine.DecisionIgnore
	}
	if !world.PrimaryKnown {
		return goalengine.DecisionIgnore
	}
	if world.Role == RoleSecondary && world.PeerConnected {
		return goalengine.DecisionIgnore
	}
	return goalengine.DecisionRun
}

// SecPeerLostFindRole mirrors PriPeerLostFindRole: a Secondary that
// loses its Primary must also seek a role.
func SecPeerLostFindRole(mask ruleevent.Set, world WorldState) goalengine.Decision {
	if !mask.HasAny(ruleevent.PeerLinkloss | ruleevent.PeerDisconnectedBREDR) {
		return goalengine.DecisionIgnore
	}
	if world.Role != RoleSecondary {
		return goalengine.DecisionIgnore
	}
	if world.PeerConnected {
		return goalengine.DecisionIgnore
	}
	if world.JustWentInCase && !world.RemainActiveForPeer {
		return goalengine.DecisionIgnore
	}
	return goalengine.DecisionRun
}

// SecInCaseWatchdogStart mirrors PriInCaseWatchdogStart for a Secondary.
func SecInCaseWatchdogStart(mask ruleevent.Set, world WorldState) goalengine.Decision {
	return PriInCaseWatchdogStart(mask, world)
}

// SecOutOfCaseWatchdogStop mirrors PriOutOfCaseWatchdogStop for a
// Secondary.
func SecOutOfCaseWatchdogStop(mask ruleevent.Set, world WorldState) goalengine.Decision {
	return PriOutOfCaseWatchdogStop(mask, world)
}
