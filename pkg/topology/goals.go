package topology

// Goal identifiers. Zero is
// reserved by goalengine.Goal.ExclusiveGoalID to mean "no exclusion", so
// ids start at 1.
const (
	GoalPairPeer int = iota + 1
	GoalFindRole
	GoalSecondaryConnectPeer
	GoalPrimaryConnectablePeer
	GoalPrimaryConnectPeerProfiles
	GoalPrimaryDisconnectPeerProfiles
	GoalNoRoleIdle
	GoalConnectHandset
	GoalDisconnectHandset
	GoalConnectableHandset
	GoalLEConnectableHandset
	GoalBecomePrimary
	GoalBecomeSecondary
	GoalBecomeActingPrimary
	GoalRoleSwitchToSecondary
	GoalNoRoleFindRole
	GoalCancelFindRole
	GoalReleasePeer
	GoalDynamicHandover
	GoalSystemStop
	GoalAllowHandsetConnect
	GoalDisconnectLRUHandset
	GoalEnableConnectablePeer
	GoalDisableConnectablePeer
	GoalInCaseWatchdog
)

// InCaseWatchdogSeconds is the configured in-case watchdog timer that
// guards the primary's in-case teardown goal.
const InCaseWatchdogSeconds = 30

// exclusivePairs names, for each goal, the other goal id that must be
// cancelled (CancelOthers) or awaited (Wait) before it may run. Goals
// not listed have no exclusive partner.
var exclusivePairs = map[int]int{
	GoalBecomePrimary:                 GoalBecomeSecondary,
	GoalBecomeSecondary:               GoalBecomePrimary,
	GoalBecomeActingPrimary:           GoalBecomePrimary,
	GoalConnectHandset:                GoalDisconnectHandset,
	GoalDisconnectHandset:             GoalConnectHandset,
	GoalPrimaryConnectPeerProfiles:    GoalPrimaryDisconnectPeerProfiles,
	GoalPrimaryDisconnectPeerProfiles: GoalPrimaryConnectPeerProfiles,
	GoalFindRole:                      GoalNoRoleIdle,
	GoalNoRoleIdle:                    GoalFindRole,
	GoalDynamicHandover:               GoalBecomePrimary,
	GoalNoRoleFindRole:                GoalCancelFindRole,
	GoalCancelFindRole:                GoalNoRoleFindRole,
	GoalEnableConnectablePeer:         GoalDisableConnectablePeer,
	GoalDisableConnectablePeer:        GoalEnableConnectablePeer,
}

// concurrentSets names goal ids that may run alongside a given goal even
// though an exclusive partner is active.
var concurrentSets = map[int][]int{
	GoalConnectableHandset:   {GoalConnectHandset, GoalLEConnectableHandset},
	GoalLEConnectableHandset: {GoalConnectHandset, GoalConnectableHandset},
	GoalAllowHandsetConnect:  {GoalConnectableHandset, GoalLEConnectableHandset},
}
