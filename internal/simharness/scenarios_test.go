package simharness_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tws-core/earbud-core/internal/simharness"
	"github.com/tws-core/earbud-core/pkg/goalengine"
	"github.com/tws-core/earbud-core/pkg/linkpolicy"
	"github.com/tws-core/earbud-core/pkg/mirror"
	"github.com/tws-core/earbud-core/pkg/ruleevent"
	"github.com/tws-core/earbud-core/pkg/topology"
	"github.com/tws-core/earbud-core/pkg/va"
)

type rolesClient struct {
	roleChanges []topology.Role
	stopConfirm []bool
}

func (c *rolesClient) RoleChanged(role topology.Role) { c.roleChanges = append(c.roleChanges, role) }
func (c *rolesClient) StartConfirm(topology.Role)      {}
func (c *rolesClient) StopConfirm(success bool)        { c.stopConfirm = append(c.stopConfirm, success) }

func instant(err error) goalengine.Procedure {
	return goalengine.ProcedureFunc(func(ctx context.Context) error { return err })
}

// newFindRoleRunner wires a topology.GoalRunner that simulates a
// controller resolving peer superiority right after the connectable-peer
// goal succeeds: it raises ROLE_SELECTED_PRIMARY/SECONDARY exactly as a
// real FindRole controller operation would signal its outcome, letting
// the real PriSelectedPrimary/PriNoRoleSelectedSecondary rules submit
// the become-primary/become-secondary goal rather than bypassing rule
// admission.
func newFindRoleRunner(top *topology.Topology, primary bool) topology.GoalRunner {
	return func(id int) goalengine.Procedure {
		switch id {
		case topology.GoalPrimaryConnectablePeer, topology.GoalSecondaryConnectPeer:
			return goalengine.ProcedureFunc(func(ctx context.Context) error {
				if primary {
					top.RaiseEvents(ruleevent.Set(ruleevent.RoleSelectedPrimary))
				} else {
					top.RaiseEvents(ruleevent.Set(ruleevent.RoleSelectedSecondary))
				}
				return nil
			})
		case topology.GoalBecomePrimary, topology.GoalBecomeSecondary:
			return instant(nil)
		default:
			return instant(nil)
		}
	}
}

// TestScenarioS1PeerPairedOutCaseAssignsRoles encodes the end-to-end
// peer-paired-out-of-case scenario: both earbuds raise PEER_PAIRED, one
// resolves to Primary and the other to Secondary, each notifies
// ROLE_CHANGED, and the mirror main-SM can then reach ACL_CONNECTED with
// no eSCO/A2DP target pending.
func TestScenarioS1PeerPairedOutCaseAssignsRoles(t *testing.T) {
	var primaryTop, secondaryTop *topology.Topology
	primaryTop = topology.New(func(id int) goalengine.Procedure {
		return newFindRoleRunner(primaryTop, true)(id)
	}, nil)
	secondaryTop = topology.New(func(id int) goalengine.Procedure {
		return newFindRoleRunner(secondaryTop, false)(id)
	}, nil)

	primaryClient := &rolesClient{}
	secondaryClient := &rolesClient{}
	primaryTop.RegisterMessageClient(primaryClient)
	secondaryTop.RegisterMessageClient(secondaryClient)

	scenario := simharness.Scenario{
		Name: "S1 peer-paired out-of-case",
		Steps: []simharness.Step{
			{Name: "both earbuds start out of case", Do: func(t *testing.T) {
				primaryTop.RaiseEvents(ruleevent.Set(ruleevent.OutCase))
				secondaryTop.RaiseEvents(ruleevent.Set(ruleevent.OutCase))
			}},
			{Name: "both earbuds raise peer-paired", Do: func(t *testing.T) {
				primaryTop.RaiseEvents(ruleevent.Set(ruleevent.PeerPaired))
				secondaryTop.RaiseEvents(ruleevent.Set(ruleevent.PeerPaired))
			}},
			{Name: "roles resolve to primary and secondary", Do: func(t *testing.T) {
				require.Eventually(t, func() bool {
					return primaryTop.GetRole() == topology.RolePrimary
				}, time.Second, time.Millisecond)
				require.Eventually(t, func() bool {
					return secondaryTop.GetRole() == topology.RoleSecondary
				}, time.Second, time.Millisecond)
				assert.Equal(t, []topology.Role{topology.RolePrimary}, primaryClient.roleChanges)
				assert.Equal(t, []topology.Role{topology.RoleSecondary}, secondaryClient.roleChanges)
			}},
			{Name: "mirror ACL reaches steady with no SCO/A2DP target", Do: func(t *testing.T) {
				sm := mirror.New("AA:BB:CC:DD:EE:FF", true, mirror.Preconditions{}, nil)
				reached := sm.SetTarget(mirror.TargetACLConnected)
				assert.False(t, reached, "ACL_CONNECTING must be entered before landing")
				sm.ConfirmConnected()
				assert.Equal(t, mirror.StateACLConnected, sm.State())
			}},
		},
	}
	scenario.Run(t)
}

// TestScenarioS2InboundSCOEntersEscoConnectedAndRequestsActive encodes
// the inbound-SCO scenario: an admissible mirrored HFP call moves the
// mirror target to ESCO_CONNECTED and the peer link is requested Active
// for the configured active-period while the transition is in flight.
func TestScenarioS2InboundSCOEntersEscoConnectedAndRequestsActive(t *testing.T) {
	var activeRequested time.Duration
	lp := linkpolicy.New("AA:BB:CC:DD:EE:FF", nil, nil)

	pre := mirror.Preconditions{
		RequestPeerActive: func(d time.Duration) { activeRequested = d },
	}
	sm := mirror.New("AA:BB:CC:DD:EE:FF", true, pre, nil)

	scenario := simharness.Scenario{
		Name: "S2 inbound SCO",
		Steps: []simharness.Step{
			{Name: "mirror ACL already steady", Do: func(t *testing.T) {
				sm.SetTarget(mirror.TargetACLConnected)
				sm.ConfirmConnected()
				require.Equal(t, mirror.StateACLConnected, sm.State())
			}},
			{Name: "admissible SCO call sets ESCO_CONNECTED target", Do: func(t *testing.T) {
				target := mirror.Derive(mirror.DerivationInputs{
					PeerSigConnected:                 true,
					AudioSyncL2CAPUp:                 true,
					HandsetConnected:                 true,
					PeerQHSReady:                     true,
					TargetHandsetKnown:               true,
					KeySyncCompleteTarget:            true,
					TargetHandsetIsCurrentlyMirrored: true,
					MirroredHFPActiveSCO:             true,
					ESCOMirroringEnabled:             true,
					VoiceSourceSupported:             mirror.IsVoiceSourceAdmissible(12),
				})
				require.Equal(t, mirror.TargetESCOConnected, target)
				reached := sm.SetTarget(target)
				assert.False(t, reached)
				assert.Equal(t, mirror.StateESCOConnecting, sm.State())
			}},
			{Name: "peer link requested active for the transition", Do: func(t *testing.T) {
				assert.Equal(t, 2*time.Second, activeRequested)
			}},
			{Name: "controller confirms and peer link enters active", Do: func(t *testing.T) {
				sm.ConfirmConnected()
				assert.Equal(t, mirror.StateESCOConnected, sm.State())

				lp.HandleConnectInd()
				lp.SetTarget(linkpolicy.TargetActive)
				assert.Equal(t, linkpolicy.StateActive, lp.State())
			}},
		},
	}
	scenario.Run(t)
}

// TestScenarioS4WakeWordDetectThenAbort encodes the VA wake-word
// detect-then-ignore sequence: idle -> wuw-detecting -> wuw-detected
// (mic briefly non-interruptible) -> wuw-ignore-detected ->
// wuw-detecting (mic interruptible again).
func TestScenarioS4WakeWordDetectThenAbort(t *testing.T) {
	chains := &countingChains{}
	sm := va.New(chains, nil)

	scenario := simharness.Scenario{
		Name: "S4 wake-word detect then abort",
		Steps: []simharness.Step{
			{Name: "idle to wuw-detecting", Do: func(t *testing.T) {
				ok := sm.HandleEvent(va.EventWUWDetectStart)
				require.True(t, ok)
				assert.Equal(t, va.StateWUWDetecting, sm.State())
				assert.False(t, sm.IsUninterruptibleMicUser())
			}},
			{Name: "wuw-detecting to wuw-detected", Do: func(t *testing.T) {
				ok := sm.HandleEvent(va.EventWUWDetected)
				require.True(t, ok)
				assert.Equal(t, va.StateWUWDetected, sm.State())
			}},
			{Name: "wuw-detected to wuw-detecting on ignore", Do: func(t *testing.T) {
				ok := sm.HandleEvent(va.EventWUWIgnoreDetected)
				require.True(t, ok)
				assert.Equal(t, va.StateWUWDetecting, sm.State())
				assert.False(t, sm.IsUninterruptibleMicUser())
			}},
		},
	}
	scenario.Run(t)
}

type countingChains struct {
	applied []va.Action
}

func (c *countingChains) Apply(a va.Action) { c.applied = append(c.applied, a) }

// fakeHandoverController drives the handover scenario without a real
// controller: it always succeeds on the first attempt.
type fakeHandoverController struct {
	notified  bool
	permitted bool
}

func (f *fakeHandoverController) NotifyRoleChangeClients(forced bool) error { f.notified = true; return nil }
func (f *fakeHandoverController) CancelRoleChangeClients()                 {}
func (f *fakeHandoverController) PermitBT(allow bool) error                { f.permitted = allow; return nil }
func (f *fakeHandoverController) DisconnectLEConnections() error           { return nil }
func (f *fakeHandoverController) RequestControllerHandover(ctx context.Context) error {
	return nil
}

// TestScenarioS5HandoverOnGoingInCaseSwapsRoles encodes the going-in-case
// dynamic-handover scenario: HDMA's HANDOVER(in-case) reason drives the
// dynamic-handover goal, and on success both peers' topology instances
// swap roles and emit ROLE_CHANGED.
func TestScenarioS5HandoverOnGoingInCaseSwapsRoles(t *testing.T) {
	ctrl := &fakeHandoverController{}
	proc := mirror.NewHandoverProcedure(ctrl, 0)

	top := topology.New(func(id int) goalengine.Procedure {
		if id == topology.GoalDynamicHandover {
			return proc
		}
		return instant(nil)
	}, nil)

	client := &rolesClient{}
	top.RegisterMessageClient(client)

	scenario := simharness.Scenario{
		Name: "S5 handover on going in case",
		Steps: []simharness.Step{
			{Name: "HDMA requests handover", Do: func(t *testing.T) {
				top.SubmitGoal(topology.GoalDynamicHandover, ruleevent.Set(ruleevent.Handover), ruleevent.Set(ruleevent.HandoverFailed), ruleevent.Set(ruleevent.HandoverFailed), goalengine.CancelOthers)
			}},
			{Name: "role swaps to secondary on success", Do: func(t *testing.T) {
				require.Eventually(t, func() bool {
					return top.GetRole() == topology.RoleSecondary
				}, time.Second, time.Millisecond)
				assert.Equal(t, []topology.Role{topology.RoleSecondary}, client.roleChanges)
				assert.True(t, ctrl.notified)
			}},
		},
	}
	scenario.Run(t)
}

// TestScenarioS6StopCompletesWithinTimeout encodes the stop scenario:
// TwsTopology_Stop raises SHUTDOWN and the stop script completing within
// the configured timeout yields STOP_CFM(success).
func TestScenarioS6StopCompletesWithinTimeout(t *testing.T) {
	top := topology.New(func(id int) goalengine.Procedure {
		return instant(nil)
	}, nil)
	top.RaiseEvents(ruleevent.Set(ruleevent.PeerPaired))
	top.Start()

	client := &rolesClient{}
	top.RegisterMessageClient(client)

	scenario := simharness.Scenario{
		Name: "S6 stop within timeout",
		Steps: []simharness.Step{
			{Name: "stop completes successfully", Do: func(t *testing.T) {
				top.Stop()
				require.Len(t, client.stopConfirm, 1)
				assert.True(t, client.stopConfirm[0])
			}},
			{Name: "events raised after stop are dropped", Do: func(t *testing.T) {
				top.RaiseEvents(ruleevent.Set(ruleevent.PeerLinkloss))
			}},
		},
	}
	scenario.Run(t)
}
