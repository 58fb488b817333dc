package mirror

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransitionForDisconnectedAlwaysBringsUpACLFirst(t *testing.T) {
	next, ok := transitionFor(StateDisconnected, TargetA2DPRouted)
	assert.True(t, ok)
	assert.Equal(t, StateACLConnecting, next)

	next, ok = transitionFor(StateSwitch, TargetESCOConnected)
	assert.True(t, ok)
	assert.Equal(t, StateACLConnecting, next)
}

func TestTransitionForA2DPConnectedTowardESCORequiresDisconnectFirst(t *testing.T) {
	next, ok := transitionFor(StateA2DPConnected, TargetESCOConnected)
	assert.True(t, ok)
	assert.Equal(t, StateA2DPDisconnecting, next, "eSCO has priority: A2DP must come down first")
}

func TestTransitionForA2DPRoutedToConnectedIsLockFree(t *testing.T) {
	next, ok := transitionFor(StateA2DPRouted, TargetA2DPConnected)
	assert.False(t, ok)
	assert.Equal(t, StateA2DPConnected, next)
}

func TestTransitionForNoOpWhenAlreadyAtTarget(t *testing.T) {
	next, ok := transitionFor(StateACLConnected, TargetACLConnected)
	assert.False(t, ok)
	assert.Equal(t, StateACLConnected, next)
}

func TestTransitionForESCOConnectedTowardDisconnectedGoesThroughESCODisconnecting(t *testing.T) {
	next, ok := transitionFor(StateESCOConnected, TargetDisconnected)
	assert.True(t, ok)
	assert.Equal(t, StateESCODisconnecting, next)
}

func TestLandingStateFallsBackToPriorStepOnFailure(t *testing.T) {
	assert.Equal(t, StateDisconnected, landingState(StateACLConnecting, false))
	assert.Equal(t, StateACLConnected, landingState(StateACLConnecting, true))
	assert.Equal(t, StateACLConnected, landingState(StateESCOConnecting, false))
	assert.Equal(t, StateESCOConnected, landingState(StateESCOConnecting, true))
}
