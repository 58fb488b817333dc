package linkpolicy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMirror struct{ steady bool }

func (f *fakeMirror) IsACLConnectedSteady() bool { return f.steady }

func TestInitialStateDisconnected(t *testing.T) {
	sm := New("AA:BB", nil, nil)
	assert.Equal(t, StateDisconnected, sm.State())
	assert.False(t, sm.Locked())
}

func TestConnectThenSetTargetSniffEntersSniffWhenMirrorSteady(t *testing.T) {
	m := &fakeMirror{steady: true}
	sm := New("AA:BB", m, nil)
	sm.HandleConnectInd()
	assert.Equal(t, StateActive, sm.State())

	reached := sm.SetTarget(TargetSniff)
	assert.False(t, reached)
	assert.Equal(t, StateEnterSniff, sm.State())
	assert.True(t, sm.Locked())

	sm.HandleModeChange(TargetSniff)
	assert.Equal(t, StateSniff, sm.State())
	assert.False(t, sm.Locked())
}

func TestSetTargetSniffBlockedUntilMirrorSteady(t *testing.T) {
	m := &fakeMirror{steady: false}
	sm := New("AA:BB", m, nil)
	sm.HandleConnectInd()

	sm.SetTarget(TargetSniff)
	assert.Equal(t, StateActive, sm.State(), "must not enter sniff while mirror main-SM is mid-transition")
}

func TestActivePeriodReturnsToSniffAfterWindow(t *testing.T) {
	m := &fakeMirror{steady: true}
	sm := New("AA:BB", m, nil)
	sm.HandleConnectInd()
	sm.SetTarget(TargetSniff)
	sm.HandleModeChange(TargetSniff)
	require.Equal(t, StateSniff, sm.State())

	sm.ActivePeriod(20 * time.Millisecond)
	assert.Equal(t, StateExitSniff, sm.State())
	sm.HandleModeChange(TargetActive)
	assert.Equal(t, StateActive, sm.State())

	require.Eventually(t, func() bool {
		return sm.State() == StateEnterSniff
	}, time.Second, time.Millisecond, "active period should expire back toward sniff")
}

func TestDisconnectResetsState(t *testing.T) {
	sm := New("AA:BB", &fakeMirror{steady: true}, nil)
	sm.HandleConnectInd()
	sm.SetTarget(TargetSniff)

	sm.HandleDisconnectInd()
	assert.Equal(t, StateDisconnected, sm.State())

	// Without a fresh ConnectInd, SetTarget must not progress (not
	// initialised).
	reached := sm.SetTarget(TargetActive)
	assert.False(t, reached)
	assert.Equal(t, StateDisconnected, sm.State())
}

func TestHandleRoleCfmFailureSchedulesRetry(t *testing.T) {
	m := &fakeMirror{steady: true}
	sm := New("AA:BB", m, nil)
	sm.HandleConnectInd()
	sm.SetTarget(TargetSniff)
	sm.HandleModeChange(TargetSniff)
	require.Equal(t, StateSniff, sm.State())

	// Simulate failing to exit sniff, then recovering.
	sm.SetTarget(TargetActive)
	require.Equal(t, StateExitSniff, sm.State())
	sm.HandleRoleCfm(RoleCfmFailure)

	// Still in exit-sniff; retry timer will re-evaluate but the mode
	// hasn't confirmed, so state doesn't change on its own.
	assert.Equal(t, StateExitSniff, sm.State())
}
