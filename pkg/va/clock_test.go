package va

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClockForIdleLowPower(t *testing.T) {
	assert.Equal(t, ClockSlow, ClockFor(StateIdle, true))
	assert.Equal(t, ClockBase, ClockFor(StateIdle, false))
}

func TestClockForCaptureActiveAlwaysTurbo(t *testing.T) {
	assert.Equal(t, ClockTurbo, ClockFor(StateLiveCapturing, true))
	assert.Equal(t, ClockTurbo, ClockFor(StateWUWCapturing, false))
}

func TestClockForWUWDetectingIsBase(t *testing.T) {
	assert.Equal(t, ClockBase, ClockFor(StateWUWDetecting, true))
	assert.Equal(t, ClockBase, ClockFor(StateWUWDetecting, false))
}

func TestIsLowPowerExcludesMultiMicCVC(t *testing.T) {
	assert.True(t, IsLowPower(false))
	assert.False(t, IsLowPower(true))
}
