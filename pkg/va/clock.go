package va

// ClockLevel is a DSP clock speed tier.
type ClockLevel uint8

const (
	ClockSlow ClockLevel = iota
	ClockBase
	ClockTurbo
)

func (c ClockLevel) String() string {
	switch c {
	case ClockSlow:
		return "slow"
	case ClockBase:
		return "base"
	case ClockTurbo:
		return "turbo"
	default:
		return "unknown"
	}
}

// isCaptureActive reports whether state has an active capture chain
// running (as opposed to merely listening for WUW or idle).
func isCaptureActive(s State) bool {
	switch s {
	case StateLiveCapturing, StateWUWCapturing, StateWUWCapturingDetectPending, StateLiveCapturingDetectPending:
		return true
	default:
		return false
	}
}

// ClockFor implements the DSP clock policy: idle/paused WUW in
// low-power allows a slow clock; WUW listening outside low-power
// requires the base clock; any capture-active state requires turbo.
func ClockFor(state State, lowPower bool) ClockLevel {
	if isCaptureActive(state) {
		return ClockTurbo
	}

	switch state {
	case StateIdle, StateWUWDetectingPaused:
		if lowPower {
			return ClockSlow
		}
		return ClockBase
	case StateWUWDetecting, StateWUWDetected:
		return ClockBase
	default:
		return ClockBase
	}
}

// IsLowPower reports whether low-power mode applies: the chain must not
// be using multi-mic CVC.
func IsLowPower(multiMicCVC bool) bool {
	return !multiMicCVC
}
