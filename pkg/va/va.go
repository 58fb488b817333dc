// Package va implements the voice-assistant capture state machine: it
// orchestrates the mic, encode and wake-word
// (WUW) chains through idle, live-capture and wake-word-detection
// lifecycles: a (state, event) -> (next state, ordered action list)
// transition table, since here the actions themselves (not just the
// state) are the externally-observable contract with the audio
// subsystem.
package va

import (
	"fmt"
	"sync"

	"github.com/tws-core/earbud-core/internal/corelog"
)

// State is a VA capture state.
type State uint8

const (
	StateIdle State = iota
	StateLiveCapturing
	StateWUWDetecting
	StateWUWDetectingPaused
	StateWUWDetected
	StateWUWCapturing
	StateWUWCapturingDetectPending
	StateLiveCapturingDetectPending
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLiveCapturing:
		return "live-capturing"
	case StateWUWDetecting:
		return "wuw-detecting"
	case StateWUWDetectingPaused:
		return "wuw-detecting-paused"
	case StateWUWDetected:
		return "wuw-detected"
	case StateWUWCapturing:
		return "wuw-capturing"
	case StateWUWCapturingDetectPending:
		return "wuw-capturing-detect-pending"
	case StateLiveCapturingDetectPending:
		return "live-capturing-detect-pending"
	default:
		return "unknown"
	}
}

// Event drives the capture SM.
type Event uint8

const (
	EventLiveCaptureStart Event = iota
	EventWUWCaptureStart
	EventCaptureStop
	EventWUWDetectStart
	EventWUWDetectStop
	EventWUWDetected
	EventWUWIgnoreDetected
	EventMicStart
	EventMicStop
)

func (e Event) String() string {
	switch e {
	case EventLiveCaptureStart:
		return "live-capture-start"
	case EventWUWCaptureStart:
		return "wuw-capture-start"
	case EventCaptureStop:
		return "capture-stop"
	case EventWUWDetectStart:
		return "wuw-detect-start"
	case EventWUWDetectStop:
		return "wuw-detect-stop"
	case EventWUWDetected:
		return "wuw-detected"
	case EventWUWIgnoreDetected:
		return "wuw-ignore-detected"
	case EventMicStart:
		return "mic-start"
	case EventMicStop:
		return "mic-stop"
	default:
		return "unknown"
	}
}

// Action is one elementary operation on the mic/encode/WUW chains or the
// DSP clock/keep-on controls.
type Action uint8

const (
	ActionMarkMicNonInterruptible Action = iota
	ActionMarkMicInterruptible
	ActionKeepDSPOn
	ActionExitKeepOn
	ActionBoostClock
	ActionBaseClock
	ActionSlowClock
	ActionUpdateKickPeriod
	ActionSetLiveCaptureSampleRate
	ActionSetWUWSampleRate
	ActionLoadDownloadableCaps
	ActionCreateMicChainLive
	ActionCreateMicChainWUW
	ActionCreateEncodeChainLive
	ActionCreateWUWChain
	ActionConnectWUWChainToMicChain
	ActionUpdateDSPClockSpeed
	ActionUpdateDSPClock
	ActionBufferMicChainEncodeOutput
	ActionStartEncodeChain
	ActionStartMicChain
	ActionStartWUWChain
	ActionActivateMicChainWUWOutput
	ActionStartGraphManagerDelegation
	ActionStopGraphManagerDelegation
	ActionDeactivateMicWUWOutput
	ActionStopWUWChain
	ActionDeactivateEncodeOutput
	ActionActivateMicChainEncodeOutputLive
	ActionDestroyMicChain
	ActionDestroyEncodeChain
	ActionDestroyWUWChain
	ActionStopEncodeChain
	ActionStopMicChain
)

func (a Action) String() string {
	names := [...]string{
		"mark-mic-non-interruptible", "mark-mic-interruptible", "keep-dsp-on", "exit-keep-on",
		"boost-clock", "base-clock", "slow-clock", "update-kick-period",
		"set-live-capture-sample-rate", "set-wuw-sample-rate", "load-downloadable-caps",
		"create-mic-chain-live", "create-mic-chain-wuw", "create-encode-chain-live", "create-wuw-chain",
		"connect-wuw-chain-to-mic-chain", "update-dsp-clock-speed", "update-dsp-clock",
		"buffer-mic-chain-encode-output", "start-encode-chain", "start-mic-chain", "start-wuw-chain",
		"activate-mic-chain-wuw-output", "start-graph-manager-delegation", "stop-graph-manager-delegation",
		"deactivate-mic-wuw-output", "stop-wuw-chain", "deactivate-encode-output",
		"activate-mic-chain-encode-output-live", "destroy-mic-chain", "destroy-encode-chain",
		"destroy-wuw-chain", "stop-encode-chain", "stop-mic-chain",
	}
	if int(a) < len(names) {
		return names[a]
	}
	return fmt.Sprintf("action(%d)", a)
}

// Chains is the audio-subsystem collaborator the SM drives; each
// transition applies its action list to Chains in order.
type Chains interface {
	Apply(a Action)
}

type transition struct {
	next    State
	actions []Action
}

type key struct {
	state State
	event Event
}

// table is the full (state, event) -> (next, ordered actions) map.
// Pairs not present are ignored: the event has no effect in that state.
var table = map[key]transition{
	{StateIdle, EventLiveCaptureStart}: {StateLiveCapturing, []Action{
		ActionMarkMicNonInterruptible, ActionKeepDSPOn, ActionBoostClock, ActionUpdateKickPeriod,
		ActionSetLiveCaptureSampleRate, ActionCreateMicChainLive, ActionCreateEncodeChainLive,
		ActionUpdateDSPClock, ActionExitKeepOn, ActionStartEncodeChain, ActionStartMicChain,
	}},
	{StateIdle, EventWUWDetectStart}: {StateWUWDetecting, []Action{
		ActionKeepDSPOn, ActionBoostClock, ActionUpdateKickPeriod, ActionSetWUWSampleRate,
		ActionLoadDownloadableCaps, ActionCreateMicChainWUW, ActionCreateWUWChain,
		ActionConnectWUWChainToMicChain, ActionUpdateDSPClockSpeed, ActionUpdateDSPClock,
		ActionExitKeepOn, ActionBufferMicChainEncodeOutput, ActionStartWUWChain, ActionStartMicChain,
		ActionActivateMicChainWUWOutput, ActionStartGraphManagerDelegation,
	}},

	{StateWUWDetecting, EventLiveCaptureStart}: {StateLiveCapturingDetectPending, []Action{
		ActionMarkMicNonInterruptible, ActionStopGraphManagerDelegation, ActionDeactivateMicWUWOutput,
		ActionStopWUWChain, ActionDeactivateEncodeOutput, ActionBoostClock, ActionUpdateKickPeriod,
		ActionCreateEncodeChainLive, ActionUpdateDSPClock, ActionStartEncodeChain,
		ActionActivateMicChainEncodeOutputLive,
	}},
	{StateWUWDetecting, EventMicStop}: {StateWUWDetectingPaused, []Action{
		ActionStopGraphManagerDelegation, ActionDeactivateMicWUWOutput, ActionStopMicChain,
	}},
	{StateWUWDetecting, EventWUWDetected}: {StateWUWDetected, nil},
	{StateWUWDetecting, EventCaptureStop}: {StateIdle, []Action{
		ActionStopGraphManagerDelegation, ActionStopWUWChain, ActionStopMicChain,
		ActionDestroyWUWChain, ActionDestroyMicChain, ActionBaseClock,
	}},

	{StateWUWDetectingPaused, EventMicStart}: {StateWUWDetecting, []Action{
		ActionStartMicChain, ActionActivateMicChainWUWOutput, ActionStartGraphManagerDelegation,
	}},
	{StateWUWDetectingPaused, EventCaptureStop}: {StateIdle, []Action{
		ActionDestroyWUWChain, ActionDestroyMicChain, ActionBaseClock,
	}},

	{StateWUWDetected, EventWUWCaptureStart}: {StateWUWCapturing, []Action{
		ActionMarkMicNonInterruptible, ActionBoostClock, ActionCreateEncodeChainLive,
		ActionUpdateDSPClock, ActionStartEncodeChain, ActionActivateMicChainEncodeOutputLive,
	}},
	{StateWUWDetected, EventWUWIgnoreDetected}: {StateWUWDetecting, []Action{
		ActionActivateMicChainWUWOutput, ActionStartGraphManagerDelegation,
	}},

	{StateWUWCapturing, EventCaptureStop}: {StateWUWDetecting, []Action{
		ActionDeactivateEncodeOutput, ActionStopEncodeChain, ActionDestroyEncodeChain,
		ActionMarkMicInterruptible, ActionActivateMicChainWUWOutput, ActionStartGraphManagerDelegation,
		ActionBaseClock,
	}},
	{StateWUWCapturing, EventLiveCaptureStart}: {StateWUWCapturingDetectPending, []Action{
		ActionMarkMicNonInterruptible,
	}},

	{StateWUWCapturingDetectPending, EventCaptureStop}: {StateWUWCapturing, nil},
	{StateWUWCapturingDetectPending, EventWUWDetectStop}: {StateLiveCapturing, []Action{
		ActionActivateMicChainEncodeOutputLive,
	}},

	// WUW output is reactivated here while the SM is still logically
	// non-interruptible (the state flip to WUWDetecting happens after
	// these actions run) so the WUW pipeline is already warm once
	// arbitration opens up. Keep this ordering.
	{StateLiveCapturingDetectPending, EventCaptureStop}: {StateWUWDetecting, []Action{
		ActionActivateMicChainWUWOutput, ActionStartGraphManagerDelegation,
	}},
	{StateLiveCapturingDetectPending, EventWUWDetectStop}: {StateWUWCapturing, nil},

	{StateLiveCapturing, EventCaptureStop}: {StateIdle, []Action{
		ActionDeactivateEncodeOutput, ActionStopEncodeChain, ActionStopMicChain,
		ActionDestroyEncodeChain, ActionDestroyMicChain, ActionMarkMicInterruptible, ActionBaseClock,
	}},
	{StateLiveCapturing, EventWUWDetectStart}: {StateLiveCapturingDetectPending, []Action{
		ActionLoadDownloadableCaps,
	}},
}

// SM is the VA capture state machine for one device.
type SM struct {
	mu     sync.Mutex
	state  State
	chains Chains
	logger corelog.Logger
}

// New creates an idle capture SM driving chains.
func New(chains Chains, logger corelog.Logger) *SM {
	if logger == nil {
		logger = corelog.NoopLogger{}
	}
	return &SM{state: StateIdle, chains: chains, logger: logger}
}

// State returns the current state.
func (s *SM) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// HandleEvent applies event to the SM, running its action list against
// Chains in order. Returns false if the event has no transition defined
// for the current state (a no-op, not an error: the table only defines
// the legal subset).
func (s *SM) HandleEvent(event Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := table[key{s.state, event}]
	if !ok {
		return false
	}

	prev := s.state
	for _, a := range t.actions {
		s.chains.Apply(a)
	}
	s.state = t.next

	s.logger.Log(corelog.Event{
		Component: "va",
		Layer:     corelog.LayerSM,
		Category:  corelog.CategoryTransition,
		Transition: &corelog.TransitionEvent{
			OldState: prev.String(),
			NewState: t.next.String(),
		},
	})
	return true
}

// HandleMicDisconnect drives the SM with mic-stop on an external
// mic-arbitration disconnect indication.
func (s *SM) HandleMicDisconnect() bool { return s.HandleEvent(EventMicStop) }

// HandleMicReconnect drives the SM with mic-start on reconnect.
func (s *SM) HandleMicReconnect() bool { return s.HandleEvent(EventMicStart) }

// IsUninterruptibleMicUser reports whether the SM currently holds the mic
// non-interruptibly.
func (s *SM) IsUninterruptibleMicUser() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateLiveCapturing, StateWUWCapturing, StateWUWCapturingDetectPending, StateLiveCapturingDetectPending:
		return true
	default:
		return false
	}
}
