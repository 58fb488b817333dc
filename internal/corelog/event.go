// Package corelog defines the structured event stream shared by every
// core state machine. Components log through a Logger; NoopLogger is
// the zero value so the core stays silent unless a harness attaches a
// sink.
package corelog

import "time"

// Event is a single log record captured by a state machine or the goal
// engine. CBOR encoding uses integer keys for compactness when events are
// captured to a trace file.
type Event struct {
	Timestamp time.Time `cbor:"1,keyasint"`

	// Component names the owning state machine: "linkpolicy", "mirror",
	// "va", "topology", "goalengine", "peersig".
	Component string `cbor:"2,keyasint"`

	// DeviceAddr is the Bluetooth address this event concerns, if any.
	DeviceAddr string `cbor:"3,keyasint,omitempty"`

	Layer    Layer    `cbor:"4,keyasint"`
	Category Category `cbor:"5,keyasint"`

	Transition *TransitionEvent `cbor:"10,keyasint,omitempty"`
	Rule       *RuleEventData   `cbor:"11,keyasint,omitempty"`
	Goal       *GoalEventData   `cbor:"12,keyasint,omitempty"`
	Lock       *LockEventData   `cbor:"13,keyasint,omitempty"`
	Timer      *TimerEventData  `cbor:"14,keyasint,omitempty"`
	Error      *ErrorEventData  `cbor:"15,keyasint,omitempty"`
}

// Layer indicates which part of the core captured the event.
type Layer uint8

const (
	LayerSM        Layer = iota // state-machine transitions
	LayerGoal                   // goal engine admission/completion
	LayerWire                   // peer-signalling wire traffic
	LayerRule                   // rule evaluation
)

func (l Layer) String() string {
	switch l {
	case LayerSM:
		return "SM"
	case LayerGoal:
		return "GOAL"
	case LayerWire:
		return "WIRE"
	case LayerRule:
		return "RULE"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event within its layer.
type Category uint8

const (
	CategoryTransition Category = iota
	CategoryRule
	CategoryGoalStart
	CategoryGoalComplete
	CategoryLock
	CategoryTimer
	CategoryError
)

func (c Category) String() string {
	switch c {
	case CategoryTransition:
		return "TRANSITION"
	case CategoryRule:
		return "RULE"
	case CategoryGoalStart:
		return "GOAL_START"
	case CategoryGoalComplete:
		return "GOAL_COMPLETE"
	case CategoryLock:
		return "LOCK"
	case CategoryTimer:
		return "TIMER"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// TransitionEvent captures a state machine transition.
type TransitionEvent struct {
	OldState string `cbor:"1,keyasint"`
	NewState string `cbor:"2,keyasint"`
	Event    string `cbor:"3,keyasint,omitempty"`
}

// RuleEventData captures a rule evaluation outcome.
type RuleEventData struct {
	RuleName string `cbor:"1,keyasint"`
	Decision string `cbor:"2,keyasint"` // run | run-with-params | ignore | defer
	GoalID   string `cbor:"3,keyasint,omitempty"`
}

// GoalEventData captures goal lifecycle events.
type GoalEventData struct {
	GoalID        string `cbor:"1,keyasint"`
	Outcome       string `cbor:"2,keyasint,omitempty"` // success | failure | timeout | cancelled
	CorrelationID string `cbor:"3,keyasint,omitempty"`
}

// LockEventData captures lock acquisition/release.
type LockEventData struct {
	LockName string `cbor:"1,keyasint"`
	Held     bool   `cbor:"2,keyasint"`
}

// TimerEventData captures timer arm/fire/cancel events.
type TimerEventData struct {
	TimerName string        `cbor:"1,keyasint"`
	Action    string        `cbor:"2,keyasint"` // armed | fired | cancelled
	Duration  time.Duration `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures a transient or programming error.
type ErrorEventData struct {
	Message string `cbor:"1,keyasint"`
	Context string `cbor:"2,keyasint,omitempty"`
}
