// Package mirror implements the mirror-profile main state machine: the
// lifecycle of the mirror ACL, mirror eSCO and mirror A2DP links,
// target-state derivation, the audio-sync handshake, SCO-sync
// interception, A2DP start-mode selection and dynamic handover.
//
// State is packed as a composite: the top bits encode which
// sub-state-machine (ACL/eSCO/A2DP) owns the current state, so
// membership testing stays O(1).
package mirror

import "fmt"

// group identifies which mirror link a State belongs to.
type group uint8

const (
	groupNone group = iota
	groupACL
	groupESCO
	groupA2DP
)

// sub identifies the sub-step within a group.
type sub uint8

const (
	subSteady sub = iota
	subConnecting
	subDisconnecting
	subRouted // A2DP only: ROUTED is a second steady sub-state above CONNECTED
	subSwitch // groupNone only: SWITCH
)

// State is the mirror-profile main SM state. It packs group
// into the high nibble and sub into the low nibble.
type State uint8

func pack(g group, s sub) State { return State(uint8(g)<<4 | uint8(s)) }

func (s State) group() group { return group(s >> 4) }
func (s State) sub() sub     { return sub(s & 0x0f) }

const (
	StateDisconnected     = State(0) // pack(groupNone, subSteady)
	StateSwitch           = State(uint8(groupNone)<<4 | uint8(subSwitch))
	StateACLConnecting    = State(uint8(groupACL)<<4 | uint8(subConnecting))
	StateACLConnected     = State(uint8(groupACL)<<4 | uint8(subSteady))
	StateACLDisconnecting = State(uint8(groupACL)<<4 | uint8(subDisconnecting))
	StateESCOConnecting   = State(uint8(groupESCO)<<4 | uint8(subConnecting))
	StateESCOConnected    = State(uint8(groupESCO)<<4 | uint8(subSteady))
	StateESCODisconnecting = State(uint8(groupESCO)<<4 | uint8(subDisconnecting))
	StateA2DPConnecting    = State(uint8(groupA2DP)<<4 | uint8(subConnecting))
	StateA2DPConnected     = State(uint8(groupA2DP)<<4 | uint8(subSteady))
	StateA2DPRouted        = State(uint8(groupA2DP)<<4 | uint8(subRouted))
	StateA2DPDisconnecting = State(uint8(groupA2DP)<<4 | uint8(subDisconnecting))
)

// IsSteady reports whether the lock is clear in this state.
func (s State) IsSteady() bool {
	switch s.sub() {
	case subSteady, subRouted, subSwitch:
		return true
	default:
		return false
	}
}

// InGroup reports whether the state belongs to the named sub-state-
// machine; this is the O(1) membership test the design notes call for.
func (s State) InGroup(g group) bool { return s.group() == g }

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateSwitch:
		return "SWITCH"
	case StateACLConnecting:
		return "ACL_CONNECTING"
	case StateACLConnected:
		return "ACL_CONNECTED"
	case StateACLDisconnecting:
		return "ACL_DISCONNECTING"
	case StateESCOConnecting:
		return "ESCO_CONNECTING"
	case StateESCOConnected:
		return "ESCO_CONNECTED"
	case StateESCODisconnecting:
		return "ESCO_DISCONNECTING"
	case StateA2DPConnecting:
		return "A2DP_CONNECTING"
	case StateA2DPConnected:
		return "A2DP_CONNECTED"
	case StateA2DPRouted:
		return "A2DP_ROUTED"
	case StateA2DPDisconnecting:
		return "A2DP_DISCONNECTING"
	default:
		return fmt.Sprintf("UNKNOWN(%#02x)", uint8(s))
	}
}

// Target is the derived target state; each value names one steady State
// (see matchesSteady), with separate targets for A2DP_CONNECTED and
// A2DP_ROUTED.
type Target uint8

const (
	TargetDisconnected Target = iota
	TargetSwitch
	TargetACLConnected
	TargetESCOConnected
	TargetA2DPConnected
	TargetA2DPRouted
)

func (t Target) String() string {
	switch t {
	case TargetDisconnected:
		return "DISCONNECTED"
	case TargetSwitch:
		return "SWITCH"
	case TargetACLConnected:
		return "ACL_CONNECTED"
	case TargetESCOConnected:
		return "ESCO_CONNECTED"
	case TargetA2DPConnected:
		return "A2DP_CONNECTED"
	case TargetA2DPRouted:
		return "A2DP_ROUTED"
	default:
		return "UNKNOWN"
	}
}

// matchesSteady reports whether steady state s already satisfies target t.
func matchesSteady(s State, t Target) bool {
	switch t {
	case TargetDisconnected:
		return s == StateDisconnected
	case TargetSwitch:
		return s == StateSwitch
	case TargetACLConnected:
		return s == StateACLConnected
	case TargetESCOConnected:
		return s == StateESCOConnected
	case TargetA2DPConnected:
		return s == StateA2DPConnected
	case TargetA2DPRouted:
		return s == StateA2DPRouted
	}
	return false
}
