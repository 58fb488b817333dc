package mirror

// transitionFor computes the next transitional state to enter from a
// steady current state in order to progress toward target, applying the
// ordering invariants below:
//   - eSCO has priority over A2DP: from an A2DP steady state, any target
//     that needs eSCO first tears down A2DP.
//   - From DISCONNECTED/SWITCH, the ACL always connects first.
//   - From ESCO_CONNECTED, any other target first disconnects eSCO.
//   - A2DP_CONNECTED <-> A2DP_ROUTED is a steady-to-steady promotion
//     with no lock, since both are Steady states.
//
// Returns ok=false if current already satisfies target (steady, no
// transition needed).
func transitionFor(current State, target Target) (next State, ok bool) {
	if !current.IsSteady() {
		// Never called on a non-steady state; the SM defers commits
		// until the lock clears.
		return current, false
	}

	if matchesSteady(current, target) {
		return current, false
	}

	// In-place promote/demote within the A2DP group: both sub-states are
	// steady, so this never holds the transition lock.
	if current.group() == groupA2DP {
		switch target {
		case TargetA2DPRouted:
			if current == StateA2DPConnected {
				return StateA2DPRouted, false
			}
		case TargetA2DPConnected:
			if current == StateA2DPRouted {
				return StateA2DPConnected, false
			}
		}
	}

	if target == TargetDisconnected {
		switch current.group() {
		case groupACL:
			return StateACLDisconnecting, true
		case groupESCO:
			return StateESCODisconnecting, true
		case groupA2DP:
			return StateA2DPDisconnecting, true
		default:
			return current, false
		}
	}

	switch current {
	case StateDisconnected, StateSwitch:
		return StateACLConnecting, true

	case StateACLConnected:
		switch target {
		case TargetESCOConnected:
			return StateESCOConnecting, true
		case TargetA2DPConnected, TargetA2DPRouted:
			return StateA2DPConnecting, true
		case TargetSwitch:
			return StateACLDisconnecting, true
		}

	case StateESCOConnected:
		// "ESCO_CONNECTED -> anything else -> ESCO_DISCONNECTING"
		return StateESCODisconnecting, true

	case StateA2DPConnected, StateA2DPRouted:
		// eSCO priority: disconnect A2DP before bringing up eSCO, and
		// before a handset switch or full teardown.
		return StateA2DPDisconnecting, true
	}

	return current, false
}

// landingState is where the SM settles once a *_CONNECTING or
// *_DISCONNECTING transition is confirmed by the controller.
func landingState(transitional State, connected bool) State {
	switch transitional {
	case StateACLConnecting:
		if connected {
			return StateACLConnected
		}
		return StateDisconnected
	case StateACLDisconnecting:
		return StateDisconnected
	case StateESCOConnecting:
		if connected {
			return StateESCOConnected
		}
		return StateACLConnected
	case StateESCODisconnecting:
		return StateACLConnected
	case StateA2DPConnecting:
		if connected {
			return StateA2DPConnected
		}
		return StateACLConnected
	case StateA2DPDisconnecting:
		return StateACLConnected
	}
	return transitional
}
