// Package ruleevent defines the closed 64-bit rule-event set that flows
// into the topology rule engine and the (set-mask,
// reset-mask, completed-mask) bookkeeping shared by every rule engine
//.
package ruleevent

// Event is a single bit in the rule-event set.
type Event uint64

// The closed rule-event set, abridged 
// bit so a Set can carry any combination as a single uint64.
const (
	PeerPaired Event = 1 << iota
	NoPeer
	RoleSelectedPrimary
	RoleSelectedSecondary
	RoleSelectedActingPrimary
	RoleSwitch
	InCase
	OutCase
	CaseLidOpen
	CaseLidClosed
	HandsetConnectedBREDR
	HandsetDisconnectedBREDR
	HandsetLinkloss
	HandsetACLConnected
	PeerConnectedBREDR
	PeerDisconnectedBREDR
	PeerLinkloss
	FailedPeerConnect
	FailedSwitchSecondary
	Handover
	HandoverFailed
	NoRole
	Shutdown
	PairingActivityChanged
	ProhibitConnectToHandset
	UserRequestConnectHandset
	UserRequestDisconnectLRUHandset
	UserRequestDisconnectAllHandsets
	Kick
)

var names = map[Event]string{
	PeerPaired:                       "PEER_PAIRED",
	NoPeer:                           "NO_PEER",
	RoleSelectedPrimary:              "ROLE_SELECTED_PRIMARY",
	RoleSelectedSecondary:            "ROLE_SELECTED_SECONDARY",
	RoleSelectedActingPrimary:        "ROLE_SELECTED_ACTING_PRIMARY",
	RoleSwitch:                       "ROLE_SWITCH",
	InCase:                           "IN_CASE",
	OutCase:                          "OUT_CASE",
	CaseLidOpen:                      "CASE_LID_OPEN",
	CaseLidClosed:                    "CASE_LID_CLOSED",
	HandsetConnectedBREDR:            "HANDSET_CONNECTED_BREDR",
	HandsetDisconnectedBREDR:         "HANDSET_DISCONNECTED_BREDR",
	HandsetLinkloss:                  "HANDSET_LINKLOSS",
	HandsetACLConnected:              "HANDSET_ACL_CONNECTED",
	PeerConnectedBREDR:               "PEER_CONNECTED_BREDR",
	PeerDisconnectedBREDR:            "PEER_DISCONNECTED_BREDR",
	PeerLinkloss:                     "PEER_LINKLOSS",
	FailedPeerConnect:                "FAILED_PEER_CONNECT",
	FailedSwitchSecondary:            "FAILED_SWITCH_SECONDARY",
	Handover:                         "HANDOVER",
	HandoverFailed:                   "HANDOVER_FAILED",
	NoRole:                           "NO_ROLE",
	Shutdown:                         "SHUTDOWN",
	PairingActivityChanged:           "PAIRING_ACTIVITY_CHANGED",
	ProhibitConnectToHandset:         "PROHIBIT_CONNECT_TO_HANDSET",
	UserRequestConnectHandset:        "USER_REQUEST_CONNECT_HANDSET",
	UserRequestDisconnectLRUHandset:  "USER_REQUEST_DISCONNECT_LRU_HANDSET",
	UserRequestDisconnectAllHandsets: "USER_REQUEST_DISCONNECT_ALL_HANDSETS",
	Kick:                             "KICK",
}

// String returns the event's spec name; an unknown or combined bit
// pattern is rendered as the Set of the named events it contains ("{}"
// when it contains none).
func (e Event) String() string {
	if name, ok := names[e]; ok {
		return name
	}
	return Set(e).String()
}

// Set is a bitmask of Events, as consumed by rule engines.
type Set uint64

// Has reports whether every bit in e is present in the set.
func (s Set) Has(e Event) bool {
	return uint64(s)&uint64(e) == uint64(e)
}

// HasAny reports whether any bit of e is present in the set.
func (s Set) HasAny(e Event) bool {
	return uint64(s)&uint64(e) != 0
}

// With returns a new set with e added.
func (s Set) With(e Event) Set {
	return Set(uint64(s) | uint64(e))
}

// Without returns a new set with e removed.
func (s Set) Without(e Event) Set {
	return Set(uint64(s) &^ uint64(e))
}

// String renders the set as its constituent event names, for logging.
func (s Set) String() string {
	if s == 0 {
		return "{}"
	}
	out := "{"
	first := true
	for bit, name := range names {
		if s.Has(bit) {
			if !first {
				out += "|"
			}
			out += name
			first = false
		}
	}
	return out + "}"
}

// Tracker holds the (set-mask, reset-mask, completed-mask) triple that
// every rule engine keeps : events accumulate in the set
// mask until explicitly reset, and rules record which events they have
// already acted on in the completed mask so a repeated evaluation round
// does not re-run a rule for an event it already consumed.
type Tracker struct {
	setMask       Set
	resetMask     Set
	completedMask Set
}

// NewTracker returns an empty event tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Raise adds events to the set mask. This is how physical/peer/handset
// events enter the engine.
func (t *Tracker) Raise(events Set) {
	t.setMask = t.setMask.With(Event(events))
}

// Active returns the events currently set and not yet reset.
func (t *Tracker) Active() Set {
	return t.setMask
}

// MarkCompleted records that a rule has consumed the given events for
// this evaluation round, so re-evaluating the rule set does not
// re-trigger the same rule on the same events.
func (t *Tracker) MarkCompleted(events Set) {
	t.completedMask = t.completedMask.With(Event(events))
}

// IsCompleted reports whether every event in events has already been
// consumed by some rule this round.
func (t *Tracker) IsCompleted(events Set) bool {
	return t.completedMask&events == events
}

// Reset clears the given events from both the set mask and the
// completed mask, e.g. once a goal tied to them finishes.
func (t *Tracker) Reset(events Set) {
	t.setMask = t.setMask.Without(Event(events))
	t.completedMask = t.completedMask.Without(Event(events))
	t.resetMask = t.resetMask.With(events)
}
