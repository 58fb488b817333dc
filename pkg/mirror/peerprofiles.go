package mirror

// PeerProfile is a bit in the peer-profile connect mask.
type PeerProfile uint8

const (
	ProfilePeerSignalling PeerProfile = 1 << iota
	ProfileHandover
	ProfileMirror
)

// PeerProfileMinMask is the minimum mask, always kept regardless of case
// state: peer-signalling alone.
const PeerProfileMinMask = ProfilePeerSignalling

// PeerProfileFullMask is peer-signalling + handover + mirror, kept while
// out-of-case or while an overriding flag holds the link up.
const PeerProfileFullMask = ProfilePeerSignalling | ProfileHandover | ProfileMirror

// PeerProfilePolicyInputs captures the flags the mask decision
// conditions on.
type PeerProfilePolicyInputs struct {
	InCase bool
	LidOpen bool
	PeerActive bool

	// RemainActiveForPeer / RemainActiveForHandset / DFUMode override an
	// in-case teardown, keeping the full mask up.
	RemainActiveForPeer    bool
	RemainActiveForHandset bool
	DFUMode                bool
}

// PeerProfileMaskFor implements : the Primary disconnects
// lower-priority peer profiles when going in-case, unless an overriding
// flag holds the full mask up.
func PeerProfileMaskFor(in PeerProfilePolicyInputs) PeerProfile {
	if !in.InCase || in.LidOpen || in.PeerActive {
		return PeerProfileFullMask
	}
	if in.RemainActiveForPeer || in.RemainActiveForHandset || in.DFUMode {
		return PeerProfileFullMask
	}
	return PeerProfileMinMask
}

// Has reports whether mask includes profile p.
func (m PeerProfile) Has(p PeerProfile) bool { return m&p != 0 }
