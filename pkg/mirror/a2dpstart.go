package mirror

// StartMode is the local A2DP start strategy selected 
type StartMode uint8

const (
	// Q2Q is inherent sync at the controller level; no software
	// synchronisation is needed.
	Q2Q StartMode = iota
	PrimarySyncUnmute
	PrimarySynchronised
	PrimaryUnsynchronised
	SecondarySynchronised
	SecondarySyncUnmute
)

func (m StartMode) String() string {
	switch m {
	case Q2Q:
		return "Q2Q"
	case PrimarySyncUnmute:
		return "PRIMARY_SYNC_UNMUTE"
	case PrimarySynchronised:
		return "PRIMARY_SYNCHRONISED"
	case PrimaryUnsynchronised:
		return "PRIMARY_UNSYNCHRONISED"
	case SecondarySynchronised:
		return "SECONDARY_SYNCHRONISED"
	case SecondarySyncUnmute:
		return "SECONDARY_SYNC_UNMUTE"
	default:
		return "UNKNOWN"
	}
}

// SelectStartMode picks the A2DP start mode. isQ2Q reflects whether the
// controller mode gives inherent sync; the remaining inputs only matter
// when isQ2Q is false. peerSyncAvailable is whether the Secondary can be
// coordinated via peer-signalling at all (e.g. mirror ACL/audio-sync up);
// without it, a cold start can't be synchronised and falls back
// unsynchronised.
func SelectStartMode(isQ2Q, isPrimary, mirroredStreaming, peerSyncAvailable, handsetSwitching bool) StartMode {
	if isQ2Q {
		return Q2Q
	}

	if isPrimary {
		switch {
		case mirroredStreaming:
			return PrimarySyncUnmute
		case peerSyncAvailable:
			return PrimarySynchronised
		default:
			return PrimaryUnsynchronised
		}
	}

	if handsetSwitching {
		return SecondarySynchronised
	}
	return SecondarySyncUnmute
}
