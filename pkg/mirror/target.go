package mirror

// SyncState is the per-audio-source sync state tracked by the audio-sync
// handshake.
type SyncState uint8

const (
	SyncDisconnected SyncState = iota
	SyncReady
	SyncConnected
	SyncActive
)

// DerivationInputs captures everything the Primary's target-state
// derivation needs. It is recomputed and fed to Derive on
// every input that can change the picture.
type DerivationInputs struct {
	PeerSigConnected      bool
	AudioSyncL2CAPUp      bool
	HandsetConnected      bool
	PeerQHSReady          bool
	TargetHandsetKnown    bool
	KeySyncCompleteTarget bool

	// TargetHandsetIsCurrentlyMirrored is false when the target handset
	// differs from the one already mirrored, forcing a SWITCH.
	TargetHandsetIsCurrentlyMirrored bool

	MirroredHFPActiveSCO bool
	ESCOMirroringEnabled bool
	VoiceSourceSupported bool // admissible per tesco (see IsVoiceSourceAdmissible)

	A2DPMirroringEnabled bool
	MirroredSyncState    SyncState
}

// Derive computes the Primary's target state from the current picture.
func Derive(in DerivationInputs) Target {
	if !(in.PeerSigConnected && in.AudioSyncL2CAPUp && in.HandsetConnected &&
		in.PeerQHSReady && in.TargetHandsetKnown && in.KeySyncCompleteTarget) {
		return TargetDisconnected
	}

	if !in.TargetHandsetIsCurrentlyMirrored {
		return TargetSwitch
	}

	if in.MirroredHFPActiveSCO && in.ESCOMirroringEnabled && in.VoiceSourceSupported {
		return TargetESCOConnected
	}
	if in.A2DPMirroringEnabled && in.MirroredSyncState == SyncActive {
		return TargetA2DPRouted
	}
	if in.A2DPMirroringEnabled && in.MirroredSyncState == SyncReady {
		return TargetA2DPConnected
	}
	return TargetACLConnected
}

// Tesco values that must never be mirrored: plain SCO
// (tesco==0) and HV3 (tesco==6). Anything >= MinMirrorableTesco slots is
// admissible.
const (
	TescoSCO           = 0
	TescoHV3           = 6
	MinMirrorableTesco = 7
)

// IsVoiceSourceAdmissible reports whether a voice source with the given
// tesco (in slots) may be mirrored.
func IsVoiceSourceAdmissible(tesco uint8) bool {
	return tesco >= MinMirrorableTesco
}
