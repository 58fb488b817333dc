package mirror

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func baseInputs() DerivationInputs {
	return DerivationInputs{
		PeerSigConnected:                 true,
		AudioSyncL2CAPUp:                 true,
		HandsetConnected:                 true,
		PeerQHSReady:                     true,
		TargetHandsetKnown:               true,
		KeySyncCompleteTarget:            true,
		TargetHandsetIsCurrentlyMirrored: true,
	}
}

func TestDeriveDisconnectedWhenAnyPrerequisiteMissing(t *testing.T) {
	in := baseInputs()
	in.PeerQHSReady = false
	assert.Equal(t, TargetDisconnected, Derive(in))
}

func TestDeriveSwitchWhenTargetHandsetDiffers(t *testing.T) {
	in := baseInputs()
	in.TargetHandsetIsCurrentlyMirrored = false
	assert.Equal(t, TargetSwitch, Derive(in))
}

func TestDeriveESCOWinsOverA2DP(t *testing.T) {
	in := baseInputs()
	in.MirroredHFPActiveSCO = true
	in.ESCOMirroringEnabled = true
	in.VoiceSourceSupported = true
	in.A2DPMirroringEnabled = true
	in.MirroredSyncState = SyncActive
	assert.Equal(t, TargetESCOConnected, Derive(in))
}

func TestDeriveA2DPRoutedWhenSyncActive(t *testing.T) {
	in := baseInputs()
	in.A2DPMirroringEnabled = true
	in.MirroredSyncState = SyncActive
	assert.Equal(t, TargetA2DPRouted, Derive(in))
}

func TestDeriveA2DPConnectedWhenSyncReady(t *testing.T) {
	in := baseInputs()
	in.A2DPMirroringEnabled = true
	in.MirroredSyncState = SyncReady
	assert.Equal(t, TargetA2DPConnected, Derive(in))
}

func TestDeriveACLConnectedFallback(t *testing.T) {
	in := baseInputs()
	assert.Equal(t, TargetACLConnected, Derive(in))
}

func TestVoiceSourceAdmissibility(t *testing.T) {
	assert.False(t, IsVoiceSourceAdmissible(TescoSCO))
	assert.False(t, IsVoiceSourceAdmissible(TescoHV3))
	assert.False(t, IsVoiceSourceAdmissible(6))
	assert.True(t, IsVoiceSourceAdmissible(MinMirrorableTesco))
	assert.True(t, IsVoiceSourceAdmissible(12))
}
