package mirror

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPeerProfileMaskOutOfCaseIsFull(t *testing.T) {
	mask := PeerProfileMaskFor(PeerProfilePolicyInputs{InCase: false})
	assert.Equal(t, PeerProfileFullMask, mask)
}

func TestPeerProfileMaskInCaseDropsToMinimum(t *testing.T) {
	mask := PeerProfileMaskFor(PeerProfilePolicyInputs{InCase: true})
	assert.Equal(t, PeerProfileMinMask, mask)
	assert.False(t, mask.Has(ProfileMirror))
	assert.True(t, mask.Has(ProfilePeerSignalling))
}

func TestPeerProfileMaskInCaseWithLidOpenStaysFull(t *testing.T) {
	mask := PeerProfileMaskFor(PeerProfilePolicyInputs{InCase: true, LidOpen: true})
	assert.Equal(t, PeerProfileFullMask, mask)
}

func TestPeerProfileMaskInCaseWithOverrideStaysFull(t *testing.T) {
	mask := PeerProfileMaskFor(PeerProfilePolicyInputs{InCase: true, DFUMode: true})
	assert.Equal(t, PeerProfileFullMask, mask)

	mask = PeerProfileMaskFor(PeerProfilePolicyInputs{InCase: true, RemainActiveForHandset: true})
	assert.Equal(t, PeerProfileFullMask, mask)
}
