package devicedb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutAndGetHandset(t *testing.T) {
	db := New()
	db.PutHandset(HandsetRecord{Addr: "AA:BB", PreviouslyConnected: 1})

	r, err := db.Handset("AA:BB")
	require.NoError(t, err)
	assert.Equal(t, uint8(1), r.PreviouslyConnected)
}

func TestHandsetNotFound(t *testing.T) {
	db := New()
	_, err := db.Handset("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMRUHandsetTracksLastPut(t *testing.T) {
	db := New()
	db.PutHandset(HandsetRecord{Addr: "AA:BB"})
	db.PutHandset(HandsetRecord{Addr: "CC:DD"})

	mru, ok := db.MRUHandset()
	require.True(t, ok)
	assert.Equal(t, "CC:DD", mru)
}

func TestLRUHandsetExcludesMRU(t *testing.T) {
	db := New()
	db.PutHandset(HandsetRecord{Addr: "AA:BB", LastConnectedUnixSec: 100})
	db.PutHandset(HandsetRecord{Addr: "CC:DD", LastConnectedUnixSec: 200})

	lru, ok := db.LRUHandset()
	require.True(t, ok)
	assert.Equal(t, "AA:BB", lru)
}

func TestPeerRoundTrip(t *testing.T) {
	db := New()
	db.PutPeer(PeerRecord{Addr: "EE:FF", LinkKeyKnown: true})

	r, err := db.Peer("EE:FF")
	require.NoError(t, err)
	assert.True(t, r.LinkKeyKnown)
}
