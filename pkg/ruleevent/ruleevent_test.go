package ruleevent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetHasAndWith(t *testing.T) {
	var s Set
	assert.False(t, s.Has(PeerPaired))

	s = s.With(PeerPaired).With(OutCase)
	assert.True(t, s.Has(PeerPaired))
	assert.True(t, s.Has(OutCase))
	assert.False(t, s.Has(InCase))

	s = s.Without(PeerPaired)
	assert.False(t, s.Has(PeerPaired))
	assert.True(t, s.Has(OutCase))
}

func TestHasAny(t *testing.T) {
	s := Set(0).With(PeerPaired)
	assert.True(t, s.HasAny(Set(PeerPaired)|Set(InCase)))
	assert.False(t, s.HasAny(Set(InCase)))
}

func TestTrackerRaiseAndReset(t *testing.T) {
	tr := NewTracker()
	tr.Raise(Set(PeerPaired).With(OutCase))

	assert.True(t, tr.Active().Has(PeerPaired))
	assert.True(t, tr.Active().Has(OutCase))

	tr.MarkCompleted(Set(PeerPaired))
	assert.True(t, tr.IsCompleted(Set(PeerPaired)))
	assert.False(t, tr.IsCompleted(Set(OutCase)))

	tr.Reset(Set(PeerPaired))
	assert.False(t, tr.Active().Has(PeerPaired))
	assert.False(t, tr.IsCompleted(Set(PeerPaired)))
	assert.True(t, tr.Active().Has(OutCase))
}

func TestEventStringKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "PEER_PAIRED", PeerPaired.String())
	assert.Contains(t, (PeerPaired | OutCase).String(), "PEER_PAIRED")
}
