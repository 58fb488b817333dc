package mirror

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoSyncAcceptsImmediatelyWhenAlreadyMirrored(t *testing.T) {
	accepted := false
	i := NewScoSyncInterceptor(nil, func() { accepted = true })

	decision := i.Intercept(true)
	assert.Equal(t, ScoAcceptNow, decision)
	assert.True(t, accepted)
	assert.False(t, i.Locked())
}

func TestScoSyncDefersAndRetargetsForOtherHandset(t *testing.T) {
	retargeted := false
	accepted := false
	i := NewScoSyncInterceptor(func() { retargeted = true }, func() { accepted = true })

	decision := i.Intercept(false)
	assert.Equal(t, ScoDeferred, decision)
	assert.True(t, retargeted)
	assert.False(t, accepted)
	assert.True(t, i.Locked())

	i.Release()
	assert.True(t, accepted)
	assert.False(t, i.Locked())
}

func TestScoSyncAcceptsAnywayOnTimeout(t *testing.T) {
	accepted := false
	i := NewScoSyncInterceptor(nil, func() { accepted = true })
	i.Intercept(false)

	require.Eventually(t, func() bool { return accepted }, time.Second, time.Millisecond,
		"must accept the SCO anyway rather than drop the call")
	assert.False(t, i.Locked())
}
