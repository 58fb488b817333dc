package va

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSplitterConfigBufferSizeAndFixedFields(t *testing.T) {
	cfg := NewSplitterConfig(250, 16000, true)
	assert.Equal(t, 4000, cfg.BufferSize)
	assert.True(t, cfg.UseSRAM)
	assert.Equal(t, "packed", cfg.Packing)
	assert.Equal(t, "pcm", cfg.DataFormat)
	assert.Equal(t, 384, cfg.MetadataReframing)
}

func TestNewSplitterConfigRoundsFractional(t *testing.T) {
	cfg := NewSplitterConfig(33, 16000, false)
	// 33 * 16000 / 1000 = 528, no rounding needed here; use a rate that
	// does not divide evenly to exercise the ceil.
	assert.Equal(t, 528, cfg.BufferSize)
	assert.False(t, cfg.UseSRAM)

	cfg2 := NewSplitterConfig(1, 12345, false)
	assert.Equal(t, 13, cfg2.BufferSize) // ceil(12.345) == 13
}
