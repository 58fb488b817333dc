package va

// SplitterConfig configures the mic-chain pre-roll buffer.
type SplitterConfig struct {
	BufferSize       int
	UseSRAM          bool
	Packing          string
	DataFormat       string
	MetadataReframing int
}

const (
	splitterPacking    = "packed"
	splitterDataFormat = "pcm"
	metadataReframing  = 384
)

// NewSplitterConfig computes the splitter configuration for the given
// pre-roll window and sample rate"). sramAvailable reports whether
// SRAM placement is an option on this platform.
func NewSplitterConfig(preRollMs int, sampleRate int, sramAvailable bool) SplitterConfig {
	bufferSize := (preRollMs*sampleRate + 999) / 1000

	return SplitterConfig{
		BufferSize:        bufferSize,
		UseSRAM:           sramAvailable,
		Packing:           splitterPacking,
		DataFormat:        splitterDataFormat,
		MetadataReframing: metadataReframing,
	}
}
