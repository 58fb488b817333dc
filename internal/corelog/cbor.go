package corelog

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

var traceEncMode cbor.EncMode

func init() {
	opts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	mode, err := opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("corelog: bad CBOR encoder options: %v", err))
	}
	traceEncMode = mode
}

// EncodeEvent encodes an Event to CBOR for trace capture.
func EncodeEvent(e Event) ([]byte, error) {
	return traceEncMode.Marshal(e)
}

// NewEncoder returns a CBOR encoder for events writing to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return traceEncMode.NewEncoder(w)
}

// FileLogger appends CBOR-encoded events to a trace file. Safe for
// concurrent use; encoding failures are swallowed since logging must
// never disrupt the state machines it observes.
type FileLogger struct {
	mu      sync.Mutex
	file    *os.File
	encoder *cbor.Encoder
	closed  bool
}

func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &FileLogger{file: f, encoder: NewEncoder(f)}, nil
}

func (l *FileLogger) Log(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	_ = l.encoder.Encode(e)
}

func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.file.Close()
}

var _ Logger = (*FileLogger)(nil)
