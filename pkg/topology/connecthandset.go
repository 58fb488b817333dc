package topology

import (
	"context"
	"errors"
	"sync"
	"time"
)

//go:generate mockery --name HandsetService --output ./mocks --outpkg mocks

// HandsetService is the controller-facing collaborator the
// connect-handset procedure drives.
type HandsetService interface {
	DisableFindRoleScanning()
	EnableFindRoleScanning()
	Page(addr string) error
	RequestConnectionStop() error
	ReissueReconnect() error
}

// ErrStreamingStopTimeout is returned when the handset keeps streaming
// past the configured window.
var ErrStreamingStopTimeout = errors.New("topology: handset streaming-stop timed out")

const streamingStopTimeout = 30 * time.Second

// ConnectHandsetProcedure is the connect-handset internal sub-SM: it
// disables PeerFindRole scanning while paging, subscribes to
// reconnect/streaming indications, and intercepts a prepare-for-role-
// selection request so it can hold off the response until streaming has
// genuinely stopped.
type ConnectHandsetProcedure struct {
	svc  HandsetService
	addr string

	mu sync.Mutex

	done      chan struct{}
	result    error
	completed bool

	streamingStopTimer *time.Timer

	// prepareOwed is set once a prepare-for-role-selection arrives while
	// a handset is still streaming; the response fires once streaming
	// truly stops.
	prepareOwed    bool
	onPrepareReady func()

	// cancelPending marks a cancellation is in flight, to be confirmed
	// only once handset-service confirms the stop.
	cancelPending bool
	cancelCfm     func()
}

// NewConnectHandsetProcedure creates a procedure that pages addr.
func NewConnectHandsetProcedure(svc HandsetService, addr string) *ConnectHandsetProcedure {
	return &ConnectHandsetProcedure{svc: svc, addr: addr, done: make(chan struct{})}
}

// Run starts paging and blocks until the procedure completes.
func (p *ConnectHandsetProcedure) Run(ctx context.Context) error {
	p.svc.DisableFindRoleScanning()
	if err := p.svc.Page(p.addr); err != nil {
		p.finish(err)
		return err
	}

	select {
	case <-p.done:
	case <-ctx.Done():
		p.finish(ctx.Err())
	}

	p.mu.Lock()
	result := p.result
	p.mu.Unlock()
	return result
}

// Cancel requests cooperative cancellation.
func (p *ConnectHandsetProcedure) Cancel() {
	p.mu.Lock()
	p.cancelPending = true
	p.mu.Unlock()
	_ = p.svc.RequestConnectionStop()
}

// OnCancelConfirmed registers the callback fired once handset-service
// confirms the stop triggered by Cancel — not on the first call to
// Cancel itself.
func (p *ConnectHandsetProcedure) OnCancelConfirmed(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelCfm = fn
}

// HandleReconnectInd processes the handset-service reconnect indication:
// the handset is now BR/EDR-connected, so paging succeeded.
func (p *ConnectHandsetProcedure) HandleReconnectInd() {
	p.finish(nil)
}

// HandleStreamingStart processes an AV streaming-start indication: the
// procedure requests a connection stop and arms the streaming-stop
// timeout.
func (p *ConnectHandsetProcedure) HandleStreamingStart() {
	_ = p.svc.RequestConnectionStop()

	p.mu.Lock()
	if p.streamingStopTimer != nil {
		p.streamingStopTimer.Stop()
	}
	p.streamingStopTimer = time.AfterFunc(streamingStopTimeout, p.onStreamingStopTimeout)
	p.mu.Unlock()
}

// HandleStreamingStop processes an AV streaming-stop indication. Within
// the timeout window it reissues the reconnect request; it also
// delivers any owed prepare-for-role-selection response, since the
// handset has now genuinely stopped streaming.
func (p *ConnectHandsetProcedure) HandleStreamingStop() {
	p.mu.Lock()
	if p.streamingStopTimer != nil {
		p.streamingStopTimer.Stop()
		p.streamingStopTimer = nil
	}
	owed := p.prepareOwed
	p.prepareOwed = false
	onReady := p.onPrepareReady
	cancelPending := p.cancelPending
	cancelCfm := p.cancelCfm
	p.mu.Unlock()

	if cancelPending {
		if cancelCfm != nil {
			cancelCfm()
		}
		p.finish(nil)
		return
	}

	_ = p.svc.ReissueReconnect()

	if owed && onReady != nil {
		onReady()
	}
}

func (p *ConnectHandsetProcedure) onStreamingStopTimeout() {
	p.finish(ErrStreamingStopTimeout)
}

// HandlePrepareForRoleSelection stops the reconnect attempt and, if the
// handset is still streaming, defers the response until it genuinely
// stops; fn is invoked immediately otherwise.
func (p *ConnectHandsetProcedure) HandlePrepareForRoleSelection(fn func()) {
	_ = p.svc.RequestConnectionStop()
	p.svc.EnableFindRoleScanning()

	p.mu.Lock()
	stillStreaming := p.streamingStopTimer != nil
	if stillStreaming {
		p.prepareOwed = true
		p.onPrepareReady = fn
	}
	p.mu.Unlock()

	if !stillStreaming {
		fn()
	}
}

func (p *ConnectHandsetProcedure) finish(err error) {
	p.mu.Lock()
	if p.completed {
		p.mu.Unlock()
		return
	}
	p.completed = true
	p.result = err
	if p.streamingStopTimer != nil {
		p.streamingStopTimer.Stop()
		p.streamingStopTimer = nil
	}
	p.mu.Unlock()
	close(p.done)
}
