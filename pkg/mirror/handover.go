package mirror

import (
	"context"
	"errors"
	"sync"
)

// HandoverReason is the HDMA recommendation reason.
type HandoverReason uint8

const (
	HandoverInCase HandoverReason = iota
	HandoverOutOfEar
	HandoverBatteryLevel
	HandoverVoiceQuality
	HandoverExternal
	HandoverRSSI
	HandoverLinkQuality
)

// HandoverController is the controller-facing collaborator the handover
// procedure drives.
type HandoverController interface {
	NotifyRoleChangeClients(forced bool) error
	CancelRoleChangeClients()
	PermitBT(allow bool) error
	DisconnectLEConnections() error
	// RequestControllerHandover performs the controller-level handover
	// and blocks until it completes, times out, or ctx is cancelled.
	RequestControllerHandover(ctx context.Context) error
}

var (
	// ErrHandoverMaxRetries is returned once the controller-level
	// handover has timed out more than MaxRetries times.
	ErrHandoverMaxRetries = errors.New("mirror: handover retries exhausted")
	// ErrHandoverCancelled is returned when Cancel unwinds an in-flight
	// handover.
	ErrHandoverCancelled = errors.New("mirror: handover cancelled")
)

// ErrHandoverTimeout is the sentinel RequestControllerHandover should
// wrap (via errors.Is) to signal a retryable controller timeout, as
// opposed to a hard failure that aborts the whole procedure.
var ErrHandoverTimeout = errors.New("mirror: controller handover timeout")

const defaultMaxHandoverRetries = 20

// HandoverProcedure implements the dynamic-handover goal procedure,
// including the prepare/unwind sequence and bounded retry with
// LE-disconnect replay. It satisfies goalengine.Procedure.
type HandoverProcedure struct {
	ctrl       HandoverController
	MaxRetries int

	mu        sync.Mutex
	cancelled bool
	// completedSteps in prepare order, used to unwind only what ran.
	notifiedClients bool
	permittedOff    bool
}

// NewHandoverProcedure creates a procedure driving ctrl. maxRetries<=0
// uses the default of 20.
func NewHandoverProcedure(ctrl HandoverController, maxRetries int) *HandoverProcedure {
	if maxRetries <= 0 {
		maxRetries = defaultMaxHandoverRetries
	}
	return &HandoverProcedure{ctrl: ctrl, MaxRetries: maxRetries}
}

// Cancel requests cooperative cancellation; the in-flight step completes
// and the unwind sequence runs in reverse of whatever prepare steps
// succeeded.
func (p *HandoverProcedure) Cancel() {
	p.mu.Lock()
	p.cancelled = true
	p.mu.Unlock()
}

func (p *HandoverProcedure) isCancelled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancelled
}

// Run executes the handover procedure.
func (p *HandoverProcedure) Run(ctx context.Context) error {
	if err := p.prepare(); err != nil {
		p.unwind()
		return err
	}
	if p.isCancelled() {
		p.unwind()
		return ErrHandoverCancelled
	}

	attempts := 0
	for {
		err := p.ctrl.RequestControllerHandover(ctx)
		if err == nil {
			return nil
		}
		if p.isCancelled() {
			p.unwind()
			return ErrHandoverCancelled
		}
		if !errors.Is(err, ErrHandoverTimeout) {
			p.unwind()
			return err
		}

		attempts++
		if attempts > p.MaxRetries {
			p.unwind()
			return ErrHandoverMaxRetries
		}
		// Only the LE-disconnect step is replayed before each retry.
		if err := p.ctrl.DisconnectLEConnections(); err != nil {
			p.unwind()
			return err
		}
	}
}

func (p *HandoverProcedure) prepare() error {
	if err := p.ctrl.NotifyRoleChangeClients(true); err != nil {
		return err
	}
	p.notifiedClients = true

	if err := p.ctrl.PermitBT(false); err != nil {
		return err
	}
	p.permittedOff = true

	return p.ctrl.DisconnectLEConnections()
}

// unwind reverses exactly the prepare steps that completed, in reverse
// order.
func (p *HandoverProcedure) unwind() {
	if p.permittedOff {
		_ = p.ctrl.PermitBT(true)
		p.permittedOff = false
	}
	if p.notifiedClients {
		p.ctrl.CancelRoleChangeClients()
		p.notifiedClients = false
	}
}
