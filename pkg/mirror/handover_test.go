package mirror

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedHandoverController struct {
	notifyErr   error
	permitErr   error
	leErr       error
	handoverSeq []error // consumed in order by RequestControllerHandover

	notifyCalls   []bool
	permitCalls   []bool
	leCalls       int
	cancelCalled  bool
	handoverCalls int
}

func (c *scriptedHandoverController) NotifyRoleChangeClients(forced bool) error {
	c.notifyCalls = append(c.notifyCalls, forced)
	return c.notifyErr
}
func (c *scriptedHandoverController) CancelRoleChangeClients() { c.cancelCalled = true }
func (c *scriptedHandoverController) PermitBT(allow bool) error {
	c.permitCalls = append(c.permitCalls, allow)
	return c.permitErr
}
func (c *scriptedHandoverController) DisconnectLEConnections() error {
	c.leCalls++
	return c.leErr
}
func (c *scriptedHandoverController) RequestControllerHandover(ctx context.Context) error {
	i := c.handoverCalls
	c.handoverCalls++
	if i < len(c.handoverSeq) {
		return c.handoverSeq[i]
	}
	return nil
}

func TestHandoverHappyPath(t *testing.T) {
	ctrl := &scriptedHandoverController{}
	p := NewHandoverProcedure(ctrl, 3)

	err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []bool{true}, ctrl.notifyCalls)
	assert.Equal(t, []bool{false}, ctrl.permitCalls)
	assert.Equal(t, 1, ctrl.leCalls)
	assert.False(t, ctrl.cancelCalled)
}

func TestHandoverRetriesThenSucceeds(t *testing.T) {
	ctrl := &scriptedHandoverController{
		handoverSeq: []error{ErrHandoverTimeout, ErrHandoverTimeout, nil},
	}
	p := NewHandoverProcedure(ctrl, 5)

	err := p.Run(context.Background())
	require.NoError(t, err)
	// One LE-disconnect from prepare, plus one replay per timeout.
	assert.Equal(t, 3, ctrl.leCalls)
	assert.Equal(t, 3, ctrl.handoverCalls)
}

func TestHandoverVetoesAfterMaxRetries(t *testing.T) {
	ctrl := &scriptedHandoverController{
		handoverSeq: []error{ErrHandoverTimeout, ErrHandoverTimeout, ErrHandoverTimeout},
	}
	p := NewHandoverProcedure(ctrl, 2)

	err := p.Run(context.Background())
	assert.ErrorIs(t, err, ErrHandoverMaxRetries)
	// Unwound: permit-BT=true and notify-cancel both ran.
	assert.Equal(t, []bool{false, true}, ctrl.permitCalls)
	assert.True(t, ctrl.cancelCalled)
}

func TestHandoverPrepareFailureUnwindsOnlyCompletedSteps(t *testing.T) {
	ctrl := &scriptedHandoverController{permitErr: errors.New("permit rejected")}
	p := NewHandoverProcedure(ctrl, 2)

	err := p.Run(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 0, ctrl.leCalls, "must not disconnect LE when permit-BT failed first")
	assert.True(t, ctrl.cancelCalled, "notify-clients must be cancelled since it completed")
	assert.Equal(t, []bool{false}, ctrl.permitCalls, "permit-BT=true unwind must not run since permit-BT=false never completed")
}

func TestHandoverCancelMidSequenceUnwinds(t *testing.T) {
	ctrl := &scriptedHandoverController{
		handoverSeq: []error{ErrHandoverTimeout},
	}
	p := NewHandoverProcedure(ctrl, 5)
	p.Cancel()

	err := p.Run(context.Background())
	assert.ErrorIs(t, err, ErrHandoverCancelled)
	assert.True(t, ctrl.cancelCalled)
}
