package controllerif

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeController struct {
	lastCall string
}

func (f *fakeController) ConnectMirrorACL(addr string) Status      { f.lastCall = "connect-acl:" + addr; return StatusSuccess }
func (f *fakeController) DisconnectMirrorACL(addr string) Status   { f.lastCall = "disconnect-acl:" + addr; return StatusSuccess }
func (f *fakeController) ConnectMirrorESCO(addr string) Status     { f.lastCall = "connect-esco:" + addr; return StatusSuccess }
func (f *fakeController) DisconnectMirrorESCO(addr string) Status  { f.lastCall = "disconnect-esco:" + addr; return StatusSuccess }
func (f *fakeController) ConnectMirrorA2DP(addr string) Status     { f.lastCall = "connect-a2dp:" + addr; return StatusSuccess }
func (f *fakeController) DisconnectMirrorA2DP(addr string) Status  { f.lastCall = "disconnect-a2dp:" + addr; return StatusSuccess }
func (f *fakeController) SwitchMirrorACL(from, to string) Status   { f.lastCall = "switch:" + from + "->" + to; return StatusSuccess }
func (f *fakeController) RegisterPSM(psm uint16) Status            { return StatusSuccess }
func (f *fakeController) ConnectPSM(addr string, psm uint16) Status { return StatusSuccess }
func (f *fakeController) DisconnectPSM(addr string, psm uint16) Status { return StatusSuccess }
func (f *fakeController) Register(record []byte) Status { return StatusSuccess }
func (f *fakeController) Unregister() Status            { return StatusSuccess }

func TestStatusOK(t *testing.T) {
	assert.True(t, StatusSuccess.OK())
	assert.False(t, StatusFailure.OK())
}

func TestFakeControllerSatisfiesInterface(t *testing.T) {
	var c Controller = &fakeController{}
	assert.Equal(t, StatusSuccess, c.ConnectMirrorACL("AA:BB"))
	assert.Equal(t, StatusSuccess, c.SwitchMirrorACL("AA:BB", "CC:DD"))
}
