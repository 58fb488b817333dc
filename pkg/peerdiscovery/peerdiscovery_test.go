package peerdiscovery

import (
	"net"
	"testing"

	"github.com/enbility/zeroconf/v3"
	"github.com/stretchr/testify/assert"
)

func TestPeerInfoFromEntryParsesAddrAndQ2Q(t *testing.T) {
	entry := &zeroconf.ServiceEntry{
		ServiceRecord: zeroconf.ServiceRecord{Instance: "earbud-left"},
		Port:          4242,
		AddrIPv4:      []net.IP{net.ParseIP("10.0.0.5")},
		Text:          []string{"q2q=true"},
	}

	info := peerInfoFromEntry(entry)
	assert.Equal(t, "earbud-left", info.InstanceName)
	assert.Equal(t, 4242, info.Port)
	assert.Equal(t, "10.0.0.5", info.Addr)
	assert.True(t, info.SupportsQ2Q)
}

func TestPeerInfoFromEntryDefaultsQ2QFalse(t *testing.T) {
	entry := &zeroconf.ServiceEntry{
		ServiceRecord: zeroconf.ServiceRecord{Instance: "earbud-right"},
		AddrIPv4:      []net.IP{net.ParseIP("10.0.0.6")},
	}

	info := peerInfoFromEntry(entry)
	assert.False(t, info.SupportsQ2Q)
}
