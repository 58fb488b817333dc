// Package peerdiscovery locates the other earbud over a LAN-simulated
// transport; the topology package does not call it.
// This is a simulation-only concern: real earbuds find each other over
// Bluetooth inquiry, which sits behind the controllerif collaborator
// boundary. The implementation here adapts the mDNS advertiser/browser
// pattern from service discovery to peer<->peer earbud discovery,
// advertising a single service type per earbud instance.
package peerdiscovery

import (
	"context"
	"fmt"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// ServiceType is the mDNS service type earbuds advertise themselves
// under.
const ServiceType = "_tws-earbud._udp"

// Domain is the mDNS domain used for peer discovery.
const Domain = "local."

// DefaultTTL is the advertised record TTL.
const DefaultTTL = 30 * time.Second

// PeerInfo describes a discovered earbud.
type PeerInfo struct {
	InstanceName string
	Addr         string
	Port         int
	SupportsQ2Q  bool
}

// Advertiser advertises this earbud's presence so its peer can find it.
type Advertiser struct {
	server *zeroconf.Server
}

// Advertise registers instanceName on ServiceType/Domain at port,
// encoding supportsQ2Q as a TXT record.
func Advertise(instanceName string, port int, supportsQ2Q bool) (*Advertiser, error) {
	txt := []string{fmt.Sprintf("q2q=%t", supportsQ2Q)}
	server, err := zeroconf.Register(instanceName, ServiceType, Domain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("peerdiscovery: register: %w", err)
	}
	return &Advertiser{server: server}, nil
}

// Stop withdraws the advertisement.
func (a *Advertiser) Stop() {
	if a.server != nil {
		a.server.Shutdown()
	}
}

func peerInfoFromEntry(e *zeroconf.ServiceEntry) PeerInfo {
	info := PeerInfo{
		InstanceName: e.Instance,
		Port:         e.Port,
	}
	if len(e.AddrIPv4) > 0 {
		info.Addr = e.AddrIPv4[0].String()
	} else if len(e.AddrIPv6) > 0 {
		info.Addr = e.AddrIPv6[0].String()
	}
	for _, t := range e.Text {
		if t == "q2q=true" {
			info.SupportsQ2Q = true
		}
	}
	return info
}

// Browse searches for earbud peers until ctx is cancelled, delivering
// each discovery on the returned channel.
func Browse(ctx context.Context) (<-chan PeerInfo, error) {
	entries := make(chan *zeroconf.ServiceEntry, 8)
	removed := make(chan *zeroconf.ServiceEntry, 8)
	out := make(chan PeerInfo, 8)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case <-removed:
				// Peer departures are not surfaced as a distinct event;
				// the caller re-derives reachability from PEER_LINKLOSS.
			case e, ok := <-entries:
				if !ok {
					return
				}
				out <- peerInfoFromEntry(e)
			}
		}
	}()

	go func() {
		_ = zeroconf.Browse(ctx, ServiceType, Domain, entries, removed)
	}()

	return out, nil
}
