package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Gate represents a discovered keyward gate on the network
type Gate struct {
	// Instance is the mDNS instance name, usually the gate's host name
	Instance string

	// Hostname is the mDNS hostname (e.g., "doorpi.local.")
	Hostname string

	// IP is the gate's address, IPv4 when it has one
	IP string

	// Port is the status endpoint port
	Port int

	// Metadata contains the mDNS TXT record data (e.g., "version=v1.2.0")
	Metadata map[string]string

	// DiscoveredAt is when the advertisement was seen
	DiscoveredAt time.Time
}

// String returns a human-readable description of the gate
func (g *Gate) String() string {
	return fmt.Sprintf("Gate %s at %s:%d", g.Instance, g.IP, g.Port)
}

// Addr returns the host:port of the gate's status endpoint
func (g *Gate) Addr() string {
	return net.JoinHostPort(g.IP, strconv.Itoa(g.Port))
}

// Version returns the advertised daemon version, or empty if the gate
// did not include one
func (g *Gate) Version() string {
	if g.Metadata == nil {
		return ""
	}
	return g.Metadata["version"]
}
