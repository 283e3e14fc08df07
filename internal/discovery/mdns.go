package discovery

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the DNS-SD service type keyward gates advertise
	ServiceType = "_keyward._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for gate discovery
	DefaultScanTimeout = 5 * time.Second
)

// Announcer keeps a gate's mDNS advertisement alive.
type Announcer struct {
	server *zeroconf.Server
}

// Announce registers a gate's status endpoint in mDNS. An empty
// instance name defaults to the host name. The advertisement stays up
// until Shutdown.
func Announce(instance string, port int, txt []string) (*Announcer, error) {
	if instance == "" {
		if hostname, err := os.Hostname(); err == nil && hostname != "" {
			instance = hostname
		} else {
			instance = "keyward"
		}
	}

	server, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}
	return &Announcer{server: server}, nil
}

// Shutdown withdraws the advertisement.
func (a *Announcer) Shutdown() {
	a.server.Shutdown()
}

// Scanner handles mDNS gate discovery
type Scanner struct {
	// Timeout is the maximum time to wait for advertisements
	Timeout time.Duration
}

// NewScanner creates a new scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{Timeout: DefaultScanTimeout}
}

// ScanForGates discovers all keyward gates on the local network
func (s *Scanner) ScanForGates() ([]*Gate, error) {
	return s.ScanForGatesWithContext(context.Background())
}

// ScanForGatesWithContext discovers gates with a custom context
func (s *Scanner) ScanForGatesWithContext(ctx context.Context) ([]*Gate, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	gates := make([]*Gate, 0)
	collected := make(chan struct{})

	go func() {
		defer close(collected)
		for entry := range entries {
			if gate := parseServiceEntry(entry); gate != nil {
				gates = append(gates, gate)
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	// Browse closes the entries channel once the context ends; wait for
	// the collector to drain it before handing the slice out.
	<-ctx.Done()
	<-collected

	return gates, nil
}

// parseServiceEntry converts a zeroconf service entry to a Gate.
// Returns nil for advertisements with no usable address or port.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Gate {
	// Prefer IPv4; fall back to IPv6.
	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" || entry.Port == 0 {
		return nil
	}

	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		key, value, _ := strings.Cut(txt, "=")
		metadata[key] = value
	}

	return &Gate{
		Instance:     entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         entry.Port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}
