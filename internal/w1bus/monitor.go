package w1bus

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/keyward/keyward/internal/logging"
)

const (
	// kernelGroup is the netlink multicast group the kernel broadcasts
	// raw uevents on. Group 2 carries the udev daemon's processed feed.
	kernelGroup = 0x1

	// readBufferSize holds one uevent datagram. The kernel caps the
	// property buffer at 2KB, so 8KB leaves ample headroom.
	readBufferSize = 8 << 10

	// socketBufferSize is requested as the socket receive queue, to
	// ride out notification bursts such as a bus master rescan.
	socketBufferSize = 1 << 20

	// eventQueueLen buffers delivered events so a short stall in the
	// consumer does not back up into the socket.
	eventQueueLen = 16
)

// Monitor subscribes to kernel device notifications for one subsystem.
//
// The netlink descriptor is wrapped in an os.File so reads park in the
// runtime poller: an idle bus costs nothing, and Close interrupts a
// blocked read immediately.
type Monitor struct {
	file      *os.File
	subsystem string
	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// Open binds a netlink socket to the kernel uevent broadcast group and
// starts delivering events whose subsystem matches. An empty subsystem
// matches everything.
func Open(subsystem string) (*Monitor, error) {
	fd, err := unix.Socket(
		unix.AF_NETLINK,
		unix.SOCK_RAW|unix.SOCK_CLOEXEC|unix.SOCK_NONBLOCK,
		unix.NETLINK_KOBJECT_UEVENT,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open uevent socket: %w", err)
	}
	addr := &unix.SockaddrNetlink{Family: unix.AF_NETLINK, Groups: kernelGroup}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to bind uevent socket: %w", err)
	}
	// Best effort; the default queue already absorbs normal traffic.
	_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, socketBufferSize)

	m := &Monitor{
		file:      os.NewFile(uintptr(fd), "uevent"),
		subsystem: subsystem,
		events:    make(chan Event, eventQueueLen),
		done:      make(chan struct{}),
	}
	go m.readLoop()
	return m, nil
}

// Events returns the channel notifications are delivered on. It closes
// when the monitor is closed or the socket fails; a consumer seeing it
// close should reopen the monitor.
func (m *Monitor) Events() <-chan Event {
	return m.events
}

// Close releases the socket and stops delivery. The event channel
// closes once the read loop drains.
func (m *Monitor) Close() error {
	m.closeOnce.Do(func() {
		close(m.done)
		m.closeErr = m.file.Close()
	})
	return m.closeErr
}

// readLoop blocks on the socket and forwards matching events until the
// monitor is closed or the socket errors out.
func (m *Monitor) readLoop() {
	defer close(m.events)

	buf := make([]byte, readBufferSize)
	for {
		n, err := m.file.Read(buf)
		if err != nil {
			if !errors.Is(err, os.ErrClosed) {
				logging.Error("Uevent socket read failed", zap.Error(err))
			}
			return
		}

		ev, ok := parseUevent(buf[:n])
		if !ok {
			continue
		}
		if m.subsystem != "" && ev.Subsystem != m.subsystem {
			continue
		}
		select {
		case m.events <- ev:
		case <-m.done:
			return
		}
	}
}
