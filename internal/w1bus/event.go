package w1bus

import (
	"bytes"
	"path"
	"strings"
)

// Device actions reported by the kernel.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
	ActionChange = "change"
)

// udevMagic prefixes datagrams the udev daemon re-broadcasts after
// processing. The monitor listens to the raw kernel group only.
var udevMagic = []byte("libudev\x00")

// Event is one kernel device notification.
type Event struct {
	// Action is what happened to the device: "add", "remove", ...
	Action string
	// DevPath is the device's sysfs path relative to /sys.
	DevPath string
	// Subsystem is the bus the device sits on, "w1" for 1-Wire.
	Subsystem string
	// Name is the device's bus name, the last element of DevPath.
	Name string
}

// parseUevent decodes one netlink datagram. It reports false for
// datagrams that are not kernel uevents: udev re-broadcasts and
// anything without the action@devpath header.
func parseUevent(data []byte) (Event, bool) {
	if len(data) == 0 || bytes.HasPrefix(data, udevMagic) {
		return Event{}, false
	}

	fields := bytes.Split(data, []byte{0})
	action, devPath, found := strings.Cut(string(fields[0]), "@")
	if !found {
		return Event{}, false
	}

	ev := Event{
		Action:  action,
		DevPath: devPath,
		Name:    path.Base(devPath),
	}
	for _, field := range fields[1:] {
		key, value, ok := strings.Cut(string(field), "=")
		if !ok {
			continue
		}
		if key == "SUBSYSTEM" {
			ev.Subsystem = value
		}
	}
	return ev, true
}
