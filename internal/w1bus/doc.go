// Package w1bus delivers kernel device notifications for the 1-Wire
// bus.
//
// # Transport
//
// The kernel broadcasts a uevent datagram on a NETLINK_KOBJECT_UEVENT
// socket whenever a device appears on or leaves a bus. The w1 bus
// master polls for slave devices every few seconds, so touching an
// iButton fob to the reader surfaces as an "add" uevent for subsystem
// "w1" within one poll period, and lifting it as a "remove". Monitor
// subscribes to the kernel's own multicast group (group 1) rather than
// udev's processed feed, so it works the same with or without a udev
// daemon; datagrams the udev daemon re-broadcasts on the shared socket
// carry a "libudev" magic prefix and are dropped.
//
// # Datagram Format
//
// A kernel uevent is a NUL-separated sequence: a summary header
// followed by KEY=VALUE properties.
//
//	add@/devices/w1_bus_master1/33-00000392c6ea\0
//	ACTION=add\0
//	DEVPATH=/devices/w1_bus_master1/33-00000392c6ea\0
//	SUBSYSTEM=w1\0
//	SEQNUM=4711\0
//
// The device's bus name is the last element of the device path; for w1
// slaves it is the textual identifier that onewire.ParseID decodes.
package w1bus
