// Package gate makes the access decision for every token presented on
// the bus.
//
// Watcher.Run is the daemon's foreground loop: it blocks on bus
// notifications, decodes each new device's name, and answers from the
// shared authorization list. The decision itself is a pure membership
// check; acting on it (logging, streaming to observers, driving a
// strike plate) happens through the Sink. The loop never talks to the
// registry: a registry outage leaves it answering from the last good
// list indefinitely.
package gate
