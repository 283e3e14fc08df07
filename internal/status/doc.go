// Package status exposes the daemon's runtime state over HTTP.
//
// Three endpoints are served, all read-only:
//
//	GET /healthz     liveness probe, plain "ok"
//	GET /v1/status   JSON snapshot: version, uptime, key count, sync stats
//	GET /v1/events   WebSocket stream of access decisions as they happen
//
// The event stream is fed by the Hub, which the gate watcher publishes
// into. Publishing never blocks: a subscriber that cannot keep up
// loses events rather than stalling the watch loop. The endpoint is
// meant for the keyward-watch tool and for dashboards on the
// operator's LAN; it carries no secrets, but nothing about it is
// hardened for the open internet.
package status
