// Package registry keeps the local authorization list synchronized
// with the remote key registry.
//
// # Protocol
//
// The registry is a plain HTTP endpoint. Each refresh issues a single
// GET with the access token in the X-TOKEN request header and expects
// a text body with one key per line:
//
//	# staff
//	33-00000392c6ea,Alice Keymaster
//	01-0000139be2ab,Bob Visitor
//
// Blank lines and lines starting with '#' are ignored. The name after
// the comma is for humans managing the registry; only the identifier
// matters here. A line that fails to decode is dropped on its own and
// never aborts the rest of the body.
//
// # Refresh Cycle
//
// Syncer.Run fetches the registry at a fixed interval, diffs the
// parsed set against the in-memory list in place (so unchanged keys
// stay authorized at every instant), and persists the result when the
// cycle changed anything. A failed fetch abandons only that cycle: the
// gate keeps answering from the last good list, and the next attempt
// happens one interval later, with no backoff. The distinction matters
// for a door: stale authorization for one interval is acceptable, a
// locked-out building is not.
package registry
