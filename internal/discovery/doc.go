// Package discovery announces and finds keyward gates over mDNS.
//
// A gate that serves the status endpoint can advertise it as a
// "_keyward._tcp" service so watch tooling works without being told an
// address. The daemon side registers through Announce; the tooling
// side browses with a Scanner and gets back one Gate per
// advertisement, carrying the instance name, address, and the TXT
// metadata (currently just "version=...").
//
// # Network Requirements
//
// mDNS only crosses a single network segment and needs UDP port 5353
// open. Gates on another subnet are reachable, just not discoverable;
// watch commands accept an explicit address for that case.
package discovery
