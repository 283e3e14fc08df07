// Package accesslist holds the set of token identifiers that currently
// open the gate.
//
// The set is shared between two loops: the registry syncer is its only
// writer, and the bus watcher reads it on every presented token. All
// methods are safe for concurrent use. Updates happen in place through
// Retain and Insert rather than by swapping the set out, so a token
// that stays authorized across a refresh keeps matching at every
// instant of the refresh.
package accesslist
