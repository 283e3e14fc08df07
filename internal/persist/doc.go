// Package persist stores the authorized key list on disk so the gate
// can keep working through registry outages and restarts.
//
// # File Format
//
// The file is a flat sequence of 7-byte records, one per authorized
// token, with no header, delimiters, or ordering guarantee. A file
// whose size is not a multiple of seven carries a truncated record and
// fails to load with ErrTruncatedRecord.
//
// Saves go through a temporary file in the same directory followed by
// a rename, so a crash mid-write leaves either the old list or the new
// one, never a torn mix.
package persist
