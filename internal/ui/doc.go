// Package ui renders keyward-watch output.
//
// The centerpiece is TailModel, the Bubble Tea model behind the live
// decision feed. The same decisions can be formatted as plain lines
// for piped output; FormatDecision is the single source of that
// layout, so the interactive and plain views never drift apart.
package ui
