// Keyward-gate is the access control daemon for 1-Wire token readers.
//
// It watches the kernel's w1 bus for presented tokens (iButton fobs),
// answers each presentation from an in-memory authorization list, and
// keeps that list synchronized with a remote key registry over HTTP.
// Decisions are logged and, when the status endpoint is enabled,
// streamed to observers such as the 'keyward-watch' utility.
//
// Usage:
//
//	keyward-gate run [flags]
//
// See 'keyward-gate run --help' for available options.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keyward/keyward/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "keyward-gate",
	Short: "Keyward access gate daemon",
	Long: `The daemon half of keyward, a physical access control system built
around 1-Wire token readers.

The gate answers token presentations from a local authorization list, so a
registry or network outage never locks the door controls up: the list is
refreshed in the background and persisted across restarts.

Note: For observing a running gate, use the separate 'keyward-watch' utility.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("keyward-gate %s (commit: %s)\n", version.Version, version.Commit)
	},
}
