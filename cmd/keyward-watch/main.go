// Keyward-watch observes running keyward gates.
//
// It connects to a gate's status endpoint to stream access decisions
// live, show sync statistics, and discover gates on the local network
// over mDNS. It is read-only: nothing it does can change who gets
// through the door.
//
// Usage:
//
//	keyward-watch [command] [flags]
//
// Running without arguments tails the default gate's decision feed.
// See 'keyward-watch --help' for available commands.
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
	Use:   "keyward-watch",
	Short: "Keyward gate observer",
	Long: `A standalone utility for watching keyward access gates.

Streams live token decisions, shows daemon status, and discovers gates
advertising themselves over mDNS.

If no command is specified, the decision feed is tailed from the default
gate address.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: tail the feed when no subcommand is given
		return runTail(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("keyward-watch %s (commit: %s)\n", version.Version, version.Commit)
	},
}
