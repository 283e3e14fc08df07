package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/keyward/keyward/internal/discovery"
	"github.com/keyward/keyward/internal/gate"
	"github.com/keyward/keyward/internal/logging"
	"github.com/keyward/keyward/internal/status"
	"github.com/keyward/keyward/internal/ui"
)

// Shared flags
var (
	gateAddr    string
	plainOutput bool
	jsonOutput  bool
	scanTimeout int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&gateAddr, "addr", "127.0.0.1:8089", "Gate status endpoint (host:port)")

	rootCmd.AddCommand(tailCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(discoverCmd)
}

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Stream live access decisions from a gate",
	Long: `Connect to a gate's decision feed and print every token presentation
as it is judged.

In a terminal this opens an interactive view; when piped or given
--plain, decisions are printed as plain lines instead.`,
	Example: `  # Tail the local gate
  keyward-watch tail

  # Tail a remote gate
  keyward-watch tail --addr 192.168.1.40:8089

  # Plain lines, suitable for piping
  keyward-watch tail --plain | tee decisions.log`,
	RunE: runTail,
}

func init() {
	tailCmd.Flags().BoolVar(&plainOutput, "plain", false, "Print plain lines instead of the interactive view")
}

func runTail(cmd *cobra.Command, args []string) error {
	if err := logging.InitializeFromEnv(); err != nil {
		return err
	}

	wsURL := fmt.Sprintf("ws://%s/v1/events", gateAddr)
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to gate at %s: %w", gateAddr, err)
	}
	defer conn.Close()
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	feed := make(chan ui.FeedEvent, 32)
	go readFeed(conn, feed)

	if plainOutput || !ui.IsTerminal() {
		return tailPlain(feed)
	}

	p := tea.NewProgram(ui.NewTailModel(gateAddr, feed), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("display error: %w", err)
	}
	if m, ok := final.(ui.TailModel); ok && m.Err() != nil {
		return fmt.Errorf("feed closed: %w", m.Err())
	}
	return nil
}

// readFeed decodes decisions off the wire until the connection dies.
func readFeed(conn *websocket.Conn, feed chan<- ui.FeedEvent) {
	defer close(feed)
	for {
		var d gate.Decision
		if err := conn.ReadJSON(&d); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				feed <- ui.FeedEvent{Err: err}
			}
			return
		}
		feed <- ui.FeedEvent{Decision: d}
	}
}

func tailPlain(feed <-chan ui.FeedEvent) error {
	for ev := range feed {
		if ev.Err != nil {
			return fmt.Errorf("feed closed: %w", ev.Err)
		}
		fmt.Println(ui.FormatDecision(ev.Decision))
	}
	return nil
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show gate daemon status",
	Long: `Fetch and display a gate's status document: version, uptime, key
count, and registry sync statistics.`,
	Example: `  # Human-readable status of the local gate
  keyward-watch status

  # Raw JSON from a remote gate
  keyward-watch status --addr 192.168.1.40:8089 --json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the raw JSON document")
}

func runStatus(cmd *cobra.Command, args []string) error {
	url := fmt.Sprintf("http://%s/v1/status", gateAddr)
	client := &http.Client{Timeout: 10 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("failed to reach gate at %s: %w", gateAddr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gate returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read status: %w", err)
	}

	if jsonOutput {
		fmt.Println(strings.TrimSpace(string(body)))
		return nil
	}

	var payload status.Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("failed to parse status: %w", err)
	}

	fmt.Printf("Gate:            %s\n", gateAddr)
	fmt.Printf("Version:         %s\n", payload.Version)
	fmt.Printf("Uptime:          %s\n", time.Duration(payload.UptimeSecs)*time.Second)
	fmt.Printf("Authorized keys: %d\n", payload.AuthorizedKeys)
	fmt.Printf("Feed clients:    %d\n", payload.FeedClients)
	fmt.Println()
	fmt.Printf("Sync cycles:     %d (%d failed)\n", payload.Sync.Cycles, payload.Sync.Failures)
	if !payload.Sync.LastSuccess.IsZero() {
		fmt.Printf("Last success:    %s\n", payload.Sync.LastSuccess.Format(time.RFC3339))
	}
	if !payload.Sync.LastChange.IsZero() {
		fmt.Printf("Last change:     %s (+%d/-%d keys)\n",
			payload.Sync.LastChange.Format(time.RFC3339),
			payload.Sync.LastAdded, payload.Sync.LastRemoved)
	}
	if payload.Sync.LastError != "" {
		fmt.Printf("Last error:      %s\n", payload.Sync.LastError)
	}

	return nil
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover keyward gates on the network",
	Long: `Discover gates using mDNS/DNS-SD.

This command listens for advertisements from gates running with
status.advertise enabled and lists their addresses.`,
	Example: `  # Scan with the default 5 second timeout
  keyward-watch discover

  # Longer scan for sleepy networks
  keyward-watch discover --timeout 15`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&scanTimeout, "timeout", 5, "Scan timeout in seconds")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for keyward gates (timeout: %ds)...\n\n", scanTimeout)

	scanner := discovery.NewScanner()
	scanner.Timeout = time.Duration(scanTimeout) * time.Second

	gates, err := scanner.ScanForGates()
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(gates) == 0 {
		fmt.Println("No gates found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the gate daemon is running with status.advertise enabled")
		fmt.Println("  - mDNS does not cross subnets; use --addr for remote gates")
		fmt.Println("  - Check that UDP port 5353 is open on this machine")
		return nil
	}

	fmt.Printf("Found %d gate(s):\n\n", len(gates))
	for i, g := range gates {
		fmt.Printf("%d. %s\n", i+1, g.Instance)
		fmt.Printf("   Address: %s\n", g.Addr())
		if g.Version() != "" {
			fmt.Printf("   Version: %s\n", g.Version())
		}
		fmt.Println()
	}

	fmt.Println("Use 'keyward-watch tail --addr <address>' to stream decisions")
	return nil
}
