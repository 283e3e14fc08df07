package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/keyward/keyward/internal/accesslist"
	"github.com/keyward/keyward/internal/config"
	"github.com/keyward/keyward/internal/discovery"
	"github.com/keyward/keyward/internal/gate"
	"github.com/keyward/keyward/internal/logging"
	"github.com/keyward/keyward/internal/persist"
	"github.com/keyward/keyward/internal/registry"
	"github.com/keyward/keyward/internal/status"
	"github.com/keyward/keyward/internal/version"
	"github.com/keyward/keyward/internal/w1bus"
)

// restartDelay is the pause before a crashed loop is started again.
const restartDelay = 5 * time.Second

var configPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the access gate daemon",
	Long: `Start the gate daemon: watch the 1-Wire bus for presented tokens,
answer each one from the authorization list, and keep that list in sync
with the remote registry.

On startup the last persisted key list is loaded, so the gate is
answering with known keys before the first registry refresh completes.
The daemon runs until interrupted (SIGINT/SIGTERM).`,
	Example: `  # Run with ./config.yaml
  keyward-gate run

  # Run with an explicit configuration file
  keyward-gate run --config /etc/keyward/config.yaml`,
	RunE: runGate,
}

func init() {
	runCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to the YAML configuration file")
}

func runGate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration %s: %w", configPath, err)
	}
	if err := logging.Initialize(cfg.Logging.Level); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	logging.Info("Starting keyward gate",
		zap.String("version", version.Full()),
		zap.String("config", configPath),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Seed the list from the last persisted snapshot. A missing or
	// corrupt file starts empty; the first successful refresh heals it.
	store := persist.NewStore(cfg.Persistence.Path)
	ids, err := store.Load()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logging.Info("No persisted key list yet", zap.String("path", store.Path()))
		} else {
			logging.Error("Failed to load persisted key list, starting empty", zap.Error(err))
		}
	}
	list := accesslist.NewFromIDs(ids)
	logging.Info("Key list loaded", zap.Int("keys", list.Len()), zap.String("path", store.Path()))

	syncer := registry.NewSyncer(registry.Options{
		URL:      cfg.Registry.URL,
		Token:    cfg.Registry.Token,
		Interval: cfg.Registry.RefreshInterval(),
		Timeout:  cfg.Registry.Timeout(),
	}, list, store)

	var sink gate.Sink
	if cfg.Status != nil {
		hub := status.NewHub()
		sink = hub

		statusSrv := status.NewServer(cfg.Status.Addr, list, syncer, hub)
		go func() {
			if err := statusSrv.Start(ctx); err != nil {
				logging.Error("Status server failed", zap.Error(err))
			}
		}()

		if cfg.Status.Advertise {
			port, err := cfg.Status.Port()
			if err != nil {
				return err
			}
			announcer, err := discovery.Announce(cfg.Status.Instance, port, []string{"version=" + version.Version})
			if err != nil {
				logging.Warn("Failed to announce gate over mDNS", zap.Error(err))
			} else {
				defer announcer.Shutdown()
				logging.Info("Announced gate over mDNS", zap.Int("port", port))
			}
		}
	}

	watcher := gate.NewWatcher(list, sink)

	go supervise(ctx, "registry sync", syncer.Run)

	// The watch loop is the daemon's foreground; if the bus monitor
	// dies, it is reopened here.
	supervise(ctx, "bus watch", func(ctx context.Context) error {
		monitor, err := w1bus.Open(cfg.Bus.Subsystem)
		if err != nil {
			return err
		}
		defer monitor.Close()
		logging.Info("Watching bus", zap.String("subsystem", cfg.Bus.Subsystem))
		return watcher.Run(ctx, monitor.Events())
	})

	logging.Info("Shutting down")
	return nil
}

// supervise runs loop until ctx is cancelled, restarting it after a
// pause whenever it returns or panics. A fault in one loop must never
// take the rest of the daemon down with it.
func supervise(ctx context.Context, name string, loop func(context.Context) error) {
	for {
		err := runRecovered(ctx, loop)
		if ctx.Err() != nil {
			return
		}
		logging.Error("Loop stopped, restarting",
			zap.String("loop", name),
			zap.Duration("delay", restartDelay),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return
		case <-time.After(restartDelay):
		}
	}
}

// runRecovered converts a panic inside loop into an ordinary error.
func runRecovered(ctx context.Context, loop func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return loop(ctx)
}
