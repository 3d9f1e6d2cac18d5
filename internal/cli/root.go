package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/vietddude/screencore/internal/control"
	"github.com/vietddude/screencore/internal/core/config"
	"github.com/vietddude/screencore/internal/fault"
	"github.com/vietddude/screencore/internal/health"
	"github.com/vietddude/screencore/internal/infra/display"
	"github.com/vietddude/screencore/internal/infra/network"
	"github.com/vietddude/screencore/internal/infra/power"
	"github.com/vietddude/screencore/internal/infra/runtime"
	"github.com/vietddude/screencore/internal/infra/storage"
	"github.com/vietddude/screencore/internal/memory"
)

var (
	cfgPath    string
	isDebug    bool
	tickRate   int
	healthPort int
)

var rootCmd = &cobra.Command{
	Use:   "screencore",
	Short: "Screencore device firmware core",
	Long:  `Screencore is the resource and fault management core of a small networked display device, run here against simulated hardware.`,
	Run:   runDevice,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "screencore.yaml", "config file (default is screencore.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
	rootCmd.Flags().IntVar(&tickRate, "tick-rate", 200, "steady-state ticks per second")
	rootCmd.PersistentFlags().IntVar(&healthPort, "health-port", 8080, "health/metrics HTTP port")
}

func runDevice(cmd *cobra.Command, args []string) {
	_ = godotenv.Load()

	// Load configuration. A failing load is not fatal for the harness; the
	// boot sequence sees the same failure again and degrades to fallback.
	cfg, err := config.Load(cfgPath)
	if err != nil {
		stylelog.InitDefault()
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	// Setup logging
	slogLevel := slog.LevelInfo
	if isDebug || cfg.Logging.Level == "debug" {
		slogLevel = slog.LevelDebug
	}

	stylelog.InitDefault(&tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Simulated hardware collaborators
	mem := memory.New(cfg.Memory.PrimaryBytes, cfg.Memory.SecondaryBytes)
	faults := fault.NewRegistry()
	storageMgr := storage.New(cfg.Device.StoragePath)
	displayMgr := display.New(cfg.Display.Width, cfg.Display.Height, cfg.Display.Rotation)
	networkMgr := network.New(cfg.Wifi)
	powerMgr := power.New(nil, cancel)

	sup := control.New(control.Config{
		Restart: func() {
			slog.Error("Watchdog expired, restarting")
			os.Exit(1)
		},
	}, control.Modules{
		Power:    powerMgr,
		Storage:  storageMgr,
		Display:  displayMgr,
		Network:  networkMgr,
		Primary:  runtime.NewScript(cfg.Script, storageMgr, mem),
		Fallback: runtime.NewFallback(displayMgr),
		Store:    config.FileStore{Path: cfgPath},
	}, mem, faults)

	healthSrv := health.NewServer(sup, healthPort)
	go func() {
		if err := healthSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Health server failed", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if err := sup.Setup(ctx); err != nil {
		slog.Error("Boot failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Device running", "config", cfgPath, "health_port", healthPort)

	// The watchdog fires only when the tick loop stalls; its sole action is
	// a restart.
	watchdog := time.AfterFunc(cfg.Device.WatchdogTimeout, sup.WatchdogExpired)
	defer watchdog.Stop()

	if tickRate <= 0 {
		tickRate = 200
	}
	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	for {
		select {
		case sig := <-sigChan:
			slog.Info("Received signal, shutting down...", "signal", sig)
			sup.EmergencyShutdown()
			stopHealth(healthSrv)
			return

		case <-ctx.Done():
			slog.Info("Stop requested, shutting down...")
			sup.EmergencyShutdown()
			stopHealth(healthSrv)
			return

		case <-ticker.C:
			sup.Tick()
			watchdog.Reset(cfg.Device.WatchdogTimeout)

			if sup.State() == control.StateShutdown {
				slog.Error("Device halted")
				stopHealth(healthSrv)
				// Irrecoverable without an external reset; idle until killed.
				<-sigChan
				return
			}
		}
	}
}

func stopHealth(srv *health.Server) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		slog.Error("Error stopping health server", "error", err)
	}
}
