package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vietddude/screencore/internal/fault"
	"github.com/vietddude/screencore/internal/memory"
)

// Setup runs the boot sequence: core, hardware, configuration, network,
// runtime. Core and hardware failures are unconditionally fatal and end in
// emergency shutdown; configuration and network failures only force the
// fallback application.
func (s *Supervisor) Setup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slog.Info("Initializing screencore...")

	if err := s.initCore(); err != nil {
		slog.Error("Core system initialization failed", "error", err)
		s.emergencyShutdown()
		return err
	}

	if err := s.initHardware(ctx); err != nil {
		slog.Error("Hardware initialization failed", "error", err)
		s.emergencyShutdown()
		return err
	}

	s.loadSettings()
	s.initNetwork(ctx)

	if err := s.startRuntime(ctx); err != nil {
		slog.Error("Runtime initialization failed", "error", err)
		s.emergencyShutdown()
		return err
	}

	slog.Info("Initialization complete",
		"state", s.state.String(),
		"fallback", s.useFallback,
	)
	return nil
}

// initCore brings up the fault registry and allocator. A probe allocation
// proves the primary pool can serve before anything depends on it.
func (s *Supervisor) initCore() error {
	if s.mem == nil || s.faults == nil {
		return errors.New("control: core subsystems not wired")
	}

	probe, err := s.mem.Alloc(256, memory.StrategyInternalOnly, "boot-probe")
	if err != nil {
		s.faults.Report(fault.CodeAllocationFailed, fault.SeverityFatal,
			s.origin("initCore"), "allocator probe failed")
		return fmt.Errorf("allocator probe: %w", err)
	}
	s.mem.Free(probe)

	slog.Info("Core systems online",
		"primary_free", s.mem.Stats().PrimaryFree,
		"secondary", s.mem.SecondaryPresent(),
	)
	return nil
}

// initHardware brings up power, storage and display in order. Storage
// failure only degrades to fallback; power and display failures abort boot.
func (s *Supervisor) initHardware(ctx context.Context) error {
	slog.Info("Initializing hardware systems...")

	if err := s.mods.Power.Init(ctx); err != nil {
		s.faults.Report(fault.CodePowerInitFailed, fault.SeverityError,
			s.origin("initHardware"), "power manager init failed")
		return fmt.Errorf("power init: %w", err)
	}

	if err := s.mods.Storage.Init(ctx); err != nil {
		s.faults.Report(fault.CodeStorageInitFailed, fault.SeverityWarning,
			s.origin("initHardware"), "storage initialization failed")
		s.useFallback = true
	}

	if err := s.mods.Display.Init(ctx); err != nil {
		s.faults.Report(fault.CodeDisplayInitFailed, fault.SeverityFatal,
			s.origin("initHardware"), "display initialization failed")
		return fmt.Errorf("display init: %w", err)
	}

	slog.Info("Hardware initialization complete")
	return nil
}

// loadSettings loads the typed settings. Any failure keeps the built-in
// defaults and forces the fallback application.
func (s *Supervisor) loadSettings() {
	slog.Info("Loading configuration...")

	cfg, err := s.mods.Store.Load()
	if err != nil {
		s.faults.Report(fault.CodeConfigParseFailed, fault.SeverityWarning,
			s.origin("loadSettings"), "failed to load configuration file")
		s.useFallback = true
		return
	}

	s.settings = cfg
	s.mods.Display.SetBrightness(cfg.Display.Brightness)
}

// initNetwork connects only when settings enable it; any failure forces the
// fallback application but never halts boot.
func (s *Supervisor) initNetwork(ctx context.Context) {
	if !s.settings.Wifi.Enabled {
		slog.Info("Network disabled in configuration")
		s.useFallback = true
		return
	}

	slog.Info("Initializing network...", "ssid", s.settings.Wifi.SSID)

	if err := s.mods.Network.Init(ctx); err != nil {
		s.faults.Report(fault.CodeNetworkConnectFailed, fault.SeverityWarning,
			s.origin("initNetwork"), "network initialization failed")
		s.useFallback = true
	}
}

// startRuntime starts the fallback application when the fallback flag is set,
// otherwise the primary runtime. A missing script resource or a failing
// primary start flips the flag for exactly one more attempt; the loop bound
// replaces the recursive retry of older firmware so a failing fallback can
// never recurse.
func (s *Supervisor) startRuntime(ctx context.Context) error {
	for attempt := 0; attempt < maxRuntimeStartAttempts; attempt++ {
		if s.useFallback {
			return s.startFallback(ctx)
		}

		slog.Info("Starting primary runtime...", "script", s.settings.Script.File)

		if !s.mods.Storage.FileExists(s.settings.Script.File) {
			s.faults.Report(fault.CodeScriptNotFound, fault.SeverityWarning,
				s.origin("startRuntime"), "script file not found, falling back")
			s.useFallback = true
			continue
		}

		if err := s.mods.Primary.Init(ctx); err != nil {
			s.faults.Report(fault.CodeRuntimeStartFailed, fault.SeverityError,
				s.origin("startRuntime"), "primary runtime failed, falling back")
			s.useFallback = true
			continue
		}

		s.setState(StateRunningPrimary)
		return nil
	}
	return ErrStartExhausted
}

// startFallback starts the degraded built-in application. Its failure is
// fatal; there is no further retry.
func (s *Supervisor) startFallback(ctx context.Context) error {
	slog.Info("Starting fallback application...")

	if err := s.mods.Fallback.Init(ctx); err != nil {
		s.faults.Report(fault.CodeRuntimeStartFailed, fault.SeverityFatal,
			s.origin("startFallback"), "failed to start fallback application")
		return fmt.Errorf("fallback start: %w", err)
	}

	s.setState(StateRunningFallback)
	return nil
}

func (s *Supervisor) origin(function string) fault.Origin {
	return fault.Origin{Module: "control", Function: function}
}
