package control

import (
	"context"
	"log/slog"

	"github.com/vietddude/screencore/internal/fault"
	"github.com/vietddude/screencore/internal/metrics"
)

// Tick runs one steady-state iteration: one tick of the active runtime,
// unconditional power-button servicing, network maintenance outside fallback
// mode, and the two wraparound-safe periodic actions.
func (s *Supervisor) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tick++
	metrics.TicksTotal.Inc()

	s.mods.Power.Service()

	switch s.state {
	case StateRunningPrimary:
		if err := s.mods.Primary.Tick(); err != nil {
			s.handleRuntimeFault(err)
		} else {
			s.tickFailures = 0
		}
	case StateRunningFallback:
		if err := s.mods.Fallback.Tick(); err != nil {
			s.handleRuntimeFault(err)
		} else {
			s.tickFailures = 0
		}
	case StateError, StateShutdown:
		// Terminal degraded spin; only an external restart recovers.
	default:
		slog.Error("Tick in invalid application state", "state", s.state.String())
		s.setState(StateError)
	}

	if !s.useFallback {
		s.mods.Network.Service()
	}

	// Subtraction on the uint32 counter keeps both periods correct across
	// wraparound.
	if s.tick-s.lastHealthCheck > s.cfg.HealthCheckTicks {
		s.lastHealthCheck = s.tick
		if !s.faults.Healthy() {
			slog.Warn("System health degraded")
		}
	}

	if s.tick-s.lastStatsReport > s.cfg.StatsReportTicks {
		s.lastStatsReport = s.tick
		s.logStatsReport()
	}
}

// handleRuntimeFault reports a runtime tick failure and enforces the
// advisory strategy: the primary runtime gets exactly one failover to the
// fallback application, anything persistent beyond that is terminal.
func (s *Supervisor) handleRuntimeFault(err error) {
	s.tickFailures++

	severity := fault.SeverityError
	if s.tickFailures >= tickFailureLimit {
		severity = fault.SeverityFatal
	}

	strategy := s.faults.Report(fault.CodeRuntimeTickFailed, severity,
		s.origin("handleRuntimeFault"), err.Error())

	switch strategy {
	case fault.StrategyNone, fault.StrategyRetry:
		return
	case fault.StrategyRestartModule, fault.StrategyFallback, fault.StrategySystemRestart:
		if s.state == StateRunningPrimary && !s.failedOver {
			s.failover()
			return
		}
		if severity == fault.SeverityFatal {
			slog.Error("Persistent runtime failure, entering error state")
			s.setState(StateError)
		}
	}
}

// failover spends the one permitted primary-to-fallback hop. A failing
// fallback start goes straight to emergency shutdown.
func (s *Supervisor) failover() {
	slog.Warn("Primary runtime failed, switching to fallback application")

	s.mods.Primary.Shutdown()
	s.useFallback = true
	s.failedOver = true
	s.tickFailures = 0

	if err := s.mods.Fallback.Init(context.Background()); err != nil {
		s.faults.Report(fault.CodeRuntimeStartFailed, fault.SeverityFatal,
			s.origin("failover"), "failed to start fallback application")
		s.emergencyShutdown()
		return
	}

	s.setState(StateRunningFallback)
}

// logStatsReport is the long-period full statistics report: allocator, fault
// registry and display summaries.
func (s *Supervisor) logStatsReport() {
	stats := s.mem.Stats()
	total, fatal := s.faults.Counts()

	slog.Info("Statistics report",
		"tick", s.tick,
		"state", s.state.String(),
		"mem_allocated", stats.TotalAllocated,
		"mem_peak", stats.PeakAllocated,
		"mem_live", stats.AllocationCount,
		"mem_failed", stats.FailedAllocations,
		"primary_free", stats.PrimaryFree,
		"secondary_free", stats.SecondaryFree,
		"faults_total", total,
		"faults_fatal", fatal,
		"display", s.mods.Display.Summary(),
	)
}
