// Package control implements the boot orchestrator and steady-state tick
// loop: strictly ordered, dependency-gated subsystem initialization with
// per-stage fallback flags, cascading fallback decisions, and emergency
// shutdown.
package control

import (
	"errors"
	"sync"

	"github.com/vietddude/screencore/internal/core/config"
	"github.com/vietddude/screencore/internal/fault"
	"github.com/vietddude/screencore/internal/memory"
)

const (
	// defaultHealthCheckTicks is the short health-check period.
	defaultHealthCheckTicks = 30_000
	// defaultStatsReportTicks is the long full-report period, a multiple of
	// the health-check period.
	defaultStatsReportTicks = 300_000
	// maxRuntimeStartAttempts bounds the fallback hop on runtime start: the
	// primary runtime may fail over to the fallback application once, a
	// failing fallback ends the boot.
	maxRuntimeStartAttempts = 2
	// tickFailureLimit is how many consecutive runtime tick failures are
	// tolerated before the condition is escalated as fatal.
	tickFailureLimit = 3
)

// Config holds supervisor tuning. Zero values fall back to defaults.
type Config struct {
	HealthCheckTicks uint32
	StatsReportTicks uint32
	// Restart is the only action the watchdog path may take. It must
	// restart the process without touching core state.
	Restart func()
}

// Modules bundles the collaborator implementations the supervisor drives.
type Modules struct {
	Power    PowerManager
	Storage  StorageManager
	Display  DisplayManager
	Network  NetworkManager
	Primary  Runtime
	Fallback Runtime
	Store    SettingsStore
}

// Supervisor owns the application state machine. One control flow runs Setup
// once and then Tick repeatedly; the lock exists for concurrent readers such
// as the health server.
type Supervisor struct {
	mu sync.Mutex

	cfg      Config
	mods     Modules
	mem      *memory.Manager
	faults   *fault.Registry
	settings *config.Settings

	state       State
	useFallback bool
	// failedOver records that the one permitted primary-to-fallback hop has
	// been spent.
	failedOver   bool
	tickFailures int

	tick            uint32
	lastHealthCheck uint32
	lastStatsReport uint32
}

// ErrStartExhausted is returned when neither the primary runtime nor the
// fallback application could be started.
var ErrStartExhausted = errors.New("control: runtime start attempts exhausted")

// New wires a Supervisor. The allocator and fault registry are owned context
// objects passed through every operation, never package globals.
func New(cfg Config, mods Modules, mem *memory.Manager, faults *fault.Registry) *Supervisor {
	if cfg.HealthCheckTicks == 0 {
		cfg.HealthCheckTicks = defaultHealthCheckTicks
	}
	if cfg.StatsReportTicks == 0 {
		cfg.StatsReportTicks = defaultStatsReportTicks
	}

	return &Supervisor{
		cfg:      cfg,
		mods:     mods,
		mem:      mem,
		faults:   faults,
		settings: config.Default(),
		state:    StateInitializing,
	}
}

// State returns the current application state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// UsingFallback reports whether the degraded built-in application is the
// active (or pending) runtime.
func (s *Supervisor) UsingFallback() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.useFallback
}

// TickCount returns the monotonic tick counter. It wraps around; elapsed
// comparisons must be subtraction based.
func (s *Supervisor) TickCount() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// Settings returns the active settings view.
func (s *Supervisor) Settings() *config.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Snapshot is the aggregate status consumed by the health server.
type Snapshot struct {
	State       string       `json:"state"`
	Healthy     bool         `json:"healthy"`
	UseFallback bool         `json:"use_fallback"`
	Tick        uint32       `json:"tick"`
	Memory      memory.Stats `json:"memory"`
	FaultTotal  uint64       `json:"fault_total"`
	FaultFatal  uint64       `json:"fault_fatal"`
	Display     string       `json:"display"`
}

// Snapshot returns the current aggregate status.
func (s *Supervisor) Snapshot() Snapshot {
	s.mu.Lock()
	state := s.state
	useFallback := s.useFallback
	tick := s.tick
	s.mu.Unlock()

	total, fatal := s.faults.Counts()
	return Snapshot{
		State:       state.String(),
		Healthy:     s.faults.Healthy(),
		UseFallback: useFallback,
		Tick:        tick,
		Memory:      s.mem.Stats(),
		FaultTotal:  total,
		FaultFatal:  fatal,
		Display:     s.mods.Display.Summary(),
	}
}

// WatchdogExpired is the only asynchronous entry point. Its sole permitted
// action is an immediate restart; it must never mutate core state.
func (s *Supervisor) WatchdogExpired() {
	if s.cfg.Restart != nil {
		s.cfg.Restart()
	}
}
