// Package fault implements the structured fault registry: a closed error
// taxonomy, severity-driven recovery strategies, a bounded event history and
// an aggregate health signal. The registry is purely advisory; enforcement
// belongs to the orchestrator.
package fault

// Code identifies a fault in the closed taxonomy. Codes are partitioned by
// subsystem range: hardware 1-99, network 100-199, configuration 200-299,
// runtime 300-399, system 400-499.
type Code int

const (
	CodeNone Code = 0

	// Hardware errors (1-99)
	CodeStorageInitFailed   Code = 1
	CodeStorageMountFailed  Code = 2
	CodeDisplayInitFailed   Code = 3
	CodeAllocationFailed    Code = 4
	CodeSecondaryPoolFailed Code = 5
	CodePowerInitFailed     Code = 6

	// Network errors (100-199)
	CodeNetworkConnectFailed Code = 100
	CodeNetworkTimeout       Code = 101
	CodeHTTPRequestFailed    Code = 102
	CodePushConnectFailed    Code = 103

	// Configuration errors (200-299)
	CodeConfigNotFound    Code = 200
	CodeConfigParseFailed Code = 201
	CodeConfigInvalid     Code = 202
	CodeScriptNotFound    Code = 203

	// Runtime errors (300-399)
	CodeRuntimeStartFailed Code = 300
	CodeRuntimeTickFailed  Code = 301
	CodeInsufficientMemory Code = 302
	CodeWatchdogTimeout    Code = 303

	// System errors (400-499)
	CodeSystemOverheated Code = 400
	CodePowerLow         Code = 401
	CodeSystemUnstable   Code = 402

	CodeUnknown Code = 999
)

func (c Code) String() string {
	switch c {
	case CodeNone:
		return "none"
	case CodeStorageInitFailed:
		return "storage_init_failed"
	case CodeStorageMountFailed:
		return "storage_mount_failed"
	case CodeDisplayInitFailed:
		return "display_init_failed"
	case CodeAllocationFailed:
		return "allocation_failed"
	case CodeSecondaryPoolFailed:
		return "secondary_pool_failed"
	case CodePowerInitFailed:
		return "power_init_failed"
	case CodeNetworkConnectFailed:
		return "network_connect_failed"
	case CodeNetworkTimeout:
		return "network_timeout"
	case CodeHTTPRequestFailed:
		return "http_request_failed"
	case CodePushConnectFailed:
		return "push_connect_failed"
	case CodeConfigNotFound:
		return "config_not_found"
	case CodeConfigParseFailed:
		return "config_parse_failed"
	case CodeConfigInvalid:
		return "config_invalid"
	case CodeScriptNotFound:
		return "script_not_found"
	case CodeRuntimeStartFailed:
		return "runtime_start_failed"
	case CodeRuntimeTickFailed:
		return "runtime_tick_failed"
	case CodeInsufficientMemory:
		return "insufficient_memory"
	case CodeWatchdogTimeout:
		return "watchdog_timeout"
	case CodeSystemOverheated:
		return "system_overheated"
	case CodePowerLow:
		return "power_low"
	case CodeSystemUnstable:
		return "system_unstable"
	default:
		return "unknown"
	}
}

// Severity is supplied by the caller at report time, not fixed per code, so
// the same code can escalate with context.
type Severity int

const (
	// SeverityInfo is informational, the system continues normally.
	SeverityInfo Severity = iota
	// SeverityWarning means degraded functionality but the system continues.
	SeverityWarning
	// SeverityError means the system should attempt recovery.
	SeverityError
	// SeverityFatal means a restart is required.
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Strategy is the advisory corrective action for a reported fault.
type Strategy int

const (
	StrategyNone Strategy = iota
	StrategyRetry
	StrategyFallback
	StrategyRestartModule
	StrategySystemRestart
)

func (s Strategy) String() string {
	switch s {
	case StrategyNone:
		return "none"
	case StrategyRetry:
		return "retry"
	case StrategyFallback:
		return "fallback"
	case StrategyRestartModule:
		return "restart_module"
	case StrategySystemRestart:
		return "system_restart"
	default:
		return "unknown"
	}
}

// defaultStrategies maps severity to the recovery strategy used when no
// handler is registered for a code.
var defaultStrategies = map[Severity]Strategy{
	SeverityInfo:    StrategyNone,
	SeverityWarning: StrategyFallback,
	SeverityError:   StrategyRetry,
	SeverityFatal:   StrategySystemRestart,
}
