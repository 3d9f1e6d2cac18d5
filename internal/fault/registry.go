package fault

import (
	"log/slog"
	"sync"
	"time"

	"github.com/vietddude/screencore/internal/metrics"
)

// DefaultHistorySize bounds the most-recent-N event history.
const DefaultHistorySize = 32

// Origin locates the report site with already-validated structured fields.
type Origin struct {
	Module   string
	Function string
	Line     int
}

// Event is one reported fault occurrence. Events are never mutated after
// creation.
type Event struct {
	Code        Code
	Severity    Severity
	Origin      Origin
	Description string
	Timestamp   time.Time
	// Count is the per-code occurrence number at report time (1 for the
	// first occurrence of a code).
	Count uint32
}

// Handler resolves the recovery strategy for a code it was registered for.
// Its return value is authoritative over the default severity table.
type Handler func(Event) Strategy

// Registry owns the bounded fault history and the per-code handler table.
// Report never takes corrective action; it only records and advises.
type Registry struct {
	mu       sync.Mutex
	handlers map[Code]Handler
	history  []Event
	counts   map[Code]uint32
	maxHist  int

	total uint64
	fatal uint64
	// fatalLatched pins Healthy to false from the first Fatal report until
	// ClearHistory, even after the event ages out of the bounded history.
	fatalLatched bool
}

// NewRegistry creates a Registry with the default history bound.
func NewRegistry() *Registry {
	return NewRegistryWithHistory(DefaultHistorySize)
}

// NewRegistryWithHistory creates a Registry keeping at most maxHistory events.
func NewRegistryWithHistory(maxHistory int) *Registry {
	if maxHistory < 1 {
		maxHistory = 1
	}
	return &Registry{
		handlers: make(map[Code]Handler),
		counts:   make(map[Code]uint32),
		maxHist:  maxHistory,
	}
}

// RegisterHandler installs a recovery handler for code. A nil handler removes
// a previous registration.
func (r *Registry) RegisterHandler(code Code, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if handler == nil {
		delete(r.handlers, code)
		return
	}
	r.handlers[code] = handler
}

// Report records a fault occurrence and returns the advisory recovery
// strategy: the registered handler's answer when one exists, otherwise the
// default severity table.
func (r *Registry) Report(code Code, severity Severity, origin Origin, description string) Strategy {
	r.mu.Lock()

	r.counts[code]++
	evt := Event{
		Code:        code,
		Severity:    severity,
		Origin:      origin,
		Description: description,
		Timestamp:   time.Now(),
		Count:       r.counts[code],
	}

	if len(r.history) == r.maxHist {
		r.history = append(r.history[:0], r.history[1:]...)
		r.history[len(r.history)-1] = evt
	} else {
		r.history = append(r.history, evt)
	}

	r.total++
	if severity == SeverityFatal {
		r.fatal++
		r.fatalLatched = true
	}

	strategy := defaultStrategies[severity]
	if handler, ok := r.handlers[code]; ok {
		r.mu.Unlock()
		// Handlers run outside the lock so they may query the registry.
		strategy = handler(evt)
	} else {
		r.mu.Unlock()
	}

	metrics.FaultsTotal.WithLabelValues(severity.String()).Inc()
	r.log(evt, strategy)
	return strategy
}

// LastEvent returns the most recent event, if any.
func (r *Registry) LastEvent() (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.history) == 0 {
		return Event{}, false
	}
	return r.history[len(r.history)-1], true
}

// History returns a copy of the bounded event history, oldest first.
func (r *Registry) History() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Event, len(r.history))
	copy(out, r.history)
	return out
}

// Counts returns the cumulative total and fatal report counters. Both are
// monotonic for the lifetime of the registry.
func (r *Registry) Counts() (total, fatal uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total, r.fatal
}

// Healthy reports the aggregate health signal. It turns false on the first
// Fatal report and stays false until ClearHistory.
func (r *Registry) Healthy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.fatalLatched
}

// ClearHistory drops the event history and releases the fatal latch. The
// cumulative counters are kept.
func (r *Registry) ClearHistory() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.history = r.history[:0]
	r.fatalLatched = false
}

func (r *Registry) log(evt Event, strategy Strategy) {
	attrs := []any{
		"code", evt.Code.String(),
		"module", evt.Origin.Module,
		"description", evt.Description,
		"occurrence", evt.Count,
		"strategy", strategy.String(),
	}
	switch evt.Severity {
	case SeverityInfo:
		slog.Info("Fault reported", attrs...)
	case SeverityWarning:
		slog.Warn("Fault reported", attrs...)
	default:
		slog.Error("Fault reported", attrs...)
	}
}
