package memory

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/screencore/internal/metrics"
)

var (
	// ErrExhausted is returned when no pool permitted by the strategy can
	// hold the requested size.
	ErrExhausted = errors.New("memory: pools exhausted")
	// ErrNoSecondaryPool is returned for SecondaryOnly requests on a device
	// without a secondary pool.
	ErrNoSecondaryPool = errors.New("memory: no secondary pool")
	// ErrUnknownHandle is returned when a handle is not present in the ledger.
	ErrUnknownHandle = errors.New("memory: unknown handle")
	// ErrZeroSize is returned for zero-size allocation requests.
	ErrZeroSize = errors.New("memory: zero-size allocation")
)

// Handle is the opaque identity of a live allocation. The zero value is the
// nil handle.
type Handle struct {
	id uuid.UUID
}

// NilHandle is the zero allocation handle. Freeing it is a no-op.
var NilHandle = Handle{}

// IsNil reports whether h is the nil handle.
func (h Handle) IsNil() bool {
	return h.id == uuid.Nil
}

func (h Handle) String() string {
	return h.id.String()
}

func newHandle() Handle {
	return Handle{id: uuid.New()}
}

// Record is one ledger entry for a live allocation. A Size of zero on an
// entry that once had a real size marks a block whose realloc failed; the
// block is still live but its size is no longer tracked.
type Record struct {
	Handle      Handle
	Size        uint64
	Origin      string
	Tier        Tier
	AllocatedAt time.Time
}

// Stats is a point-in-time snapshot of allocator accounting.
type Stats struct {
	TotalAllocated    uint64
	PeakAllocated     uint64
	AllocationCount   int
	FailedAllocations uint64
	PrimaryFree       uint64
	SecondaryFree     uint64
	SecondaryPresent  bool
}

// Manager owns the pools and the allocation ledger. All mutations are guarded
// by a mutex so a background telemetry reader stays safe; the boot and tick
// paths themselves run on a single control flow.
type Manager struct {
	mu        sync.Mutex
	primary   *pool
	secondary *pool // nil when the device has no secondary tier

	ledger map[Handle]Record

	totalAllocated uint64
	peakAllocated  uint64
	failedAllocs   uint64
}

// New creates a Manager with the given pool capacities. A zero secondaryCap
// means the device has no secondary tier.
func New(primaryCap, secondaryCap uint64) *Manager {
	m := &Manager{
		primary: newPool(TierPrimary, primaryCap),
		ledger:  make(map[Handle]Record),
	}
	if secondaryCap > 0 {
		m.secondary = newPool(TierSecondary, secondaryCap)
	}
	return m
}

// SecondaryPresent reports whether the device has a secondary pool.
func (m *Manager) SecondaryPresent() bool {
	return m.secondary != nil
}

// Alloc reserves size bytes using the given strategy and records the
// allocation in the ledger. Failure is a plain error return; escalation to
// the fault registry is the caller's decision.
func (m *Manager) Alloc(size uint64, strategy Strategy, origin string) (Handle, error) {
	if size == 0 {
		return NilHandle, ErrZeroSize
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tier, ok := m.reserve(size, strategy)
	if !ok {
		m.failedAllocs++
		metrics.AllocationFailuresTotal.Inc()
		return NilHandle, fmt.Errorf("alloc %d bytes (%s, %s): %w", size, strategy, origin, m.reserveErr(strategy))
	}

	h := newHandle()
	m.track(Record{
		Handle:      h,
		Size:        size,
		Origin:      origin,
		Tier:        tier,
		AllocatedAt: time.Now(),
	})
	metrics.AllocationsTotal.WithLabelValues(string(tier)).Inc()
	return h, nil
}

// Free releases the allocation behind h. Freeing the nil handle is a no-op;
// freeing an unknown handle is ignored the same way a double free would be.
func (m *Manager) Free(h Handle) {
	if h.IsNil() {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.untrack(h)
}

// Realloc resizes the allocation behind h. A nil handle behaves as Alloc and
// a zero newSize behaves exactly as Free, returning the nil handle. On
// failure the original block stays live and keeps its ledger entry, recorded
// with an explicit zero-size sentinel.
func (m *Manager) Realloc(h Handle, newSize uint64, strategy Strategy) (Handle, error) {
	if h.IsNil() {
		return m.Alloc(newSize, strategy, "realloc")
	}
	if newSize == 0 {
		m.Free(h)
		return NilHandle, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.ledger[h]
	if !ok {
		return NilHandle, ErrUnknownHandle
	}

	// Drop the old reservation first so a same-pool resize can reuse it.
	m.untrack(h)

	tier, reserved := m.reserve(newSize, strategy)
	if !reserved {
		// The original block is still valid. Restore its pool reservation
		// and re-insert its ledger entry with the zero-size sentinel so
		// tracking never silently drops a live block.
		m.pool(rec.Tier).reserve(rec.Size)
		rec.Size = 0
		m.track(rec)
		m.failedAllocs++
		metrics.AllocationFailuresTotal.Inc()
		return NilHandle, fmt.Errorf("realloc to %d bytes (%s): %w", newSize, strategy, m.reserveErr(strategy))
	}

	nh := newHandle()
	m.track(Record{
		Handle:      nh,
		Size:        newSize,
		Origin:      rec.Origin,
		Tier:        tier,
		AllocatedAt: rec.AllocatedAt,
	})
	metrics.AllocationsTotal.WithLabelValues(string(tier)).Inc()
	return nh, nil
}

// Stats returns a snapshot of the allocator accounting.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Stats{
		TotalAllocated:    m.totalAllocated,
		PeakAllocated:     m.peakAllocated,
		AllocationCount:   len(m.ledger),
		FailedAllocations: m.failedAllocs,
		PrimaryFree:       m.primary.free(),
	}
	if m.secondary != nil {
		s.SecondaryPresent = true
		s.SecondaryFree = m.secondary.free()
	}
	return s
}

// Records returns a copy of the live ledger entries, newest last.
func (m *Manager) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Record, 0, len(m.ledger))
	for _, rec := range m.ledger {
		out = append(out, rec)
	}
	return out
}

// RecommendStrategy is a pure function of secondary-pool presence, request
// size and primary free space.
func (m *Manager) RecommendStrategy(size uint64) Strategy {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.secondary == nil {
		return StrategyInternalOnly
	}
	if size > recommendLargeSize {
		return StrategySecondaryPreferred
	}
	if m.primary.free() < size*2 {
		return StrategySecondaryPreferred
	}
	if size < recommendSmallSize {
		return StrategyInternalOnly
	}
	return StrategyAuto
}

// reserve claims size bytes from whichever pool the strategy permits and
// returns the tier that served it. Callers hold the mutex.
func (m *Manager) reserve(size uint64, strategy Strategy) (Tier, bool) {
	switch strategy {
	case StrategyInternalOnly:
		if m.primary.reserve(size) {
			return TierPrimary, true
		}
	case StrategySecondaryOnly:
		if m.secondary != nil && m.secondary.reserve(size) {
			return TierSecondary, true
		}
	case StrategySecondaryPreferred:
		if m.secondary != nil && m.secondary.reserve(size) {
			return TierSecondary, true
		}
		if m.primary.reserve(size) {
			return TierPrimary, true
		}
	case StrategyAuto:
		if size > autoSecondaryThreshold && m.secondary != nil && m.secondary.reserve(size) {
			return TierSecondary, true
		}
		if m.primary.reserve(size) {
			return TierPrimary, true
		}
	}
	return "", false
}

func (m *Manager) reserveErr(strategy Strategy) error {
	if strategy == StrategySecondaryOnly && m.secondary == nil {
		return ErrNoSecondaryPool
	}
	return ErrExhausted
}

func (m *Manager) pool(tier Tier) *pool {
	if tier == TierSecondary && m.secondary != nil {
		return m.secondary
	}
	return m.primary
}

// track inserts a ledger entry and rolls the usage counters forward. Callers
// hold the mutex.
func (m *Manager) track(rec Record) {
	m.ledger[rec.Handle] = rec
	m.totalAllocated += rec.Size
	if m.totalAllocated > m.peakAllocated {
		m.peakAllocated = m.totalAllocated
	}
	metrics.BytesAllocated.Set(float64(m.totalAllocated))
}

// untrack removes a ledger entry and returns its bytes to the owning pool.
// Unknown handles are ignored. Callers hold the mutex.
func (m *Manager) untrack(h Handle) {
	rec, ok := m.ledger[h]
	if !ok {
		return
	}
	delete(m.ledger, h)
	m.totalAllocated -= rec.Size
	m.pool(rec.Tier).release(rec.Size)
	metrics.BytesAllocated.Set(float64(m.totalAllocated))
}
