package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertLedgerInvariants verifies the two accounting invariants: the sum of
// live record sizes equals TotalAllocated, and the live record count equals
// AllocationCount.
func assertLedgerInvariants(t *testing.T, m *Manager) {
	t.Helper()

	var sum uint64
	records := m.Records()
	for _, rec := range records {
		sum += rec.Size
	}

	stats := m.Stats()
	assert.Equal(t, stats.TotalAllocated, sum, "ledger size sum must equal total allocated")
	assert.Equal(t, stats.AllocationCount, len(records), "live record count must equal allocation count")
}

func TestAllocFree_Accounting(t *testing.T) {
	m := New(64*1024, 256*1024)

	h1, err := m.Alloc(1024, StrategyInternalOnly, "test")
	require.NoError(t, err)
	h2, err := m.Alloc(2048, StrategyAuto, "test")
	require.NoError(t, err)
	assertLedgerInvariants(t, m)

	stats := m.Stats()
	assert.Equal(t, uint64(3072), stats.TotalAllocated)
	assert.Equal(t, 2, stats.AllocationCount)
	assert.Equal(t, uint64(3072), stats.PeakAllocated)

	m.Free(h1)
	assertLedgerInvariants(t, m)

	stats = m.Stats()
	assert.Equal(t, uint64(2048), stats.TotalAllocated)
	assert.Equal(t, 1, stats.AllocationCount)
	assert.Equal(t, uint64(3072), stats.PeakAllocated, "peak must survive frees")

	m.Free(h2)
	assertLedgerInvariants(t, m)
	assert.Equal(t, uint64(0), m.Stats().TotalAllocated)
}

func TestFree_NilHandleIsNoop(t *testing.T) {
	m := New(4096, 0)

	_, err := m.Alloc(128, StrategyInternalOnly, "test")
	require.NoError(t, err)

	m.Free(NilHandle)
	assert.Equal(t, 1, m.Stats().AllocationCount)
	assertLedgerInvariants(t, m)
}

func TestFree_DoubleFreeIgnored(t *testing.T) {
	m := New(4096, 0)

	h, err := m.Alloc(128, StrategyInternalOnly, "test")
	require.NoError(t, err)

	m.Free(h)
	m.Free(h)
	assert.Equal(t, uint64(0), m.Stats().TotalAllocated)
	assert.Equal(t, 0, m.Stats().AllocationCount)
}

func TestAlloc_FailureIsLocal(t *testing.T) {
	m := New(1024, 0)

	h, err := m.Alloc(4096, StrategyInternalOnly, "test")
	require.ErrorIs(t, err, ErrExhausted)
	assert.True(t, h.IsNil())

	stats := m.Stats()
	assert.Equal(t, uint64(1), stats.FailedAllocations)
	assert.Equal(t, 0, stats.AllocationCount)
	assertLedgerInvariants(t, m)
}

func TestAlloc_SecondaryOnlyWithoutSecondaryFails(t *testing.T) {
	m := New(64*1024, 0)

	// Primary has plenty of room, which must not matter.
	_, err := m.Alloc(128, StrategySecondaryOnly, "test")
	require.ErrorIs(t, err, ErrNoSecondaryPool)
	assert.Equal(t, uint64(1), m.Stats().FailedAllocations)
}

func TestAlloc_SecondaryPreferredFallsBackToPrimary(t *testing.T) {
	m := New(64*1024, 1024)

	// Too big for the secondary tier, must land in primary.
	h, err := m.Alloc(8192, StrategySecondaryPreferred, "test")
	require.NoError(t, err)

	stats := m.Stats()
	assert.Equal(t, uint64(64*1024-8192), stats.PrimaryFree)
	assert.Equal(t, uint64(1024), stats.SecondaryFree)
	m.Free(h)
}

func TestAlloc_AutoRoutesBySize(t *testing.T) {
	m := New(64*1024, 256*1024)

	// Small request stays in primary.
	_, err := m.Alloc(1024, StrategyAuto, "test")
	require.NoError(t, err)
	assert.Equal(t, uint64(256*1024), m.Stats().SecondaryFree)

	// Large request goes to secondary.
	_, err = m.Alloc(8192, StrategyAuto, "test")
	require.NoError(t, err)
	assert.Equal(t, uint64(256*1024-8192), m.Stats().SecondaryFree)
	assertLedgerInvariants(t, m)
}

func TestAlloc_AutoWithoutSecondaryUsesPrimary(t *testing.T) {
	m := New(64*1024, 0)

	h, err := m.Alloc(8192, StrategyAuto, "test")
	require.NoError(t, err)
	assert.Equal(t, uint64(64*1024-8192), m.Stats().PrimaryFree)
	m.Free(h)
}

func TestRealloc_ZeroSizeBehavesAsFree(t *testing.T) {
	m := New(4096, 0)

	h, err := m.Alloc(512, StrategyInternalOnly, "test")
	require.NoError(t, err)

	nh, err := m.Realloc(h, 0, StrategyInternalOnly)
	require.NoError(t, err)
	assert.True(t, nh.IsNil(), "realloc to zero returns no handle")
	assert.Equal(t, 0, m.Stats().AllocationCount)
	assertLedgerInvariants(t, m)
}

func TestRealloc_GrowKeepsAccounting(t *testing.T) {
	m := New(64*1024, 0)

	h, err := m.Alloc(512, StrategyInternalOnly, "test")
	require.NoError(t, err)

	nh, err := m.Realloc(h, 2048, StrategyInternalOnly)
	require.NoError(t, err)
	assert.False(t, nh.IsNil())

	stats := m.Stats()
	assert.Equal(t, uint64(2048), stats.TotalAllocated)
	assert.Equal(t, 1, stats.AllocationCount)
	assertLedgerInvariants(t, m)
}

func TestRealloc_FailurePreservesOriginalEntry(t *testing.T) {
	m := New(4096, 0)

	h, err := m.Alloc(1024, StrategyInternalOnly, "test")
	require.NoError(t, err)

	// Way past pool capacity, must fail.
	nh, err := m.Realloc(h, 1<<20, StrategyInternalOnly)
	require.ErrorIs(t, err, ErrExhausted)
	assert.True(t, nh.IsNil())

	// The original block is still tracked, with the zero-size sentinel.
	records := m.Records()
	require.Len(t, records, 1)
	assert.Equal(t, h, records[0].Handle)
	assert.Equal(t, uint64(0), records[0].Size)
	assert.Equal(t, uint64(1), m.Stats().FailedAllocations)
	assertLedgerInvariants(t, m)

	// The pool reservation of the live block is restored.
	assert.Equal(t, uint64(4096-1024), m.Stats().PrimaryFree)
}

func TestRealloc_NilHandleAllocates(t *testing.T) {
	m := New(4096, 0)

	h, err := m.Realloc(NilHandle, 256, StrategyInternalOnly)
	require.NoError(t, err)
	assert.False(t, h.IsNil())
	assert.Equal(t, 1, m.Stats().AllocationCount)
}

func TestRealloc_UnknownHandle(t *testing.T) {
	m := New(4096, 0)

	_, err := m.Realloc(newHandle(), 256, StrategyInternalOnly)
	require.ErrorIs(t, err, ErrUnknownHandle)
}

func TestRealloc_AutoReappliedToNewSize(t *testing.T) {
	m := New(64*1024, 256*1024)

	// Starts small in primary.
	h, err := m.Alloc(1024, StrategyAuto, "test")
	require.NoError(t, err)
	assert.Equal(t, uint64(256*1024), m.Stats().SecondaryFree)

	// Growing past the threshold moves it to the secondary tier.
	_, err = m.Realloc(h, 16*1024, StrategyAuto)
	require.NoError(t, err)

	stats := m.Stats()
	assert.Equal(t, uint64(256*1024-16*1024), stats.SecondaryFree)
	assert.Equal(t, uint64(64*1024), stats.PrimaryFree)
}

func TestRecommendStrategy_Table(t *testing.T) {
	tests := []struct {
		name         string
		primaryCap   uint64
		secondaryCap uint64
		preAlloc     uint64
		size         uint64
		want         Strategy
	}{
		{"no secondary small", 64 * 1024, 0, 0, 256, StrategyInternalOnly},
		{"no secondary huge", 64 * 1024, 0, 0, 1 << 20, StrategyInternalOnly},
		{"large request", 64 * 1024, 256 * 1024, 0, 64 * 1024, StrategySecondaryPreferred},
		{"primary pressure", 8 * 1024, 256 * 1024, 6 * 1024, 2 * 1024, StrategySecondaryPreferred},
		{"small request", 64 * 1024, 256 * 1024, 0, 512, StrategyInternalOnly},
		{"mid request", 64 * 1024, 256 * 1024, 0, 2 * 1024, StrategyAuto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.primaryCap, tt.secondaryCap)
			if tt.preAlloc > 0 {
				_, err := m.Alloc(tt.preAlloc, StrategyInternalOnly, "pressure")
				require.NoError(t, err)
			}

			got := m.RecommendStrategy(tt.size)
			assert.Equal(t, tt.want, got)
			// Pure function: identical inputs give identical output.
			assert.Equal(t, got, m.RecommendStrategy(tt.size))
		})
	}
}

func TestAllocFree_RandomishSequenceHoldsInvariants(t *testing.T) {
	m := New(128*1024, 512*1024)

	var live []Handle
	sizes := []uint64{64, 512, 1024, 4096, 8192, 40 * 1024}
	for i := 0; i < 200; i++ {
		size := sizes[i%len(sizes)]
		h, err := m.Alloc(size, m.RecommendStrategy(size), "seq")
		if err == nil {
			live = append(live, h)
		}
		if i%3 == 0 && len(live) > 0 {
			m.Free(live[0])
			live = live[1:]
		}
		assertLedgerInvariants(t, m)
	}

	for _, h := range live {
		m.Free(h)
	}
	assertLedgerInvariants(t, m)
	assert.Equal(t, uint64(0), m.Stats().TotalAllocated)
	assert.Equal(t, uint64(128*1024), m.Stats().PrimaryFree)
	assert.Equal(t, uint64(512*1024), m.Stats().SecondaryFree)
}
