package fault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrigin() Origin {
	return Origin{Module: "test", Function: "TestFunc", Line: 1}
}

func TestReport_DefaultStrategyTable(t *testing.T) {
	tests := []struct {
		severity Severity
		want     Strategy
	}{
		{SeverityInfo, StrategyNone},
		{SeverityWarning, StrategyFallback},
		{SeverityError, StrategyRetry},
		{SeverityFatal, StrategySystemRestart},
	}

	for _, tt := range tests {
		t.Run(tt.severity.String(), func(t *testing.T) {
			r := NewRegistry()
			got := r.Report(CodeUnknown, tt.severity, testOrigin(), "test fault")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReport_HandlerIsAuthoritative(t *testing.T) {
	r := NewRegistry()

	var seen Event
	r.RegisterHandler(CodeNetworkTimeout, func(evt Event) Strategy {
		seen = evt
		return StrategyRestartModule
	})

	got := r.Report(CodeNetworkTimeout, SeverityFatal, testOrigin(), "link dropped")
	assert.Equal(t, StrategyRestartModule, got, "handler overrides the severity table")
	assert.Equal(t, CodeNetworkTimeout, seen.Code)
	assert.Equal(t, uint32(1), seen.Count)

	// Unregistering falls back to the default table.
	r.RegisterHandler(CodeNetworkTimeout, nil)
	got = r.Report(CodeNetworkTimeout, SeverityError, testOrigin(), "link dropped")
	assert.Equal(t, StrategyRetry, got)
}

func TestReport_PerCodeOccurrenceCounter(t *testing.T) {
	r := NewRegistry()

	r.Report(CodeNetworkTimeout, SeverityWarning, testOrigin(), "first")
	r.Report(CodeConfigNotFound, SeverityWarning, testOrigin(), "other code")
	r.Report(CodeNetworkTimeout, SeverityWarning, testOrigin(), "second")

	evt, ok := r.LastEvent()
	require.True(t, ok)
	assert.Equal(t, CodeNetworkTimeout, evt.Code)
	assert.Equal(t, uint32(2), evt.Count)
}

func TestCounts_Monotonic(t *testing.T) {
	r := NewRegistry()

	var lastTotal uint64
	severities := []Severity{SeverityInfo, SeverityFatal, SeverityWarning, SeverityError, SeverityFatal}
	for _, sev := range severities {
		r.Report(CodeSystemUnstable, sev, testOrigin(), "fault")
		total, _ := r.Counts()
		assert.Greater(t, total, lastTotal)
		lastTotal = total
	}

	total, fatal := r.Counts()
	assert.Equal(t, uint64(5), total)
	assert.Equal(t, uint64(2), fatal, "fatal increments only on Fatal reports")
}

func TestHealthy_FatalLatchesUntilClear(t *testing.T) {
	r := NewRegistry()
	assert.True(t, r.Healthy())

	r.Report(CodeDisplayInitFailed, SeverityFatal, testOrigin(), "panel dead")
	assert.False(t, r.Healthy(), "fatal must flip health immediately")

	// Non-fatal reports must not release the latch.
	r.Report(CodeNetworkTimeout, SeverityWarning, testOrigin(), "slow link")
	r.Report(CodeHTTPRequestFailed, SeverityInfo, testOrigin(), "retrying")
	assert.False(t, r.Healthy())

	r.ClearHistory()
	assert.True(t, r.Healthy())

	// Counters survive the clear.
	total, fatal := r.Counts()
	assert.Equal(t, uint64(3), total)
	assert.Equal(t, uint64(1), fatal)
}

func TestHealthy_FatalEvictedFromHistoryStaysLatched(t *testing.T) {
	r := NewRegistryWithHistory(2)

	r.Report(CodeDisplayInitFailed, SeverityFatal, testOrigin(), "panel dead")
	r.Report(CodeNetworkTimeout, SeverityWarning, testOrigin(), "slow")
	r.Report(CodeNetworkTimeout, SeverityWarning, testOrigin(), "slow")

	// The fatal event has been evicted from the bounded history.
	for _, evt := range r.History() {
		assert.NotEqual(t, SeverityFatal, evt.Severity)
	}
	assert.False(t, r.Healthy(), "latch outlives history eviction")
}

func TestHistory_BoundedEviction(t *testing.T) {
	r := NewRegistryWithHistory(3)

	codes := []Code{CodeStorageInitFailed, CodeStorageMountFailed, CodeConfigNotFound, CodeScriptNotFound}
	for _, c := range codes {
		r.Report(c, SeverityWarning, testOrigin(), "fault")
	}

	hist := r.History()
	require.Len(t, hist, 3)
	assert.Equal(t, CodeStorageMountFailed, hist[0].Code, "oldest entry evicted first")
	assert.Equal(t, CodeScriptNotFound, hist[2].Code)
}

func TestLastEvent_EmptyRegistry(t *testing.T) {
	r := NewRegistry()
	_, ok := r.LastEvent()
	assert.False(t, ok)
}
