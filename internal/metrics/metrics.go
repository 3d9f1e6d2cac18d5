package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AllocationsTotal tracks successful allocations per pool tier
	AllocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screencore_allocations_total",
			Help: "Total number of successful allocations",
		},
		[]string{"tier"},
	)

	// AllocationFailuresTotal tracks failed allocation and realloc attempts
	AllocationFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "screencore_allocation_failures_total",
			Help: "Total number of failed allocation attempts",
		},
	)

	// BytesAllocated tracks live tracked bytes across all pools
	BytesAllocated = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "screencore_bytes_allocated",
			Help: "Currently tracked allocated bytes",
		},
	)

	// FaultsTotal tracks reported faults per severity
	FaultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screencore_faults_total",
			Help: "Total number of reported faults",
		},
		[]string{"severity"},
	)

	// TicksTotal tracks steady-state loop iterations
	TicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "screencore_ticks_total",
			Help: "Total number of steady-state ticks",
		},
	)

	// AppState tracks the current application state as a numeric gauge
	AppState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "screencore_app_state",
			Help: "Current application state (0=initializing, 1=primary, 2=fallback, 3=error, 4=shutdown)",
		},
	)
)
