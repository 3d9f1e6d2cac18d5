// Package health exposes the device's aggregate status over HTTP for the
// host harness: a coarse health signal, a detailed snapshot and the
// Prometheus metrics endpoint.
package health

import "github.com/vietddude/screencore/internal/control"

// SystemStatus represents the overall health state of the device.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// Snapshotter is the slice of the supervisor the server reads from.
type Snapshotter interface {
	Snapshot() control.Snapshot
}

// statusOf derives the coarse status from a supervisor snapshot: terminal
// states are critical, fallback mode or a tripped health latch is degraded.
func statusOf(snap control.Snapshot) SystemStatus {
	switch snap.State {
	case control.StateError.String(), control.StateShutdown.String():
		return StatusCritical
	}
	if !snap.Healthy || snap.UseFallback {
		return StatusDegraded
	}
	return StatusHealthy
}
