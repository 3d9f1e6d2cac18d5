package runtime

import (
	"context"
	"log/slog"
)

// FallbackDisplay is the slice of the panel the fallback application draws
// through.
type FallbackDisplay interface {
	Summary() string
}

// Fallback is the degraded built-in application: a static status screen that
// needs neither storage, network nor script resources.
type Fallback struct {
	display FallbackDisplay
	running bool
	ticks   uint64
}

// NewFallback creates the built-in fallback application.
func NewFallback(display FallbackDisplay) *Fallback {
	return &Fallback{display: display}
}

func (f *Fallback) Init(ctx context.Context) error {
	f.running = true
	f.ticks = 0
	if f.display != nil {
		slog.Info("Fallback application started", "display", f.display.Summary())
	} else {
		slog.Info("Fallback application started")
	}
	return nil
}

func (f *Fallback) Tick() error {
	if !f.running {
		return nil
	}
	f.ticks++
	return nil
}

func (f *Fallback) Shutdown() {
	if f.running {
		f.running = false
		slog.Info("Fallback application stopped", "ticks", f.ticks)
	}
}
