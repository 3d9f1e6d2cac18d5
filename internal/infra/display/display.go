// Package display is the panel collaborator: geometry, brightness, rotation
// and a frame counter. Pixel pushing belongs to the rendering pipeline, not
// here.
package display

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Panel is a simulated display panel.
type Panel struct {
	mu sync.Mutex

	width      int
	height     int
	brightness uint8
	rotation   int
	on         bool
	frames     uint64
}

// New creates a panel with the given geometry.
func New(width, height, rotation int) *Panel {
	return &Panel{width: width, height: height, rotation: rotation}
}

func (p *Panel) Init(ctx context.Context) error {
	if p.width <= 0 || p.height <= 0 {
		return fmt.Errorf("display geometry %dx%d invalid", p.width, p.height)
	}
	if p.rotation < 0 || p.rotation > 3 {
		return fmt.Errorf("display rotation %d out of range", p.rotation)
	}

	p.mu.Lock()
	p.on = true
	p.mu.Unlock()

	slog.Info("Display online", "width", p.width, "height", p.height, "rotation", p.rotation)
	return nil
}

// Service counts one presented frame per tick while the panel is on.
func (p *Panel) Service() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.on {
		p.frames++
	}
}

func (p *Panel) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.on {
		p.on = false
		slog.Info("Display powered off", "frames", p.frames)
	}
}

// SetBrightness applies the configured backlight level.
func (p *Panel) SetBrightness(v uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.brightness = v
}

// Summary describes the panel state for the periodic stats report.
func (p *Panel) Summary() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	state := "off"
	if p.on {
		state = "on"
	}
	return fmt.Sprintf("%dx%d rot=%d bright=%d %s frames=%d",
		p.width, p.height, p.rotation, p.brightness, state, p.frames)
}
