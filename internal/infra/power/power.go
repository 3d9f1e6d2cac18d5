// Package power is the power-management collaborator: button edge handling
// and a press hook for the host.
package power

import (
	"context"
	"log/slog"
)

// ButtonSource samples the power button; true while pressed.
type ButtonSource func() bool

// Manager services the power button once per tick with edge detection.
type Manager struct {
	source  ButtonSource
	onPress func()

	lastPressed bool
	presses     uint64
}

// New creates a power manager. A nil source means no button is wired.
func New(source ButtonSource, onPress func()) *Manager {
	return &Manager{source: source, onPress: onPress}
}

func (m *Manager) Init(ctx context.Context) error {
	slog.Info("Power manager online")
	return nil
}

// Service polls the button and fires the press hook on the rising edge only.
func (m *Manager) Service() {
	if m.source == nil {
		return
	}

	pressed := m.source()
	if pressed && !m.lastPressed {
		m.presses++
		slog.Info("Power button pressed", "count", m.presses)
		if m.onPress != nil {
			m.onPress()
		}
	}
	m.lastPressed = pressed
}

func (m *Manager) Shutdown() {
	slog.Info("Power manager shut down", "presses", m.presses)
}

// Presses returns how many button press edges were seen.
func (m *Manager) Presses() uint64 {
	return m.presses
}
