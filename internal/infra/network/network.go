// Package network is the connectivity collaborator: a dial probe at init and
// periodic reconnect maintenance.
package network

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/vietddude/screencore/internal/core/config"
)

// reconnectInterval spaces out reconnect probes during maintenance, counted
// in Service calls.
const reconnectInterval = 10_000

// Manager maintains the device's network link.
type Manager struct {
	cfg    config.WifiConfig
	dial   func(ctx context.Context, addr string, timeout time.Duration) error
	linked bool
	ticks  uint32
}

// New creates a network manager for the given wifi settings.
func New(cfg config.WifiConfig) *Manager {
	return &Manager{cfg: cfg, dial: dialProbe}
}

func dialProbe(ctx context.Context, addr string, timeout time.Duration) error {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	return conn.Close()
}

func (m *Manager) Init(ctx context.Context) error {
	if m.cfg.ProbeAddress == "" {
		// No probe target configured; treat the link as up so offline
		// development setups still boot the primary runtime.
		m.linked = true
		slog.Info("Network link assumed up", "ssid", m.cfg.SSID)
		return nil
	}

	if err := m.dial(ctx, m.cfg.ProbeAddress, m.cfg.Timeout); err != nil {
		return fmt.Errorf("network probe %s: %w", m.cfg.ProbeAddress, err)
	}

	m.linked = true
	slog.Info("Network link up", "ssid", m.cfg.SSID, "probe", m.cfg.ProbeAddress)
	return nil
}

// Service runs link maintenance: a spaced reconnect probe when the link is
// down and auto-reconnect is enabled.
func (m *Manager) Service() {
	m.ticks++
	if m.linked || !m.cfg.AutoReconnect || m.cfg.ProbeAddress == "" {
		return
	}
	if m.ticks%reconnectInterval != 0 {
		return
	}

	if err := m.dial(context.Background(), m.cfg.ProbeAddress, m.cfg.Timeout); err != nil {
		slog.Warn("Reconnect probe failed", "error", err)
		return
	}
	m.linked = true
	slog.Info("Network link restored")
}

func (m *Manager) Shutdown() {
	if m.linked {
		m.linked = false
		slog.Info("Network link closed")
	}
}

// Linked reports whether the device currently considers the link up.
func (m *Manager) Linked() bool {
	return m.linked
}
