// Package storage is the storage collaborator: a directory-backed stand-in
// for the device's removable card.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Manager serves file lookups from a root directory. Init fails when the
// root is missing, mirroring an unmounted card.
type Manager struct {
	root    string
	mounted bool
}

// New creates a storage manager rooted at dir.
func New(dir string) *Manager {
	return &Manager{root: dir}
}

func (m *Manager) Init(ctx context.Context) error {
	info, err := os.Stat(m.root)
	if err != nil {
		return fmt.Errorf("storage root %q: %w", m.root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage root %q is not a directory", m.root)
	}

	m.mounted = true
	slog.Info("Storage mounted", "root", m.root)
	return nil
}

func (m *Manager) Service() {}

func (m *Manager) Shutdown() {
	if m.mounted {
		m.mounted = false
		slog.Info("Storage unmounted", "root", m.root)
	}
}

// FileExists reports whether path exists below the storage root. An
// unmounted store has no files.
func (m *Manager) FileExists(path string) bool {
	if !m.mounted {
		return false
	}
	_, err := os.Stat(filepath.Join(m.root, path))
	return err == nil
}

// ReadFile reads a file below the storage root.
func (m *Manager) ReadFile(path string) ([]byte, error) {
	if !m.mounted {
		return nil, fmt.Errorf("storage not mounted")
	}
	return os.ReadFile(filepath.Join(m.root, path))
}
