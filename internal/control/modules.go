package control

import (
	"context"

	"github.com/vietddude/screencore/internal/core/config"
)

// Module is the lifecycle contract every hardware collaborator exposes:
// fallible init, a per-tick service call and teardown. The core depends on
// nothing else beyond the feature getters below.
type Module interface {
	Init(ctx context.Context) error
	Service()
	Shutdown()
}

// PowerManager services the power button on every tick.
type PowerManager interface {
	Module
}

// StorageManager is the storage HAL. FileExists is the resource-present
// predicate the runtime stage decides on.
type StorageManager interface {
	Module
	FileExists(path string) bool
}

// DisplayManager is the panel HAL. Summary feeds the periodic stats report.
type DisplayManager interface {
	Module
	SetBrightness(v uint8)
	Summary() string
}

// NetworkManager maintains connectivity; Service runs only outside fallback
// mode.
type NetworkManager interface {
	Module
}

// Runtime is the contract shared by the primary (scripted) runtime and the
// built-in fallback application: init, one tick of work, shutdown. Language
// semantics live entirely behind this interface.
type Runtime interface {
	Init(ctx context.Context) error
	Tick() error
	Shutdown()
}

// SettingsStore loads and persists the typed device settings. Parsing is a
// collaborator concern; the supervisor consumes Settings read-only.
type SettingsStore interface {
	Load() (*config.Settings, error)
	Save(*config.Settings) error
}
