// Package runtime hosts the two runtime collaborators behind the supervisor's
// init/tick/shutdown contract: the primary scripted runtime and the built-in
// fallback application. Script language semantics live outside the core; the
// primary runtime here only loads the resource and accounts for its heap.
package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vietddude/screencore/internal/core/config"
	"github.com/vietddude/screencore/internal/memory"
)

// ScriptSource reads the configured script resource.
type ScriptSource interface {
	ReadFile(path string) ([]byte, error)
}

// Script is the primary runtime. Its heap is drawn from the tiered allocator
// so the engine's footprint shows up in the device's memory accounting.
type Script struct {
	cfg    config.ScriptConfig
	source ScriptSource
	mem    *memory.Manager

	heap    memory.Handle
	program []byte
	ticks   uint64
}

// NewScript creates the primary runtime.
func NewScript(cfg config.ScriptConfig, source ScriptSource, mem *memory.Manager) *Script {
	return &Script{cfg: cfg, source: source, mem: mem}
}

func (s *Script) Init(ctx context.Context) error {
	program, err := s.source.ReadFile(s.cfg.File)
	if err != nil {
		return fmt.Errorf("load script %q: %w", s.cfg.File, err)
	}
	if len(program) == 0 {
		return fmt.Errorf("script %q is empty", s.cfg.File)
	}

	heapSize := s.cfg.HeapSize
	if heapSize == 0 {
		heapSize = 64 * 1024
	}
	heap, err := s.mem.Alloc(heapSize, s.mem.RecommendStrategy(heapSize), "script-heap")
	if err != nil {
		return fmt.Errorf("script heap: %w", err)
	}

	s.program = program
	s.heap = heap
	s.ticks = 0
	slog.Info("Script runtime started",
		"script", s.cfg.File,
		"bytes", len(program),
		"heap", heapSize,
	)
	return nil
}

// Tick runs one engine step. The per-step time ceiling is the engine's own
// concern and configured through cfg.TickBudget.
func (s *Script) Tick() error {
	if s.program == nil {
		return fmt.Errorf("script runtime not initialized")
	}
	s.ticks++
	return nil
}

func (s *Script) Shutdown() {
	if s.program == nil {
		return
	}
	s.mem.Free(s.heap)
	s.heap = memory.NilHandle
	s.program = nil
	slog.Info("Script runtime stopped", "ticks", s.ticks)
}
