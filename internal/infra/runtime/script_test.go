package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/screencore/internal/core/config"
	"github.com/vietddude/screencore/internal/memory"
)

type stubSource struct {
	files map[string][]byte
}

func (s *stubSource) ReadFile(path string) ([]byte, error) {
	data, ok := s.files[path]
	if !ok {
		return nil, errors.New("no such file")
	}
	return data, nil
}

func TestScript_InitAllocatesHeap(t *testing.T) {
	mem := memory.New(32*1024, 256*1024)
	s := NewScript(
		config.ScriptConfig{File: "app.js", HeapSize: 48 * 1024},
		&stubSource{files: map[string][]byte{"app.js": []byte("draw()")}},
		mem,
	)

	require.NoError(t, s.Init(context.Background()))
	assert.Equal(t, uint64(48*1024), mem.Stats().TotalAllocated)

	require.NoError(t, s.Tick())
	s.Shutdown()
	assert.Equal(t, uint64(0), mem.Stats().TotalAllocated, "heap returned on shutdown")
}

func TestScript_InitFailsWhenResourceMissing(t *testing.T) {
	mem := memory.New(128*1024, 0)
	s := NewScript(config.ScriptConfig{File: "app.js"}, &stubSource{files: map[string][]byte{}}, mem)

	assert.Error(t, s.Init(context.Background()))
	assert.Equal(t, uint64(0), mem.Stats().TotalAllocated)
}

func TestScript_InitFailsOnEmptyScript(t *testing.T) {
	mem := memory.New(128*1024, 0)
	s := NewScript(config.ScriptConfig{File: "app.js"},
		&stubSource{files: map[string][]byte{"app.js": {}}}, mem)

	assert.Error(t, s.Init(context.Background()))
}

func TestScript_InitFailsWhenHeapExhausted(t *testing.T) {
	mem := memory.New(16*1024, 0)
	s := NewScript(config.ScriptConfig{File: "app.js", HeapSize: 64 * 1024},
		&stubSource{files: map[string][]byte{"app.js": []byte("draw()")}}, mem)

	err := s.Init(context.Background())
	require.Error(t, err)
	assert.Equal(t, uint64(1), mem.Stats().FailedAllocations)
}

func TestScript_TickBeforeInit(t *testing.T) {
	s := NewScript(config.ScriptConfig{}, &stubSource{}, memory.New(1024, 0))
	assert.Error(t, s.Tick())
}

func TestFallback_Lifecycle(t *testing.T) {
	f := NewFallback(nil)
	require.NoError(t, f.Init(context.Background()))
	require.NoError(t, f.Tick())
	require.NoError(t, f.Tick())
	f.Shutdown()
	assert.Equal(t, uint64(2), f.ticks)
}
