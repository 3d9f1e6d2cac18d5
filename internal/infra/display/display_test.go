package display

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_RejectsBadGeometry(t *testing.T) {
	assert.Error(t, New(0, 240, 0).Init(context.Background()))
	assert.Error(t, New(536, -1, 0).Init(context.Background()))
	assert.Error(t, New(536, 240, 4).Init(context.Background()))
}

func TestService_CountsFramesWhileOn(t *testing.T) {
	p := New(536, 240, 0)

	p.Service()
	assert.Contains(t, p.Summary(), "frames=0", "no frames before init")

	require.NoError(t, p.Init(context.Background()))
	p.Service()
	p.Service()
	assert.Contains(t, p.Summary(), "frames=2")

	p.Shutdown()
	p.Service()
	assert.Contains(t, p.Summary(), "off")
	assert.Contains(t, p.Summary(), "frames=2", "no frames after shutdown")
}

func TestSummary_ReflectsBrightness(t *testing.T) {
	p := New(536, 240, 1)
	require.NoError(t, p.Init(context.Background()))

	p.SetBrightness(120)
	assert.Equal(t, "536x240 rot=1 bright=120 on frames=0", p.Summary())
}
