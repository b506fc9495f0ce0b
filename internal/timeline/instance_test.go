package timeline_test

import (
	"testing"

	"github.com/nitro-scheduler/nitro/internal/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompatibleMerge_BusyDominatesOverlappingFree(t *testing.T) {
	in := []timeline.Instance{
		{StartMs: 0, EndMs: 100, Busy: false},
		{StartMs: 50, EndMs: 150, Busy: true},
	}

	out := timeline.CompatibleMerge(in)

	require.Len(t, out, 1)
	assert.Equal(t, int64(0), out[0].StartMs)
	assert.Equal(t, int64(150), out[0].EndMs)
	assert.True(t, out[0].Busy)
}

func TestCompatibleMerge_GapsPreserved(t *testing.T) {
	in := []timeline.Instance{
		{StartMs: 0, EndMs: 10, Busy: true},
		{StartMs: 20, EndMs: 30, Busy: true},
	}

	out := timeline.CompatibleMerge(in)

	require.Len(t, out, 2)
	assert.Equal(t, int64(10), out[0].EndMs)
	assert.Equal(t, int64(20), out[1].StartMs)
}

func TestCompatibleMerge_StrictlyIncreasingStartsNoOverlap(t *testing.T) {
	in := []timeline.Instance{
		{StartMs: 100, EndMs: 200, Busy: true},
		{StartMs: 0, EndMs: 50, Busy: false},
		{StartMs: 40, EndMs: 60, Busy: true},
	}

	out := timeline.CompatibleMerge(in)

	for i := 1; i < len(out); i++ {
		assert.Greater(t, out[i].StartMs, out[i-1].EndMs-1)
		assert.GreaterOrEqual(t, out[i].StartMs, out[i-1].EndMs)
	}
}

func TestComplement_CoversWindowExactly(t *testing.T) {
	window, err := timeline.FromMillis(0, 1000)
	require.NoError(t, err)

	busy := []timeline.Instance{
		{StartMs: 100, EndMs: 200, Busy: true},
		{StartMs: 500, EndMs: 600, Busy: true},
	}

	free := timeline.Complement(busy, window)
	require.Len(t, free, 3)
	assert.Equal(t, int64(0), free[0].StartMs)
	assert.Equal(t, int64(100), free[0].EndMs)
	assert.Equal(t, int64(200), free[1].StartMs)
	assert.Equal(t, int64(500), free[1].EndMs)
	assert.Equal(t, int64(600), free[2].StartMs)
	assert.Equal(t, int64(1000), free[2].EndMs)

	merged := timeline.CompatibleMerge(append(append([]timeline.Instance{}, busy...), free...))
	require.Len(t, merged, 1)
	assert.Equal(t, window.StartMs, merged[0].StartMs)
	assert.Equal(t, window.EndMs, merged[0].EndMs)
}

func TestComplement_NoBusy_WholeWindowFree(t *testing.T) {
	window, err := timeline.FromMillis(0, 1000)
	require.NoError(t, err)

	free := timeline.Complement(nil, window)
	require.Len(t, free, 1)
	assert.Equal(t, window.StartMs, free[0].StartMs)
	assert.Equal(t, window.EndMs, free[0].EndMs)
}

func TestCoversFully(t *testing.T) {
	free := []timeline.Instance{{StartMs: 0, EndMs: 100}}
	span, err := timeline.FromMillis(10, 50)
	require.NoError(t, err)
	assert.True(t, timeline.CoversFully(free, span))

	span2, err := timeline.FromMillis(90, 150)
	require.NoError(t, err)
	assert.False(t, timeline.CoversFully(free, span2))
}

func TestExpandBuffer(t *testing.T) {
	i := timeline.Instance{StartMs: 1000, EndMs: 2000, Busy: true}
	b := timeline.ExpandBuffer(i, 100, 200)
	assert.Equal(t, int64(900), b.StartMs)
	assert.Equal(t, int64(2200), b.EndMs)
}
