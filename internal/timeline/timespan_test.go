package timeline_test

import (
	"testing"
	"time"

	"github.com/nitro-scheduler/nitro/internal/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeSpan_RejectsNonPositiveDuration(t *testing.T) {
	now := time.Now()
	_, err := timeline.NewTimeSpan(now, now)
	assert.ErrorIs(t, err, timeline.ErrInvalidTimeSpan)
}

func TestTimeSpan_Overlaps(t *testing.T) {
	a, err := timeline.FromMillis(0, 100)
	require.NoError(t, err)
	b, err := timeline.FromMillis(50, 150)
	require.NoError(t, err)
	c, err := timeline.FromMillis(100, 200)
	require.NoError(t, err)

	assert.True(t, a.Overlaps(b))
	assert.False(t, a.Overlaps(c), "half-open interval must not overlap an interval starting at its end")
}

func TestTimeSpan_GreaterThan(t *testing.T) {
	span, err := timeline.FromMillis(0, int64(63*24*time.Hour/time.Millisecond))
	require.NoError(t, err)
	assert.True(t, span.GreaterThan(timeline.MaxEventQuerySpanMs))
}

func TestTimeSpan_AsLocal(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	start := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	span, err := timeline.NewTimeSpan(start, end)
	require.NoError(t, err)

	local := span.AsLocal(loc)
	assert.Equal(t, "Europe/Paris", local.Start.Location().String())
}
