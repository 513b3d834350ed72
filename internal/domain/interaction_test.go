package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWatch_DerivesWatchedDuration(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	watch := NewWatch("wch-1", "usr-1", "vid-1", 0.5, 120, now)

	require.NotNil(t, watch)
	assert.Equal(t, "wch-1", watch.ID)
	assert.Equal(t, "usr-1", watch.UserID)
	assert.Equal(t, "vid-1", watch.VideoID)
	assert.InDelta(t, 0.5, watch.WatchTime, 1e-9)
	assert.Equal(t, 60, watch.WatchedDurationSecs)
	assert.Equal(t, now, watch.CreatedAt)
}

func TestNewWatch_ClampsWatchTime(t *testing.T) {
	now := time.Now().UTC()

	over := NewWatch("wch-2", "usr-1", "vid-1", 1.8, 100, now)
	assert.InDelta(t, 1.0, over.WatchTime, 1e-9)
	assert.Equal(t, 100, over.WatchedDurationSecs)

	under := NewWatch("wch-3", "usr-1", "vid-1", -0.3, 100, now)
	assert.Zero(t, under.WatchTime)
	assert.Zero(t, under.WatchedDurationSecs)
}

func TestClampWatchTime(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{name: "in range untouched", in: 0.42, want: 0.42},
		{name: "above one", in: 2.5, want: 1},
		{name: "below zero", in: -1, want: 0},
		{name: "positive infinity", in: math.Inf(1), want: 1},
		{name: "nan maps to zero", in: math.NaN(), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ClampWatchTime(tt.in), 1e-9)
		})
	}
}

func TestInvalidWatchTime(t *testing.T) {
	assert.True(t, InvalidWatchTime(math.NaN()))
	assert.True(t, InvalidWatchTime(math.Inf(-1)))
	assert.False(t, InvalidWatchTime(math.Inf(1)))
	assert.False(t, InvalidWatchTime(-5))
	assert.False(t, InvalidWatchTime(0.7))
}

func TestEventKind_Valid(t *testing.T) {
	assert.True(t, EventWatch.Valid())
	assert.True(t, EventLike.Valid())
	assert.True(t, EventFollow.Valid())
	assert.False(t, EventKind("share").Valid())
	assert.False(t, EventKind("").Valid())
}
