package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64       { return &v }
func float64Ptr(v float64) *float64 { return &v }

func TestResolveMetrics(t *testing.T) {
	connected := &ConnectedMetrics{Platform: "youtube", Followers: 5000, EngagementRate: 3.2}

	t.Run("complete override wins over connected", func(t *testing.T) {
		got, err := ResolveMetrics(&MetricsOverride{Followers: int64Ptr(100), EngagementRate: float64Ptr(9)}, connected)
		require.NoError(t, err)
		assert.Equal(t, Metrics{Followers: 100, EngagementRate: 9, Source: MetricsSourceOverride}, got)
	})

	t.Run("zero valued override still counts as present", func(t *testing.T) {
		got, err := ResolveMetrics(&MetricsOverride{Followers: int64Ptr(0), EngagementRate: float64Ptr(0)}, connected)
		require.NoError(t, err)
		assert.Equal(t, MetricsSourceOverride, got.Source)
		assert.Equal(t, int64(0), got.Followers)
	})

	t.Run("partial override falls back to connected", func(t *testing.T) {
		got, err := ResolveMetrics(&MetricsOverride{Followers: int64Ptr(100)}, connected)
		require.NoError(t, err)
		assert.Equal(t, Metrics{Followers: 5000, EngagementRate: 3.2, Source: MetricsSourceConnected}, got)
	})

	t.Run("override without connected account", func(t *testing.T) {
		got, err := ResolveMetrics(&MetricsOverride{Followers: int64Ptr(7), EngagementRate: float64Ptr(1)}, nil)
		require.NoError(t, err)
		assert.Equal(t, MetricsSourceOverride, got.Source)
	})

	t.Run("neither source", func(t *testing.T) {
		_, err := ResolveMetrics(nil, nil)
		assert.ErrorIs(t, err, ErrMissingMetrics)

		_, err = ResolveMetrics(&MetricsOverride{EngagementRate: float64Ptr(2)}, nil)
		assert.ErrorIs(t, err, ErrMissingMetrics)
	})
}

func TestFactorTable(t *testing.T) {
	table := NewFactorTable(map[string]float64{"YouTube": 0.5}, 0.25)

	value, ok := table.Lookup(" youtube ")
	assert.True(t, ok)
	assert.Equal(t, 0.5, value)

	value, ok = table.Lookup("vine")
	assert.False(t, ok)
	assert.Equal(t, 0.25, value)
}

func TestFactorTableIsolatedFromSource(t *testing.T) {
	source := map[string]float64{"post": 1.5}
	table := NewFactorTable(source, 1)
	source["post"] = 99

	value, _ := table.Lookup("post")
	assert.Equal(t, 1.5, value)
}

func TestPlatformKnown(t *testing.T) {
	assert.True(t, NormalizePlatform(" TikTok ").Known())
	assert.True(t, PlatformFacebook.Known())
	assert.False(t, NormalizePlatform("myspace").Known())
}
