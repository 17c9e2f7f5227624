package utils

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(minLon, minLat, maxLon, maxLat float64) orb.Ring {
	return orb.Ring{
		{minLon, minLat},
		{maxLon, minLat},
		{maxLon, maxLat},
		{minLon, maxLat},
		{minLon, minLat},
	}
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		expected bool
	}{
		{"valid delhi", 28.7041, 77.1025, true},
		{"valid extremes", 90, -180, true},
		{"latitude too high", 90.0001, 0, false},
		{"latitude too low", -91, 0, false},
		{"longitude too high", 0, 180.5, false},
		{"longitude too low", 0, -181, false},
		{"nan latitude", math.NaN(), 0, false},
		{"nan longitude", 0, math.NaN(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateCoordinates(tt.lat, tt.lon))
		})
	}
}

func TestHaversineDistance(t *testing.T) {
	// Delhi -> Mumbai, примерно 1150 км
	dist := HaversineDistance(28.7041, 77.1025, 19.0760, 72.8777)
	assert.InDelta(t, 1150, dist, 30)

	assert.Zero(t, HaversineDistance(10, 20, 10, 20))
}

func TestRingContains(t *testing.T) {
	ring := square(0, 0, 10, 10)

	tests := []struct {
		name     string
		point    orb.Point
		expected bool
	}{
		{"inside", orb.Point{5, 5}, true},
		{"outside right", orb.Point{11, 5}, false},
		{"outside above", orb.Point{5, 10.001}, false},
		{"on bottom edge", orb.Point{5, 0}, true},
		{"on left edge", orb.Point{0, 5}, true},
		{"on corner vertex", orb.Point{10, 10}, true},
		{"far away", orb.Point{-170, -80}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RingContains(ring, tt.point)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRingContains_ConcaveRing(t *testing.T) {
	// П-образное кольцо: выемка сверху по центру
	ring := orb.Ring{
		{0, 0}, {10, 0}, {10, 10}, {6, 10}, {6, 4}, {4, 4}, {4, 10}, {0, 10}, {0, 0},
	}

	inside, err := RingContains(ring, orb.Point{2, 8})
	require.NoError(t, err)
	assert.True(t, inside)

	inNotch, err := RingContains(ring, orb.Point{5, 8})
	require.NoError(t, err)
	assert.False(t, inNotch, "point in the notch is outside the ring")
}

func TestRingContains_Malformed(t *testing.T) {
	t.Run("not closed", func(t *testing.T) {
		open := orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
		_, err := RingContains(open, orb.Point{5, 5})
		assert.ErrorIs(t, err, ErrMalformedRing)
	})

	t.Run("too few vertices", func(t *testing.T) {
		degenerate := orb.Ring{{0, 0}, {10, 0}, {0, 0}}
		_, err := RingContains(degenerate, orb.Point{5, 5})
		assert.ErrorIs(t, err, ErrMalformedRing)
	})

	t.Run("empty polygon", func(t *testing.T) {
		_, err := PolygonContains(orb.Polygon{}, orb.Point{5, 5})
		assert.ErrorIs(t, err, ErrMalformedRing)
	})
}

func TestPolygonContains_WithHole(t *testing.T) {
	poly := orb.Polygon{
		square(0, 0, 10, 10),
		square(4, 4, 6, 6), // дыра
	}

	tests := []struct {
		name     string
		point    orb.Point
		expected bool
	}{
		{"inside polygon outside hole", orb.Point{2, 2}, true},
		{"inside hole", orb.Point{5, 5}, false},
		{"on hole boundary", orb.Point{4, 5}, true},
		{"on outer boundary", orb.Point{0, 5}, true},
		{"outside polygon", orb.Point{20, 20}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PolygonContains(poly, tt.point)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMultiPolygonContains(t *testing.T) {
	mp := orb.MultiPolygon{
		{square(0, 0, 10, 10)},
		{square(100, 40, 110, 50)},
	}

	got, err := MultiPolygonContains(mp, orb.Point{105, 45})
	require.NoError(t, err)
	assert.True(t, got, "point in the second polygon part")

	got, err = MultiPolygonContains(mp, orb.Point{50, 50})
	require.NoError(t, err)
	assert.False(t, got)
}

func TestContainment_Deterministic(t *testing.T) {
	ring := square(0, 0, 10, 10)
	point := orb.Point{3.3333, 7.7777}

	first, err := RingContains(ring, point)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		got, err := RingContains(ring, point)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
}
