package index

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geofence-microservice/internal/domain"
)

func testRegion(id int64, minLon, minLat, maxLon, maxLat float64) *domain.Region {
	return &domain.Region{
		ID: id,
		BBox: orb.Bound{
			Min: orb.Point{minLon, minLat},
			Max: orb.Point{maxLon, maxLat},
		},
	}
}

func TestBuild(t *testing.T) {
	idx := Build([]*domain.Region{
		testRegion(1, 0, 0, 10, 10),
		testRegion(2, 5, 5, 15, 15),
		testRegion(3, 100, 40, 110, 50),
	})

	assert.Equal(t, 3, idx.Size())
}

func TestCandidates(t *testing.T) {
	idx := Build([]*domain.Region{
		testRegion(1, 0, 0, 10, 10),
		testRegion(2, 5, 5, 15, 15),
		testRegion(3, 100, 40, 110, 50),
	})

	tests := []struct {
		name     string
		lat, lon float64
		expected []int64
	}{
		{"only first bbox", 2, 2, []int64{1}},
		{"overlap of first and second", 7, 7, []int64{1, 2}},
		{"only second bbox", 12, 12, []int64{2}},
		{"distant region", 45, 105, []int64{3}},
		{"outside all bboxes", -50, -120, []int64{}},
		{"on shared corner", 5, 5, []int64{1, 2}},
		{"on bbox edge", 0, 5, []int64{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, idx.Candidates(tt.lat, tt.lon))
		})
	}
}

func TestCandidates_AscendingOrder(t *testing.T) {
	// Все bbox накрывают одну точку; порядок не зависит от порядка вставки
	idx := Build([]*domain.Region{
		testRegion(4, 0, 0, 20, 20),
		testRegion(1, 0, 0, 20, 20),
		testRegion(3, 0, 0, 20, 20),
		testRegion(2, 0, 0, 20, 20),
	})

	require.Equal(t, []int64{1, 2, 3, 4}, idx.Candidates(10, 10))

	for i := 0; i < 50; i++ {
		assert.Equal(t, []int64{1, 2, 3, 4}, idx.Candidates(10, 10))
	}
}

func TestCandidates_DegenerateBBox(t *testing.T) {
	// Bbox нулевой ширины (полигон, вытянутый в меридиан)
	idx := Build([]*domain.Region{
		testRegion(1, 77, 10, 77, 20),
	})

	assert.Equal(t, []int64{1}, idx.Candidates(15, 77))
	assert.Empty(t, idx.Candidates(15, 78))
}

func TestBuild_EmptyGeometry(t *testing.T) {
	idx := Build(nil)

	assert.Zero(t, idx.Size())
	assert.Empty(t, idx.Candidates(28.7041, 77.1025))
}
