package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/geofence-microservice/internal/domain"
	"github.com/geofence-microservice/internal/index"
	"github.com/geofence-microservice/internal/pkg/errors"
	"github.com/geofence-microservice/internal/repository/geojson"
	"github.com/geofence-microservice/internal/usecase"
)

func newTestRegionRepo(t *testing.T) *geojson.RegionRepository {
	t.Helper()

	repo, err := geojson.NewFromReader(
		strings.NewReader(testCollection),
		func(regions []*domain.Region) geojson.RegionIndex { return index.Build(regions) },
		zap.NewNop(),
	)
	require.NoError(t, err)
	return repo
}

func TestStatsUseCase_GetStatistics(t *testing.T) {
	repo := newTestRegionRepo(t)
	locateUC := usecase.NewLocateUseCase(repo, nil, zap.NewNop(), 0)
	uc := usecase.NewStatsUseCase(repo, nil, locateUC, zap.NewNop(), 0)

	stats, err := uc.GetStatistics(context.Background())

	require.NoError(t, err)
	assert.True(t, stats.Loaded)
	assert.Equal(t, 4, stats.RegionCount)
	assert.Equal(t, []string{"state", "state_code"}, stats.AttributeKeys)
	assert.Zero(t, stats.IntegrityHits)

	// Общий bbox накрывает все четыре региона
	assert.Equal(t, 0.0, stats.DatasetBounds.MinLon)
	assert.Equal(t, 0.0, stats.DatasetBounds.MinLat)
	assert.Equal(t, 77.4, stats.DatasetBounds.MaxLon)
	assert.Equal(t, 30.0, stats.DatasetBounds.MaxLat)
}

func TestStatsUseCase_GetStatistics_StoreNotLoaded(t *testing.T) {
	uc := usecase.NewStatsUseCase(nil, nil, nil, zap.NewNop(), 0)

	_, err := uc.GetStatistics(context.Background())

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrStoreNotLoaded.Code, appErr.Code)
}

func TestStatsUseCase_GetStatistics_CacheHit(t *testing.T) {
	cached := &domain.Statistics{Loaded: true, RegionCount: 99}

	mockRepo := &MockRegionRepository{}
	mockCache := &MockCacheRepository{}
	mockCache.On("GetStats", mock.Anything).Return(cached, nil)

	uc := usecase.NewStatsUseCase(mockRepo, mockCache, nil, zap.NewNop(), time.Minute)

	stats, err := uc.GetStatistics(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 99, stats.RegionCount)
	mockRepo.AssertNotCalled(t, "Count")
}

func TestStatsUseCase_GetStatistics_CacheMiss(t *testing.T) {
	repo := newTestRegionRepo(t)

	mockCache := &MockCacheRepository{}
	mockCache.On("GetStats", mock.Anything).Return(nil, nil)
	mockCache.On("SetStats", mock.Anything, mock.Anything, time.Minute).Return(nil)

	uc := usecase.NewStatsUseCase(repo, mockCache, nil, zap.NewNop(), time.Minute)

	stats, err := uc.GetStatistics(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, stats.RegionCount)
	mockCache.AssertExpectations(t)
}
