package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/geofence-microservice/internal/domain"
	"github.com/geofence-microservice/internal/domain/repository"
	"github.com/geofence-microservice/internal/pkg/errors"
)

// StatsUseCase - use case статистики по загруженному набору регионов
type StatsUseCase struct {
	regionRepo repository.RegionRepository
	cacheRepo  repository.CacheRepository
	locateUC   *LocateUseCase
	logger     *zap.Logger
	cacheTTL   time.Duration
}

// NewStatsUseCase - создание нового StatsUseCase
func NewStatsUseCase(
	regionRepo repository.RegionRepository,
	cacheRepo repository.CacheRepository,
	locateUC *LocateUseCase,
	logger *zap.Logger,
	cacheTTL time.Duration,
) *StatsUseCase {
	return &StatsUseCase{
		regionRepo: regionRepo,
		cacheRepo:  cacheRepo,
		locateUC:   locateUC,
		logger:     logger,
		cacheTTL:   cacheTTL,
	}
}

// GetStatistics возвращает статистику набора: размер, ключи атрибутов,
// общий bbox и счётчик ошибок целостности
func (uc *StatsUseCase) GetStatistics(ctx context.Context) (*domain.Statistics, error) {
	if uc.regionRepo == nil {
		return nil, errors.ErrStoreNotLoaded
	}

	if uc.cacheRepo != nil {
		if cached, err := uc.cacheRepo.GetStats(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	stats := &domain.Statistics{
		Loaded:        true,
		RegionCount:   uc.regionRepo.Count(),
		AttributeKeys: uc.regionRepo.AttributeKeys(),
		DatasetBounds: domain.NewBoundingBox(uc.regionRepo.Bounds()),
	}
	if uc.locateUC != nil {
		stats.IntegrityHits = uc.locateUC.IntegrityHits()
	}

	if uc.cacheRepo != nil {
		if err := uc.cacheRepo.SetStats(ctx, stats, uc.cacheTTL); err != nil {
			uc.logger.Warn("Failed to cache stats", zap.Error(err))
		}
	}

	return stats, nil
}
