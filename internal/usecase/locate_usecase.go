package usecase

import (
	"context"
	"encoding/json"
	"math"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/geofence-microservice/internal/domain"
	"github.com/geofence-microservice/internal/domain/repository"
	"github.com/geofence-microservice/internal/pkg/errors"
	"github.com/geofence-microservice/internal/pkg/utils"
	"github.com/geofence-microservice/internal/usecase/dto"
)

// LocateUseCase - use case определения административного региона по точке.
// Не хранит изменяемого состояния между запросами, кроме счётчика ошибок
// целостности; безопасен для конкурентного использования.
type LocateUseCase struct {
	regionRepo repository.RegionRepository
	cacheRepo  repository.CacheRepository
	logger     *zap.Logger
	cacheTTL   time.Duration

	integrityHits atomic.Int64
}

// NewLocateUseCase - создание нового LocateUseCase
func NewLocateUseCase(
	regionRepo repository.RegionRepository,
	cacheRepo repository.CacheRepository,
	logger *zap.Logger,
	cacheTTL time.Duration,
) *LocateUseCase {
	return &LocateUseCase{
		regionRepo: regionRepo,
		cacheRepo:  cacheRepo,
		logger:     logger,
		cacheTTL:   cacheTTL,
	}
}

// Locate определяет регион, содержащий точку.
// Порядок: валидация диапазонов -> кандидаты по bbox-индексу -> точный
// point-in-polygon тест по кольцам -> первый совпавший регион (наименьший
// ID при перекрытиях). Точка на границе считается принадлежащей региону.
func (uc *LocateUseCase) Locate(ctx context.Context, req dto.LocateRequest) (*dto.LocateResponse, error) {
	if uc.regionRepo == nil {
		return nil, errors.ErrStoreNotLoaded
	}

	if err := validatePoint(req.Lat, req.Lon); err != nil {
		return nil, err
	}

	// Результаты детерминированы для неизменного набора, поэтому кеш безопасен
	if cached := uc.lookupCache(ctx, req.Lat, req.Lon); cached != nil {
		return cached, nil
	}

	point := orb.Point{req.Lon, req.Lat}
	candidates := uc.regionRepo.Candidates(req.Lat, req.Lon)

	for _, id := range candidates {
		region, ok := uc.regionRepo.GetByID(id)
		if !ok {
			continue
		}

		contains, err := utils.MultiPolygonContains(region.Geometry, point)
		if err != nil {
			// Битая геометрия одной записи не должна ронять запрос:
			// пропускаем кандидата и продолжаем с остальными
			uc.integrityHits.Add(1)
			uc.logger.Error("Data integrity error during containment test",
				zap.Int64("region_id", region.ID),
				zap.Error(err),
			)
			continue
		}

		if contains {
			resp := &dto.LocateResponse{
				Status: "success",
				Coordinates: dto.Coordinates{
					Latitude:  req.Lat,
					Longitude: req.Lon,
				},
				RegionID:   region.ID,
				Attributes: region.Attributes,
			}

			uc.storeCache(ctx, req.Lat, req.Lon, resp)
			return resp, nil
		}
	}

	return nil, uc.notFound(req.Lat, req.Lon)
}

// BatchLocate определяет регионы для нескольких точек за один запрос
func (uc *LocateUseCase) BatchLocate(ctx context.Context, req dto.BatchLocateRequest) (*dto.BatchLocateResponse, error) {
	if len(req.Points) == 0 {
		return nil, errors.ErrInvalidRequest
	}

	results := make([]dto.BatchLocateResult, len(req.Points))

	for i, point := range req.Points {
		if err := validatePoint(point.Lat, point.Lon); err != nil {
			return nil, errors.ErrInvalidCoordinates.WithDetails(map[string]interface{}{
				"point_index": i,
				"reason":      err.Error(),
			})
		}

		result := dto.BatchLocateResult{Index: i}

		resp, err := uc.Locate(ctx, dto.LocateRequest{Lat: point.Lat, Lon: point.Lon})
		switch {
		case err == nil:
			result.Result = resp
		case IsNotFound(err):
			result.NotFound = true
		default:
			// Логируем ошибку, но продолжаем с остальными точками
			uc.logger.Warn("Failed to locate point", zap.Int("index", i), zap.Error(err))
			result.Error = err.Error()
		}

		results[i] = result
	}

	return &dto.BatchLocateResponse{
		Results: results,
		Total:   len(results),
	}, nil
}

// IntegrityHits возвращает количество записей, пропущенных из-за битой
// геометрии с момента старта процесса
func (uc *LocateUseCase) IntegrityHits() int64 {
	return uc.integrityHits.Load()
}

// notFound собирает диагностический not-found ответ: размер набора,
// доступные регионы и ближайший регион по расстоянию до центроида
func (uc *LocateUseCase) notFound(lat, lon float64) *errors.AppError {
	details := map[string]interface{}{
		"lat":               lat,
		"lon":               lon,
		"total_regions":     uc.regionRepo.Count(),
		"available_regions": uc.regionRepo.AttributeValues(domain.AttrState),
	}

	if hint := uc.nearestRegion(lat, lon); hint != nil {
		details["nearest_region"] = hint
	}

	return errors.ErrRegionNotFound.WithDetails(details)
}

// nearestRegion находит регион с ближайшим центроидом (haversine).
// Диагностическая подсказка, не геодезически точная метрика.
func (uc *LocateUseCase) nearestRegion(lat, lon float64) *dto.NearestRegionHint {
	var best *dto.NearestRegionHint
	bestDist := math.MaxFloat64

	for _, region := range uc.regionRepo.All() {
		dist := utils.HaversineDistance(lat, lon, region.Centroid[1], region.Centroid[0])
		if dist < bestDist {
			bestDist = dist
			best = &dto.NearestRegionHint{
				RegionID:   region.ID,
				State:      region.Attributes[domain.AttrState],
				DistanceKm: math.Round(dist*10) / 10,
			}
		}
	}

	return best
}

func (uc *LocateUseCase) lookupCache(ctx context.Context, lat, lon float64) *dto.LocateResponse {
	if uc.cacheRepo == nil {
		return nil
	}

	data, err := uc.cacheRepo.GetLookup(ctx, lat, lon)
	if err != nil || data == nil {
		return nil
	}

	var resp dto.LocateResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		uc.logger.Warn("Failed to unmarshal cached lookup", zap.Error(err))
		return nil
	}

	return &resp
}

func (uc *LocateUseCase) storeCache(ctx context.Context, lat, lon float64, resp *dto.LocateResponse) {
	if uc.cacheRepo == nil {
		return
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return
	}

	if err := uc.cacheRepo.SetLookup(ctx, lat, lon, data, uc.cacheTTL); err != nil {
		uc.logger.Warn("Failed to cache lookup result", zap.Error(err))
	}
}

// validatePoint проверяет диапазоны координат с отдельным сообщением
// для каждого поля
func validatePoint(lat, lon float64) *errors.AppError {
	if !utils.LatitudeInRange(lat) {
		return errors.ErrInvalidCoordinates.
			WithMessage("Latitude must be between -90 and 90").
			WithDetails(map[string]interface{}{
				"field": "lat",
				"value": lat,
			})
	}

	if !utils.LongitudeInRange(lon) {
		return errors.ErrInvalidCoordinates.
			WithMessage("Longitude must be between -180 and 180").
			WithDetails(map[string]interface{}{
				"field": "lon",
				"value": lon,
			})
	}

	return nil
}

// IsNotFound сообщает, является ли ошибка валидным not-found исходом запроса
func IsNotFound(err error) bool {
	appErr, ok := err.(*errors.AppError)
	return ok && appErr.Code == errors.ErrRegionNotFound.Code
}
