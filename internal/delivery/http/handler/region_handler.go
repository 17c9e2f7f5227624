package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/geofence-microservice/internal/domain"
	"github.com/geofence-microservice/internal/domain/repository"
	"github.com/geofence-microservice/internal/pkg/errors"
	"github.com/geofence-microservice/internal/pkg/utils"
	"github.com/geofence-microservice/internal/usecase/dto"
)

// RegionHandler - обработчик запросов списка доступных регионов
type RegionHandler struct {
	regionRepo repository.RegionRepository
	logger     *zap.Logger
}

// NewRegionHandler - создание нового RegionHandler
func NewRegionHandler(regionRepo repository.RegionRepository, logger *zap.Logger) *RegionHandler {
	return &RegionHandler{
		regionRepo: regionRepo,
		logger:     logger,
	}
}

// ListRegions godoc
// @Summary Доступные регионы набора
// @Description Возвращает нормализованные ключи атрибутов и уникальные значения каждого (названия штатов, округов, коды)
// @Tags Regions
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.RegionListResponse}
// @Router /api/v1/regions [get]
func (h *RegionHandler) ListRegions(c *fiber.Ctx) error {
	keys := h.regionRepo.AttributeKeys()

	values := make(map[string][]string, len(keys))
	for _, key := range keys {
		values[key] = h.regionRepo.AttributeValues(key)
	}

	resp := dto.RegionListResponse{
		Total:  h.regionRepo.Count(),
		Keys:   keys,
		Values: values,
	}

	return utils.SendSuccess(c, resp, &utils.Meta{Total: resp.Total})
}

// GetRegionByID godoc
// @Summary Регион по ID
// @Description Возвращает атрибуты и bbox региона по его идентификатору
// @Tags Regions
// @Produce json
// @Param id path int true "ID региона"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/regions/{id} [get]
func (h *RegionHandler) GetRegionByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return utils.SendError(c, errors.ErrInvalidRequest.WithMessage("Region ID must be a positive integer"))
	}

	region, ok := h.regionRepo.GetByID(int64(id))
	if !ok {
		return utils.SendError(c, errors.ErrRegionNotFound.
			WithMessage("Region not found").
			WithDetails(map[string]interface{}{"id": id}))
	}

	return utils.SendSuccess(c, fiber.Map{
		"id":         region.ID,
		"attributes": region.Attributes,
		"bbox":       domain.NewBoundingBox(region.BBox),
		"centroid": dto.Coordinates{
			Latitude:  region.Centroid[1],
			Longitude: region.Centroid[0],
		},
	}, nil)
}
