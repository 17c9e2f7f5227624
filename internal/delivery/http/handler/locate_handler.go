package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/geofence-microservice/internal/pkg/errors"
	"github.com/geofence-microservice/internal/pkg/utils"
	"github.com/geofence-microservice/internal/pkg/validator"
	"github.com/geofence-microservice/internal/usecase"
	"github.com/geofence-microservice/internal/usecase/dto"
)

// LocateHandler - обработчик запросов определения региона по координатам
type LocateHandler struct {
	locateUC *usecase.LocateUseCase
	logger   *zap.Logger
}

// NewLocateHandler - создание нового LocateHandler
func NewLocateHandler(locateUC *usecase.LocateUseCase, logger *zap.Logger) *LocateHandler {
	return &LocateHandler{
		locateUC: locateUC,
		logger:   logger,
	}
}

// Locate godoc
// @Summary Определение региона по координатам
// @Description Возвращает административный регион (штат, округ), содержащий точку. Точка на общей границе регионов относится к региону с меньшим ID.
// @Tags Locate
// @Accept json
// @Produce json
// @Param lat query number true "Широта [-90, 90]"
// @Param lon query number true "Долгота [-180, 180]"
// @Success 200 {object} utils.SuccessResponse{data=dto.LocateResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/locate [get]
func (h *LocateHandler) Locate(c *fiber.Ctx) error {
	lat, err := parseCoordinate(c, "lat")
	if err != nil {
		return utils.SendError(c, err)
	}

	lon, err := parseCoordinate(c, "lon")
	if err != nil {
		return utils.SendError(c, err)
	}

	result, ucErr := h.locateUC.Locate(c.Context(), dto.LocateRequest{Lat: lat, Lon: lon})
	if ucErr != nil {
		return utils.SendError(c, ucErr)
	}

	return utils.SendSuccess(c, result, nil)
}

// LocatePost godoc
// @Summary Определение региона по координатам (JSON body)
// @Description То же, что GET /locate, но принимает координаты в теле запроса
// @Tags Locate
// @Accept json
// @Produce json
// @Param request body dto.LocateRequest true "Координаты точки"
// @Success 200 {object} utils.SuccessResponse{data=dto.LocateResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/locate [post]
func (h *LocateHandler) LocatePost(c *fiber.Ctx) error {
	var req dto.LocateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithMessage(
			"Invalid request body: 'lat' and 'lon' must be numbers"))
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidCoordinates.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		}))
	}

	result, err := h.locateUC.Locate(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, nil)
}

// BatchLocate godoc
// @Summary Пакетное определение регионов
// @Description Определяет регионы для нескольких точек за один запрос (до 100 точек)
// @Tags Locate
// @Accept json
// @Produce json
// @Param request body dto.BatchLocateRequest true "Массив координат точек"
// @Success 200 {object} utils.SuccessResponse{data=dto.BatchLocateResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/batch/locate [post]
func (h *LocateHandler) BatchLocate(c *fiber.Ctx) error {
	var req dto.BatchLocateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithMessage("Invalid request body"))
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		}))
	}

	result, err := h.locateUC.BatchLocate(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{Total: result.Total})
}

// parseCoordinate извлекает координату из query-параметра, различая
// отсутствующий/нечисловой параметр и выход за диапазон (диапазон
// проверяет use case)
func parseCoordinate(c *fiber.Ctx, name string) (float64, *errors.AppError) {
	raw := c.Query(name)
	if raw == "" {
		return 0, errors.ErrInvalidCoordinates.
			WithMessage("Missing required parameter '" + name + "'").
			WithDetails(map[string]interface{}{
				"field":  name,
				"reason": "missing",
			})
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.ErrInvalidCoordinates.
			WithMessage("Parameter '" + name + "' must be a numeric value, got non-numeric input").
			WithDetails(map[string]interface{}{
				"field":  name,
				"value":  raw,
				"reason": "non-numeric",
			})
	}

	return value, nil
}
