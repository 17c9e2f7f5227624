package errors

import "net/http"

var (
	// Ошибки загрузки источника полигонов - фатальны при старте процесса

	ErrSourceNotFound = New(
		"SOURCE_NOT_FOUND",
		"Polygon source file not found",
		http.StatusInternalServerError,
	)

	ErrSourceParse = New(
		"SOURCE_PARSE_ERROR",
		"Failed to parse polygon source",
		http.StatusInternalServerError,
	)

	ErrReprojection = New(
		"REPROJECTION_ERROR",
		"Polygon source is not in WGS84 lon/lat",
		http.StatusInternalServerError,
	)

	ErrStoreNotLoaded = New(
		"STORE_NOT_LOADED",
		"Region store is not loaded",
		http.StatusServiceUnavailable,
	)

	// Ошибки запроса - восстановимые, возвращаются клиенту

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrRegionNotFound = New(
		"REGION_NOT_FOUND",
		"Coordinates do not fall within any mapped region",
		http.StatusNotFound,
	)

	// Инфраструктурные ошибки

	ErrDataIntegrity = New(
		"DATA_INTEGRITY_ERROR",
		"Malformed polygon encountered during containment test",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
