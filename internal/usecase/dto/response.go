package dto

import "github.com/geofence-microservice/internal/domain"

// Coordinates - координаты запроса, возвращаемые в ответе
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocateResponse - успешный результат определения региона
type LocateResponse struct {
	Status      string            `json:"status"`
	Coordinates Coordinates       `json:"coordinates"`
	RegionID    int64             `json:"region_id"`
	Attributes  map[string]string `json:"attributes"`
}

// BatchLocateResult - результат определения региона для одной точки
type BatchLocateResult struct {
	Index    int             `json:"index"`
	Result   *LocateResponse `json:"result,omitempty"`
	NotFound bool            `json:"not_found,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// BatchLocateResponse - ответ на пакетный запрос
type BatchLocateResponse struct {
	Results []BatchLocateResult `json:"results"`
	Total   int                 `json:"total"`
}

// NearestRegionHint - подсказка о ближайшем регионе для not-found ответов
type NearestRegionHint struct {
	RegionID   int64   `json:"region_id"`
	State      string  `json:"state,omitempty"`
	DistanceKm float64 `json:"distance_km"`
}

// RegionListResponse - доступные регионы набора
type RegionListResponse struct {
	Total  int                 `json:"total"`
	Keys   []string            `json:"attribute_keys"`
	Values map[string][]string `json:"values"`
}

// StatsResponse - статистика по загруженному набору
type StatsResponse struct {
	Stats domain.Statistics `json:"stats"`
}
