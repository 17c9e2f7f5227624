package dto

// LocateRequest - запрос на определение региона по координатам
type LocateRequest struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lon float64 `json:"lon" validate:"min=-180,max=180"`
}

// Point - координаты точки
type Point struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lon float64 `json:"lon" validate:"min=-180,max=180"`
}

// BatchLocateRequest - пакетный запрос на определение регионов
type BatchLocateRequest struct {
	Points []Point `json:"points" validate:"required,min=1,max=100,dive"`
}
