package domain

import "github.com/paulmach/orb"

// Region - административный регион, загруженный из источника полигонов.
// Неизменяем после загрузки: геометрия, bbox и атрибуты вычисляются один раз.
type Region struct {
	ID         int64             `json:"id"`
	Geometry   orb.MultiPolygon  `json:"-"`
	BBox       orb.Bound         `json:"bbox"`
	Centroid   orb.Point         `json:"centroid"`
	Attributes map[string]string `json:"attributes"`

	// Raw хранит все негеометрические свойства источника как есть,
	// RawKeys - их детерминированный (лексикографический) порядок.
	Raw     map[string]string `json:"-"`
	RawKeys []string          `json:"-"`
}

// LatLon представляет координаты точки
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BoundingBox - прямоугольник в координатах WGS84
type BoundingBox struct {
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
}

// NewBoundingBox конвертирует orb.Bound в BoundingBox
func NewBoundingBox(b orb.Bound) BoundingBox {
	return BoundingBox{
		MinLon: b.Min[0],
		MinLat: b.Min[1],
		MaxLon: b.Max[0],
		MaxLat: b.Max[1],
	}
}

// Statistics - статистика по загруженному набору регионов
type Statistics struct {
	Loaded        bool        `json:"loaded"`
	RegionCount   int         `json:"region_count"`
	AttributeKeys []string    `json:"attribute_keys"`
	DatasetBounds BoundingBox `json:"dataset_bounds"`
	IntegrityHits int64       `json:"integrity_hits"`
}
