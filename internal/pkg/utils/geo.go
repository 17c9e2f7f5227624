package utils

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
)

const earthRadiusKm = 6371.0

// ErrMalformedRing возвращается, когда кольцо полигона не замкнуто или
// содержит меньше 4 вершин. Это ошибка целостности данных, а не входа.
var ErrMalformedRing = errors.New("malformed ring: must be closed and have at least 4 vertices")

// HaversineDistance вычисляет расстояние между двумя точками в километрах
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLon := (lon2 - lon1) * math.Pi / 180.0

	lat1Rad := lat1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// LatitudeInRange проверяет широту
func LatitudeInRange(lat float64) bool {
	return !math.IsNaN(lat) && lat >= -90 && lat <= 90
}

// LongitudeInRange проверяет долготу
func LongitudeInRange(lon float64) bool {
	return !math.IsNaN(lon) && lon >= -180 && lon <= 180
}

// ValidateCoordinates проверяет валидность координат
func ValidateCoordinates(lat, lon float64) bool {
	return LatitudeInRange(lat) && LongitudeInRange(lon)
}

// RingContains проверяет принадлежность точки кольцу методом подсчета
// пересечений (crossing number). Точка на ребре или вершине считается
// принадлежащей кольцу: границы соседних регионов общие, и exclusive
// семантика оставляла бы на них дыры.
func RingContains(ring orb.Ring, p orb.Point) (bool, error) {
	inside, onBoundary, err := ringWalk(ring, p)
	if err != nil {
		return false, err
	}
	return inside || onBoundary, nil
}

// PolygonContains проверяет принадлежность точки полигону с дырами:
// точка внутри внешнего кольца и не строго внутри ни одной дыры.
// Граница дыры принадлежит полигону.
func PolygonContains(poly orb.Polygon, p orb.Point) (bool, error) {
	if len(poly) == 0 {
		return false, ErrMalformedRing
	}

	inOuter, onOuter, err := ringWalk(poly[0], p)
	if err != nil {
		return false, err
	}
	if onOuter {
		return true, nil
	}
	if !inOuter {
		return false, nil
	}

	for _, hole := range poly[1:] {
		inHole, onHole, err := ringWalk(hole, p)
		if err != nil {
			return false, err
		}
		if onHole {
			return true, nil
		}
		if inHole {
			return false, nil
		}
	}

	return true, nil
}

// MultiPolygonContains проверяет принадлежность точки мультиполигону
func MultiPolygonContains(mp orb.MultiPolygon, p orb.Point) (bool, error) {
	for _, poly := range mp {
		ok, err := PolygonContains(poly, p)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// ringWalk - один проход по ребрам кольца: попутно определяет четность
// пересечений луча и попадание точки на ребро.
func ringWalk(ring orb.Ring, p orb.Point) (inside, onBoundary bool, err error) {
	if len(ring) < 4 || ring[0] != ring[len(ring)-1] {
		return false, false, ErrMalformedRing
	}

	for i := 0; i < len(ring)-1; i++ {
		a, b := ring[i], ring[i+1]

		if pointOnSegment(p, a, b) {
			return false, true, nil
		}

		// Луч вправо от точки: ребро пересекает горизонталь точки
		if (a[1] > p[1]) != (b[1] > p[1]) {
			crossX := a[0] + (p[1]-a[1])/(b[1]-a[1])*(b[0]-a[0])
			if p[0] < crossX {
				inside = !inside
			}
		}
	}

	return inside, false, nil
}

// pointOnSegment проверяет, лежит ли точка на отрезке [a, b]
func pointOnSegment(p, a, b orb.Point) bool {
	cross := (b[0]-a[0])*(p[1]-a[1]) - (b[1]-a[1])*(p[0]-a[0])
	if math.Abs(cross) > 1e-12 {
		return false
	}

	return p[0] >= math.Min(a[0], b[0]) && p[0] <= math.Max(a[0], b[0]) &&
		p[1] >= math.Min(a[1], b[1]) && p[1] <= math.Max(a[1], b[1])
}
