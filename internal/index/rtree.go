package index

import (
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"

	"github.com/geofence-microservice/internal/domain"
)

// rectEpsilon - минимальный размер стороны прямоугольника: rtreego не
// принимает вырожденные (нулевые) стороны, а bbox точечного или
// вытянутого в линию полигона может их иметь.
const rectEpsilon = 1e-9

// RTreeIndex - пространственный индекс по bbox регионов. Строится один раз
// над неизменяемым набором и далее только читается, поэтому блокировок нет.
type RTreeIndex struct {
	tree   *rtreego.Rtree
	bounds map[int64]orb.Bound
}

type regionEntry struct {
	id   int64
	rect rtreego.Rect
}

func (e *regionEntry) Bounds() rtreego.Rect {
	return e.rect
}

// Build строит индекс по bbox всех регионов
func Build(regions []*domain.Region) *RTreeIndex {
	entries := make([]rtreego.Spatial, 0, len(regions))
	bounds := make(map[int64]orb.Bound, len(regions))

	for _, region := range regions {
		rect, err := boundToRect(region.BBox)
		if err != nil {
			// bbox вычислен из тех же вершин, что и rect; сюда можно
			// попасть только при пустой геометрии - такой регион
			// не индексируется и кандидатом не станет
			continue
		}
		entries = append(entries, &regionEntry{id: region.ID, rect: rect})
		bounds[region.ID] = region.BBox
	}

	return &RTreeIndex{
		tree:   rtreego.NewTree(2, 25, 50, entries...),
		bounds: bounds,
	}
}

// Candidates возвращает ID регионов, чей bbox содержит точку, по
// возрастанию ID (порядок загрузки). Для точки вне всех bbox - пустой срез.
func (idx *RTreeIndex) Candidates(lat, lon float64) []int64 {
	probe, err := rtreego.NewRect(rtreego.Point{lon, lat}, []float64{rectEpsilon, rectEpsilon})
	if err != nil {
		return nil
	}

	hits := idx.tree.SearchIntersect(probe)

	ids := make([]int64, 0, len(hits))
	point := orb.Point{lon, lat}
	for _, hit := range hits {
		entry := hit.(*regionEntry)
		// Перепроверяем по точному bbox: probe-прямоугольник шире точки
		// на rectEpsilon и может зацепить соседний bbox
		if b, ok := idx.bounds[entry.id]; ok && boundContains(b, point) {
			ids = append(ids, entry.id)
		}
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

// Size возвращает количество проиндексированных регионов
func (idx *RTreeIndex) Size() int {
	return idx.tree.Size()
}

func boundToRect(b orb.Bound) (rtreego.Rect, error) {
	lengths := []float64{
		maxFloat(b.Max[0]-b.Min[0], rectEpsilon),
		maxFloat(b.Max[1]-b.Min[1], rectEpsilon),
	}
	return rtreego.NewRect(rtreego.Point{b.Min[0], b.Min[1]}, lengths)
}

func boundContains(b orb.Bound, p orb.Point) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1]
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
