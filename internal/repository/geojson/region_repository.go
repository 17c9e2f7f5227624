package geojson

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"sync/atomic"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"go.uber.org/zap"

	"github.com/geofence-microservice/internal/domain"
	"github.com/geofence-microservice/internal/domain/repository"
	"github.com/geofence-microservice/internal/pkg/errors"
)

// acceptedCRS - имена CRS, означающие WGS84 lon/lat. Репроекция - зона
// ответственности внешнего загрузчика данных, здесь она только проверяется.
var acceptedCRS = map[string]bool{
	"EPSG:4326":                            true,
	"urn:ogc:def:crs:EPSG::4326":           true,
	"urn:ogc:def:crs:OGC:1.3:CRS84":        true,
	"urn:ogc:def:crs:OGC::CRS84":           true,
	"http://www.opengis.net/def/crs/OGC/1.3/CRS84": true,
}

// snapshot - согласованная пара "набор регионов + пространственный индекс".
// Публикуется целиком через атомарный указатель, чтобы выполняющиеся
// запросы никогда не видели store и индекс из разных поколений.
type snapshot struct {
	regions  []*domain.Region
	byID     map[int64]*domain.Region
	index    RegionIndex
	attrKeys []string
	bounds   orb.Bound
}

// RegionIndex - то, что store требует от пространственного индекса
type RegionIndex interface {
	Candidates(lat, lon float64) []int64
}

// IndexBuilder строит индекс по загруженным регионам
type IndexBuilder func(regions []*domain.Region) RegionIndex

// RegionRepository - in-memory хранилище регионов, загружаемое из GeoJSON
// FeatureCollection один раз при старте процесса
type RegionRepository struct {
	path       string
	buildIndex IndexBuilder
	logger     *zap.Logger
	snap       atomic.Pointer[snapshot]
}

var _ repository.RegionRepository = (*RegionRepository)(nil)

// New загружает регионы из GeoJSON-файла. Ошибка загрузки фатальна:
// процесс не должен начинать обслуживание с частично инициализированным
// хранилищем.
func New(path string, buildIndex IndexBuilder, logger *zap.Logger) (*RegionRepository, error) {
	repo := &RegionRepository{
		path:       path,
		buildIndex: buildIndex,
		logger:     logger,
	}

	snap, err := repo.load()
	if err != nil {
		return nil, err
	}
	repo.snap.Store(snap)

	logger.Info("Region store loaded",
		zap.String("path", path),
		zap.Int("regions", len(snap.regions)),
		zap.Strings("attribute_keys", snap.attrKeys),
	)

	return repo, nil
}

// NewFromReader загружает регионы из произвольного источника (тесты,
// embedded-данные). Семантика идентична New.
func NewFromReader(r io.Reader, buildIndex IndexBuilder, logger *zap.Logger) (*RegionRepository, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.ErrSourceParse.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		})
	}

	repo := &RegionRepository{
		buildIndex: buildIndex,
		logger:     logger,
	}

	snap, err := parseSnapshot(data, buildIndex, logger)
	if err != nil {
		return nil, err
	}
	repo.snap.Store(snap)

	return repo, nil
}

// Reload перечитывает источник и атомарно меняет снапшот. Старый снапшот
// остаётся валидным для запросов, начатых до подмены.
func (r *RegionRepository) Reload(_ context.Context) error {
	if r.path == "" {
		return errors.ErrSourceNotFound.WithMessage("region store has no backing file to reload")
	}

	snap, err := r.load()
	if err != nil {
		return err
	}

	r.snap.Store(snap)
	r.logger.Info("Region store reloaded", zap.Int("regions", len(snap.regions)))

	return nil
}

func (r *RegionRepository) load() (*snapshot, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ErrSourceNotFound.WithDetails(map[string]interface{}{
				"path": r.path,
			})
		}
		return nil, errors.ErrSourceParse.WithDetails(map[string]interface{}{
			"path":   r.path,
			"reason": err.Error(),
		})
	}

	return parseSnapshot(data, r.buildIndex, r.logger)
}

func parseSnapshot(data []byte, buildIndex IndexBuilder, logger *zap.Logger) (*snapshot, error) {
	if err := checkCRS(data); err != nil {
		return nil, err
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.ErrSourceParse.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		})
	}

	regions := make([]*domain.Region, 0, len(fc.Features))
	byID := make(map[int64]*domain.Region, len(fc.Features))
	attrKeySet := make(map[string]bool)
	var bounds orb.Bound
	nextID := int64(1)

	for i, feature := range fc.Features {
		geom, err := toMultiPolygon(feature.Geometry)
		if err != nil {
			return nil, errors.ErrSourceParse.WithDetails(map[string]interface{}{
				"feature": i,
				"reason":  err.Error(),
			})
		}

		geom, err = normalizeRings(geom, i, logger)
		if err != nil {
			return nil, err
		}

		raw := flattenProperties(feature.Properties)
		attrs, rawKeys := domain.NormalizeAttributes(raw)
		for k := range attrs {
			attrKeySet[k] = true
		}

		centroid, _ := planar.CentroidArea(geom)

		region := &domain.Region{
			ID:         nextID,
			Geometry:   geom,
			BBox:       geom.Bound(),
			Centroid:   centroid,
			Attributes: attrs,
			Raw:        raw,
			RawKeys:    rawKeys,
		}
		nextID++

		if len(regions) == 0 {
			bounds = region.BBox
		} else {
			bounds = bounds.Union(region.BBox)
		}

		regions = append(regions, region)
		byID[region.ID] = region
	}

	attrKeys := make([]string, 0, len(attrKeySet))
	for k := range attrKeySet {
		attrKeys = append(attrKeys, k)
	}
	sort.Strings(attrKeys)

	return &snapshot{
		regions:  regions,
		byID:     byID,
		index:    buildIndex(regions),
		attrKeys: attrKeys,
		bounds:   bounds,
	}, nil
}

// checkCRS отклоняет коллекции в системах координат, отличных от WGS84
func checkCRS(data []byte) error {
	var envelope struct {
		CRS *struct {
			Properties struct {
				Name string `json:"name"`
			} `json:"properties"`
		} `json:"crs"`
	}

	if err := json.Unmarshal(data, &envelope); err != nil {
		return errors.ErrSourceParse.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		})
	}

	if envelope.CRS != nil && !acceptedCRS[envelope.CRS.Properties.Name] {
		return errors.ErrReprojection.WithDetails(map[string]interface{}{
			"crs": envelope.CRS.Properties.Name,
		})
	}

	return nil
}

func toMultiPolygon(g orb.Geometry) (orb.MultiPolygon, error) {
	switch geom := g.(type) {
	case orb.MultiPolygon:
		return geom, nil
	case orb.Polygon:
		return orb.MultiPolygon{geom}, nil
	default:
		return nil, fmt.Errorf("unsupported geometry type %T, expected Polygon or MultiPolygon", g)
	}
}

// normalizeRings замыкает незамкнутые кольца (частый дефект реальных
// наборов) и отклоняет кольца, в которых меньше треугольника
func normalizeRings(mp orb.MultiPolygon, featureIdx int, logger *zap.Logger) (orb.MultiPolygon, error) {
	for pi, poly := range mp {
		for ri, ring := range poly {
			if len(ring) >= 3 && ring[0] != ring[len(ring)-1] {
				logger.Warn("Closing unclosed ring",
					zap.Int("feature", featureIdx),
					zap.Int("polygon", pi),
					zap.Int("ring", ri),
				)
				ring = append(ring, ring[0])
				mp[pi][ri] = ring
			}

			if len(ring) < 4 {
				return nil, errors.ErrSourceParse.WithDetails(map[string]interface{}{
					"feature": featureIdx,
					"reason":  fmt.Sprintf("ring %d/%d has %d vertices, need at least 4", pi, ri, len(ring)),
				})
			}
		}
	}

	return mp, nil
}

// flattenProperties приводит свойства GeoJSON к строкам, как это делает
// исходный набор атрибутов shapefile
func flattenProperties(props geojson.Properties) map[string]string {
	raw := make(map[string]string, len(props))
	for k, v := range props {
		if v == nil {
			continue
		}
		switch val := v.(type) {
		case string:
			raw[k] = val
		case float64:
			raw[k] = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			raw[k] = fmt.Sprint(val)
		}
	}
	return raw
}

// GetByID возвращает регион по ID
func (r *RegionRepository) GetByID(id int64) (*domain.Region, bool) {
	region, ok := r.snap.Load().byID[id]
	return region, ok
}

// All возвращает регионы в порядке загрузки
func (r *RegionRepository) All() []*domain.Region {
	return r.snap.Load().regions
}

// Count возвращает количество регионов
func (r *RegionRepository) Count() int {
	return len(r.snap.Load().regions)
}

// AttributeKeys возвращает нормализованные ключи атрибутов набора
func (r *RegionRepository) AttributeKeys() []string {
	return r.snap.Load().attrKeys
}

// AttributeValues возвращает отсортированные уникальные значения атрибута
func (r *RegionRepository) AttributeValues(key string) []string {
	seen := make(map[string]bool)
	for _, region := range r.snap.Load().regions {
		if v, ok := region.Attributes[key]; ok && v != "" {
			seen[v] = true
		}
	}

	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)

	return values
}

// Bounds возвращает общий bbox набора
func (r *RegionRepository) Bounds() orb.Bound {
	return r.snap.Load().bounds
}

// Candidates возвращает ID регионов, чей bbox содержит точку
func (r *RegionRepository) Candidates(lat, lon float64) []int64 {
	return r.snap.Load().index.Candidates(lat, lon)
}
