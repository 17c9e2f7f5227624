package repository

import (
	"context"

	"github.com/geofence-microservice/internal/domain"
	"github.com/paulmach/orb"
)

// RegionRepository определяет методы доступа к загруженному набору регионов.
// Набор неизменяем после загрузки; все методы безопасны для конкурентного
// чтения без блокировок.
type RegionRepository interface {
	// GetByID возвращает регион по ID за O(1)
	GetByID(id int64) (*domain.Region, bool)

	// All возвращает регионы в порядке загрузки
	All() []*domain.Region

	// Count возвращает количество загруженных регионов
	Count() int

	// AttributeKeys возвращает объединение нормализованных ключей атрибутов
	AttributeKeys() []string

	// AttributeValues возвращает отсортированные уникальные значения атрибута
	AttributeValues(key string) []string

	// Bounds возвращает общий bbox набора
	Bounds() orb.Bound

	// Candidates возвращает ID регионов, чей bbox содержит точку,
	// в порядке загрузки (по возрастанию ID)
	Candidates(lat, lon float64) []int64

	// Reload перечитывает источник и атомарно публикует новый снапшот
	// (store вместе с индексом), не прерывая выполняющиеся запросы
	Reload(ctx context.Context) error
}
