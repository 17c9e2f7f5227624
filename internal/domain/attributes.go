package domain

import "sort"

// Канонические ключи атрибутов региона.
const (
	AttrState     = "state"
	AttrDistrict  = "district"
	AttrStateCode = "state_code"
)

// attributeAliases - таблица нормализации: канонический ключ -> список
// псевдонимов колонок источника в порядке приоритета. Разные shapefile/GeoJSON
// наборы называют одну и ту же колонку по-разному.
var attributeAliases = map[string][]string{
	AttrState:     {"state", "ST_NM", "NAME_1", "STATE", "State", "shape1"},
	AttrDistrict:  {"district", "DISTRICT", "NAME_2", "District"},
	AttrStateCode: {"shapeiso", "ISO", "STATE_CODE"},
}

// canonicalKeys - порядок обхода канонических ключей (детерминированный)
var canonicalKeys = []string{AttrState, AttrDistrict, AttrStateCode}

// NormalizeAttributes разрешает псевдонимы колонок источника в канонические
// ключи. Выполняется один раз при загрузке записи, а не при каждом запросе.
//
// Если ни один псевдоним ключа "state" не найден, возвращаются все сырые
// негеометрические свойства в лексикографическом порядке ключей: порядок
// колонок источника после JSON-декодирования не наблюдаем, поэтому
// детерминированность обеспечивается сортировкой.
func NormalizeAttributes(raw map[string]string) (attrs map[string]string, rawKeys []string) {
	attrs = make(map[string]string)

	for _, key := range canonicalKeys {
		for _, alias := range attributeAliases[key] {
			if v, ok := raw[alias]; ok {
				attrs[key] = v
				break
			}
		}
	}

	rawKeys = make([]string, 0, len(raw))
	for k := range raw {
		rawKeys = append(rawKeys, k)
	}
	sort.Strings(rawKeys)

	// Fallback: ни один псевдоним state не совпал - отдаем сырые колонки как есть
	if _, ok := attrs[AttrState]; !ok {
		attrs = make(map[string]string, len(raw))
		for _, k := range rawKeys {
			attrs[k] = raw[k]
		}
	}

	return attrs, rawKeys
}

// CanonicalAttributeKeys возвращает список канонических ключей
func CanonicalAttributeKeys() []string {
	keys := make([]string, len(canonicalKeys))
	copy(keys, canonicalKeys)
	return keys
}
