package qdrant

import (
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

// translateFilter turns an exact-match filter into a Qdrant must clause.
// Qdrant match conditions accept keywords, integers and booleans, so
// fractional numbers become a closed range on the value.
func translateFilter(filter domain.Filter) map[string]any {
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	must := make([]any, 0, len(keys))
	for _, k := range keys {
		must = append(must, condition(k, filter[k]))
	}
	return map[string]any{"must": must}
}

func condition(key string, value any) map[string]any {
	switch v := value.(type) {
	case string, bool:
		return matchValue(key, v)
	case int:
		return matchValue(key, int64(v))
	case int32:
		return matchValue(key, int64(v))
	case int64:
		return matchValue(key, v)
	case float32:
		return numeric(key, float64(v))
	case float64:
		return numeric(key, v)
	default:
		return matchValue(key, fmt.Sprint(v))
	}
}

func numeric(key string, f float64) map[string]any {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return matchValue(key, int64(f))
	}
	return map[string]any{
		"key":   key,
		"range": map[string]any{"gte": f, "lte": f},
	}
}

func matchValue(key string, value any) map[string]any {
	return map[string]any{
		"key":   key,
		"match": map[string]any{"value": value},
	}
}
