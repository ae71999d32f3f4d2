package writer

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/ajitpratap0/recordcol/pkg/errors"
)

const (
	minInt32 = math.MinInt32
	maxInt32 = math.MaxInt32
)

// toItems accepts the []any form collections travel in, plus slices of
// the primitive Go types.
func toItems(path string, v any) ([]any, error) {
	switch s := v.(type) {
	case []any:
		return s, nil
	case []string:
		return anySlice(s), nil
	case []int32:
		return anySlice(s), nil
	case []int64:
		return anySlice(s), nil
	case []int:
		return anySlice(s), nil
	case []int16:
		return anySlice(s), nil
	case []int8:
		return anySlice(s), nil
	case []float32:
		return anySlice(s), nil
	case []float64:
		return anySlice(s), nil
	case []bool:
		return anySlice(s), nil
	case [][]byte:
		return anySlice(s), nil
	default:
		return nil, errors.Newf(errors.ErrorTypeValueConversion, "%s: %T is not a collection", path, v).
			WithDetail("path", path)
	}
}

func anySlice[E any](s []E) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

type entry struct {
	key, value any
}

// toEntries returns the entries of a map value ordered by key, so equal
// maps always produce the same events.
func toEntries(path string, v any) ([]entry, error) {
	var entries []entry
	switch m := v.(type) {
	case map[any]any:
		entries = make([]entry, 0, len(m))
		for k, v := range m {
			entries = append(entries, entry{k, v})
		}
	case map[string]any:
		entries = make([]entry, 0, len(m))
		for k, v := range m {
			entries = append(entries, entry{k, v})
		}
	default:
		return nil, errors.Newf(errors.ErrorTypeValueConversion, "%s: %T is not a map", path, v).
			WithDetail("path", path)
	}
	slices.SortFunc(entries, func(a, b entry) int { return compareKeys(a.key, b.key) })
	return entries, nil
}

func compareKeys(a, b any) int {
	if x, ok := a.(string); ok {
		if y, ok := b.(string); ok {
			return cmp.Compare(x, y)
		}
	}
	if x, ok := toInt64(a); ok {
		if y, ok := toInt64(b); ok {
			return cmp.Compare(x, y)
		}
	}
	if x, ok := toFloat64(a); ok {
		if y, ok := toFloat64(b); ok {
			return cmp.Compare(x, y)
		}
	}
	if x, ok := a.(bool); ok {
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			default:
				return 1
			}
		}
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int16:
		return int64(n), true
	case int8:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	default:
		return 0, false
	}
}

func toFloat64(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	default:
		return 0, false
	}
}
