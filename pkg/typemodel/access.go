package typemodel

// Get adapts a typed accessor into a Getter. Use GetPtr when the accessor
// returns a pointer, since a typed nil pointer is not a nil interface.
func Get[T, V any](f func(T) V) Getter {
	return func(inst any) any {
		return f(inst.(T))
	}
}

// GetPtr adapts an accessor returning a pointer. A nil pointer reads as no
// value; otherwise the pointed-to value is returned.
func GetPtr[T, V any](f func(T) *V) Getter {
	return func(inst any) any {
		p := f(inst.(T))
		if p == nil {
			return nil
		}
		return *p
	}
}

// GetList adapts an accessor returning a slice. A nil slice reads as no
// value; an empty slice is an empty collection.
func GetList[T, E any](f func(T) []E) Getter {
	return func(inst any) any {
		s := f(inst.(T))
		if s == nil {
			return nil
		}
		return Values(s)
	}
}

// GetMap adapts an accessor returning a map.
func GetMap[T any, K comparable, V any](f func(T) map[K]V) Getter {
	return func(inst any) any {
		m := f(inst.(T))
		if m == nil {
			return nil
		}
		return Entries(m)
	}
}

// Values copies a typed slice into the []any form collections travel in.
func Values[E any](s []E) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

// ValuesFunc is Values with a per-element conversion, for nested
// collections such as [][]int32.
func ValuesFunc[E any](s []E, conv func(E) any) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = conv(v)
	}
	return out
}

// Entries copies a typed map into the map[any]any form maps travel in.
func Entries[K comparable, V any](m map[K]V) map[any]any {
	out := make(map[any]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// As converts a constructor argument to V. Absent values yield the zero value.
func As[V any](arg any) V {
	if arg == nil {
		var zero V
		return zero
	}
	return arg.(V)
}

// AsPtr converts a constructor argument to *V, nil when absent.
func AsPtr[V any](arg any) *V {
	if arg == nil {
		return nil
	}
	v := arg.(V)
	return &v
}

// AsSlice converts a collection argument to []E, nil when absent.
func AsSlice[E any](arg any) []E {
	return AsSliceFunc(arg, As[E])
}

// AsSliceFunc converts a collection argument element by element.
func AsSliceFunc[E any](arg any, conv func(any) E) []E {
	if arg == nil {
		return nil
	}
	items := arg.([]any)
	out := make([]E, len(items))
	for i, it := range items {
		out[i] = conv(it)
	}
	return out
}

// AsMap converts a map argument to map[K]V, nil when absent.
func AsMap[K comparable, V any](arg any) map[K]V {
	if arg == nil {
		return nil
	}
	entries := arg.(map[any]any)
	out := make(map[K]V, len(entries))
	for k, v := range entries {
		out[As[K](k)] = As[V](v)
	}
	return out
}
