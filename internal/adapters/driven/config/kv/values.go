// Package kv holds the typed key/value map behind the config stores.
// Keys use dot notation ("llm.provider"); values are whatever the
// decoder produced, so numeric accessors accept every integer and float
// width TOML, JSON or a caller may hand over.
package kv

import (
	"maps"
	"slices"
	"strings"
	"sync"
)

// Values is a concurrency-safe map with lenient typed getters.
// The zero value is not usable; call New.
type Values struct {
	mu sync.RWMutex
	m  map[string]any
}

// New returns an empty map.
func New() *Values {
	return &Values{m: make(map[string]any)}
}

// Get returns the raw value for key.
func (v *Values) Get(key string) (any, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	val, ok := v.m[key]
	return val, ok
}

// GetString returns key as a string, or "" for other types.
func (v *Values) GetString(key string) string {
	val, _ := v.Get(key)
	s, _ := val.(string)
	return s
}

// GetInt returns key as an int. Floats are truncated.
func (v *Values) GetInt(key string) int {
	val, _ := v.Get(key)
	switch n := val.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float32:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// GetFloat returns key as a float64. Integers are widened.
func (v *Values) GetFloat(key string) float64 {
	val, _ := v.Get(key)
	switch n := val.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

// GetBool returns key as a bool, or false for other types.
func (v *Values) GetBool(key string) bool {
	val, _ := v.Get(key)
	b, _ := val.(bool)
	return b
}

// GetStringSlice returns key as strings. Non-string elements of a
// decoded array are skipped.
func (v *Values) GetStringSlice(key string) []string {
	val, _ := v.Get(key)
	switch s := val.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

// Put stores value and returns what it replaced.
func (v *Values) Put(key string, value any) (previous any, existed bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	previous, existed = v.m[key]
	v.m[key] = value
	return previous, existed
}

// Delete removes key.
func (v *Values) Delete(key string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.m, key)
}

// Snapshot returns a shallow copy of the map.
func (v *Values) Snapshot() map[string]any {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return maps.Clone(v.m)
}

// Replace swaps the whole map.
func (v *Values) Replace(m map[string]any) {
	if m == nil {
		m = make(map[string]any)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.m = m
}

// Flatten turns nested tables into dot-notation keys:
// {"a": {"b": 1}} becomes {"a.b": 1}.
func Flatten(nested map[string]any) map[string]any {
	out := make(map[string]any)
	flattenInto(out, nested, "")
	return out
}

func flattenInto(out, m map[string]any, prefix string) {
	for k, val := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if child, ok := val.(map[string]any); ok {
			flattenInto(out, child, key)
			continue
		}
		out[key] = val
	}
}

// Nest is the inverse of Flatten. Keys are placed in sorted order, so a
// leaf always precedes keys that extend it; an extension that would need
// the leaf to be a table is kept as a dotted key instead.
func Nest(flat map[string]any) map[string]any {
	keys := slices.Sorted(maps.Keys(flat))
	out := make(map[string]any, len(keys))
	for _, key := range keys {
		insert(out, strings.Split(key, "."), flat[key])
	}
	return out
}

func insert(table map[string]any, path []string, val any) {
	for i, part := range path[:len(path)-1] {
		next, ok := table[part]
		if !ok {
			next = make(map[string]any)
			table[part] = next
		}
		child, isTable := next.(map[string]any)
		if !isTable {
			table[strings.Join(path[i:], ".")] = val
			return
		}
		table = child
	}
	table[path[len(path)-1]] = val
}
