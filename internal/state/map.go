package state

import (
	"cmp"
	"encoding/json"
	"iter"
	"maps"
	"slices"
)

// Map is an id-keyed storage map.
type Map[K cmp.Ordered, V any] struct {
	entries map[K]V
}

// NewMap returns an empty map.
func NewMap[K cmp.Ordered, V any]() *Map[K, V] {
	return &Map[K, V]{entries: make(map[K]V)}
}

// Get returns the value stored under k.
func (m *Map[K, V]) Get(k K) (V, bool) {
	v, ok := m.entries[k]
	return v, ok
}

// Contains reports whether k is present.
func (m *Map[K, V]) Contains(k K) bool {
	_, ok := m.entries[k]
	return ok
}

// Insert stores v under k, replacing any previous value.
func (m *Map[K, V]) Insert(k K, v V) {
	m.entries[k] = v
}

// Remove deletes k. Removing an absent key is a no-op.
func (m *Map[K, V]) Remove(k K) {
	delete(m.entries, k)
}

// Mutate applies fn to the value under k and writes it back. It returns
// false, without calling fn, when k is absent.
func (m *Map[K, V]) Mutate(k K, fn func(*V)) bool {
	v, ok := m.entries[k]
	if !ok {
		return false
	}
	fn(&v)
	m.entries[k] = v
	return true
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	return len(m.entries)
}

// Keys returns the keys in ascending order.
func (m *Map[K, V]) Keys() []K {
	return slices.Sorted(maps.Keys(m.entries))
}

// All iterates entries in ascending key order. The map must not be
// modified during iteration.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, k := range m.Keys() {
			if !yield(k, m.entries[k]) {
				return
			}
		}
	}
}

type entry[K any, V any] struct {
	Key   K `json:"key"`
	Value V `json:"value"`
}

// MarshalJSON encodes the map as an array of key/value pairs in key order.
func (m *Map[K, V]) MarshalJSON() ([]byte, error) {
	out := make([]entry[K, V], 0, len(m.entries))
	for k, v := range m.All() {
		out = append(out, entry[K, V]{Key: k, Value: v})
	}
	return json.Marshal(out)
}
