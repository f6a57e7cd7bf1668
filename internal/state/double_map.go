package state

import (
	"cmp"
	"encoding/json"
	"iter"
)

// DoubleMap is a storage map keyed by (K1, K2), iterable by K1 prefix.
type DoubleMap[K1 cmp.Ordered, K2 cmp.Ordered, V any] struct {
	outer *Map[K1, *Map[K2, V]]
}

// NewDoubleMap returns an empty double map.
func NewDoubleMap[K1 cmp.Ordered, K2 cmp.Ordered, V any]() *DoubleMap[K1, K2, V] {
	return &DoubleMap[K1, K2, V]{outer: NewMap[K1, *Map[K2, V]]()}
}

// Get returns the value stored under (k1, k2).
func (d *DoubleMap[K1, K2, V]) Get(k1 K1, k2 K2) (V, bool) {
	inner, ok := d.outer.Get(k1)
	if !ok {
		var zero V
		return zero, false
	}
	return inner.Get(k2)
}

// Contains reports whether (k1, k2) is present.
func (d *DoubleMap[K1, K2, V]) Contains(k1 K1, k2 K2) bool {
	_, ok := d.Get(k1, k2)
	return ok
}

// Insert stores v under (k1, k2).
func (d *DoubleMap[K1, K2, V]) Insert(k1 K1, k2 K2, v V) {
	inner, ok := d.outer.Get(k1)
	if !ok {
		inner = NewMap[K2, V]()
		d.outer.Insert(k1, inner)
	}
	inner.Insert(k2, v)
}

// Remove deletes (k1, k2). An emptied prefix is dropped entirely.
func (d *DoubleMap[K1, K2, V]) Remove(k1 K1, k2 K2) {
	inner, ok := d.outer.Get(k1)
	if !ok {
		return
	}
	inner.Remove(k2)
	if inner.Len() == 0 {
		d.outer.Remove(k1)
	}
}

// Mutate applies fn to the value under (k1, k2). It returns false when absent.
func (d *DoubleMap[K1, K2, V]) Mutate(k1 K1, k2 K2, fn func(*V)) bool {
	inner, ok := d.outer.Get(k1)
	if !ok {
		return false
	}
	return inner.Mutate(k2, fn)
}

// RemovePrefix deletes every entry under k1.
func (d *DoubleMap[K1, K2, V]) RemovePrefix(k1 K1) {
	d.outer.Remove(k1)
}

// CountPrefix returns the number of entries under k1.
func (d *DoubleMap[K1, K2, V]) CountPrefix(k1 K1) int {
	inner, ok := d.outer.Get(k1)
	if !ok {
		return 0
	}
	return inner.Len()
}

// Prefix iterates the entries under k1 in ascending K2 order.
func (d *DoubleMap[K1, K2, V]) Prefix(k1 K1) iter.Seq2[K2, V] {
	return func(yield func(K2, V) bool) {
		inner, ok := d.outer.Get(k1)
		if !ok {
			return
		}
		for k, v := range inner.All() {
			if !yield(k, v) {
				return
			}
		}
	}
}

// MarshalJSON encodes the double map as nested key/value arrays.
func (d *DoubleMap[K1, K2, V]) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.outer)
}
