package state

import "encoding/json"

// Value is a single storage slot, such as a monotonically increasing counter.
type Value[T any] struct {
	v T
}

// NewValue returns a slot holding initial.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{v: initial}
}

func (s *Value[T]) Get() T  { return s.v }
func (s *Value[T]) Set(v T) { s.v = v }

// Mutate applies fn to the stored value.
func (s *Value[T]) Mutate(fn func(*T)) {
	fn(&s.v)
}

func (s *Value[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.v)
}
