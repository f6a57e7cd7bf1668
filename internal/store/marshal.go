package store

import (
	"fmt"

	"github.com/roach88/treasury/internal/ir"
)

// marshalValue converts an IRValue to canonical JSON TEXT for storage.
// A nil value is stored as {}.
func marshalValue(v ir.IRValue) (string, error) {
	if v == nil {
		return "{}", nil
	}
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// marshalObject converts an IRObject to canonical JSON TEXT for storage.
func marshalObject(obj ir.IRObject) (string, error) {
	if obj == nil {
		return "{}", nil
	}
	return marshalValue(obj)
}

// unmarshalValue parses canonical JSON TEXT. Integers decode through
// json.Number, so values above 2^53 keep their precision.
func unmarshalValue(data string) (ir.IRValue, error) {
	return ir.FromJSON([]byte(data))
}

// unmarshalObject parses canonical JSON TEXT that must hold an object.
func unmarshalObject(data string) (ir.IRObject, error) {
	if data == "" || data == "{}" {
		return ir.IRObject{}, nil
	}
	v, err := unmarshalValue(data)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(ir.IRObject)
	if !ok {
		return nil, fmt.Errorf("expected object, got %T", v)
	}
	return obj, nil
}
