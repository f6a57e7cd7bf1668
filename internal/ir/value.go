package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"
)

// IRValue is a sealed interface representing constrained value types.
// Only IRNull, IRString, IRInt, IRUint, IRBool, IRArray and IRObject
// implement it. There is no float type.
type IRValue interface {
	irValue()
}

// IRNull is an absent optional field.
type IRNull struct{}

func (IRNull) irValue() {}

// MarshalJSON implements json.Marshaler for IRNull.
func (IRNull) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// IRString is a string value.
type IRString string

func (IRString) irValue() {}

// IRInt is a negative or small signed integer.
type IRInt int64

func (IRInt) irValue() {}

// IRUint is a non-negative integer. Balances use the full uint64 range.
type IRUint uint64

func (IRUint) irValue() {}

// IRBool is a boolean value.
type IRBool bool

func (IRBool) irValue() {}

// IRArray is an ordered list of values.
type IRArray []IRValue

func (IRArray) irValue() {}

// IRObject maps string keys to values. Use SortedKeys for deterministic
// iteration.
type IRObject map[string]IRValue

func (IRObject) irValue() {}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's string ordering compares UTF-8 bytes, which differs for keys outside
// the BMP.
func (obj IRObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

func compareKeysRFC8785(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}

// FromJSON decodes JSON into an IRValue. Floats are rejected; null becomes
// IRNull.
func FromJSON(data []byte) (IRValue, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode value: trailing data")
	}
	return convert(raw)
}

// FromValue converts any JSON-marshalable Go value into an IRValue.
func FromValue(v any) (IRValue, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", v, err)
	}
	return FromJSON(data)
}

// ObjectFromValue is FromValue for values that encode as JSON objects.
func ObjectFromValue(v any) (IRObject, error) {
	val, err := FromValue(v)
	if err != nil {
		return nil, err
	}
	obj, ok := val.(IRObject)
	if !ok {
		return nil, fmt.Errorf("%T does not encode as an object", v)
	}
	return obj, nil
}

func convert(v any) (IRValue, error) {
	switch val := v.(type) {
	case nil:
		return IRNull{}, nil
	case bool:
		return IRBool(val), nil
	case string:
		return IRString(val), nil
	case json.Number:
		return convertNumber(val)
	case []any:
		arr := make(IRArray, len(val))
		for i, elem := range val {
			irElem, err := convert(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = irElem
		}
		return arr, nil
	case map[string]any:
		obj := make(IRObject, len(val))
		for k, elem := range val {
			irElem, err := convert(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = irElem
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

func convertNumber(n json.Number) (IRValue, error) {
	s := string(n)
	if strings.ContainsAny(s, ".eE") {
		return nil, fmt.Errorf("floats are forbidden: %s", s)
	}
	if strings.HasPrefix(s, "-") {
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("number out of int64 range: %s", s)
		}
		return IRInt(i), nil
	}
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("number out of uint64 range: %s", s)
	}
	return IRUint(u), nil
}
