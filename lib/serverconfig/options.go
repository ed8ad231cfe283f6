package serverconfig

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Options is a free-form option map from the configuration document. Values
// keep the types the document parser produced (string, bool, int64, ...).
// All typed lookups go through the methods below so every caller applies the
// same coercion rules: booleans and integers may also be written as strings.
type Options map[string]any

// Has reports whether key is present with a non-null value.
func (o Options) Has(key string) bool {
	v, ok := o[key]
	return ok && v != nil
}

// String returns a required string option.
func (o Options) String(key string) (string, error) {
	var s string
	if err := o.require(key, &s); err != nil {
		return "", err
	}
	return s, nil
}

// Bool returns a boolean option, or def if it is absent. "true", "false",
// "1", "0", "t" and "f" (any case) are accepted as strings.
func (o Options) Bool(key string, def bool) (bool, error) {
	if !o.Has(key) {
		return def, nil
	}
	var b bool
	if err := o.decode(key, &b); err != nil {
		return false, err
	}
	return b, nil
}

// Uint32 returns an unsigned 32-bit option, or def if it is absent.
func (o Options) Uint32(key string, def uint32) (uint32, error) {
	if !o.Has(key) {
		return def, nil
	}
	var n uint64
	if err := o.decode(key, &n); err != nil {
		return 0, err
	}
	if n > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %s: %d overflows uint32", ErrInvalidOption, key, n)
	}
	return uint32(n), nil
}

func (o Options) require(key string, out any) error {
	if !o.Has(key) {
		return fmt.Errorf("%w: %s", ErrMissingOption, key)
	}
	return o.decode(key, out)
}

func (o Options) decode(key string, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToBoolHookFunc(),
			stringToUintHookFunc(),
		),
		Result: out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(o[key]); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidOption, key, err)
	}
	return nil
}

// stringToBoolHookFunc converts boolean-like strings to bool.
func stringToBoolHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Kind, t reflect.Kind, data any) (any, error) {
		if f != reflect.String || t != reflect.Bool {
			return data, nil
		}

		str, ok := data.(string)
		if !ok {
			return data, fmt.Errorf("expected string, got %T", data)
		}

		switch strings.ToLower(strings.TrimSpace(str)) {
		case "1", "t", "true":
			return true, nil
		case "0", "f", "false":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value: %q", str)
		}
	}
}

// stringToUintHookFunc converts decimal strings to unsigned integers.
func stringToUintHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Kind, t reflect.Kind, data any) (any, error) {
		if f != reflect.String {
			return data, nil
		}
		switch t {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		default:
			return data, nil
		}

		str, ok := data.(string)
		if !ok {
			return data, fmt.Errorf("expected string, got %T", data)
		}

		value, err := strconv.ParseUint(strings.TrimSpace(str), 10, 64)
		if err != nil {
			return data, err
		}
		return value, nil
	}
}
