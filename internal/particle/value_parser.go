package particle

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseValue parses the string form of a numeric value.
// Supports:
//   - Fixed value: "1500" → Literal(1500)
//   - Range: "[0.7 0.9]" → Range(0.7, 0.9)
//   - Single value in brackets: "[3]" → Literal(3)
//   - Empty string → unset
//
// Anything else is rejected with ErrMalformedSpec.
func ParseValue(s string) (NumericSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NumericSpec{}, nil
	}

	// Check for range format: "[min max]" or "[value]"
	if strings.HasPrefix(s, "[") {
		if !strings.HasSuffix(s, "]") {
			return NumericSpec{}, fmt.Errorf("%w: unterminated range %q", ErrMalformedSpec, s)
		}
		rangeStr := strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
		parts := strings.Fields(rangeStr)
		switch len(parts) {
		case 1:
			val, err := strconv.ParseFloat(parts[0], 64)
			if err != nil {
				return NumericSpec{}, fmt.Errorf("%w: %q: %v", ErrMalformedSpec, s, err)
			}
			return Literal(val), nil
		case 2:
			min, err1 := strconv.ParseFloat(parts[0], 64)
			max, err2 := strconv.ParseFloat(parts[1], 64)
			if err1 != nil || err2 != nil {
				return NumericSpec{}, fmt.Errorf("%w: %q is not a numeric range", ErrMalformedSpec, s)
			}
			spec := Range(min, max)
			return spec, spec.Validate()
		}
		return NumericSpec{}, fmt.Errorf("%w: range %q needs one or two values", ErrMalformedSpec, s)
	}

	// 十六进制颜色："0xff8800" / "#ff8800"
	if hex, ok := cutHexPrefix(s); ok {
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return NumericSpec{}, fmt.Errorf("%w: %q: %v", ErrMalformedSpec, s, err)
		}
		return Literal(float64(v)), nil
	}

	// Fixed value format
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return NumericSpec{}, fmt.Errorf("%w: %q", ErrMalformedSpec, s)
	}
	spec := Literal(value)
	return spec, spec.Validate()
}

// SpecFromValue converts a loosely typed configuration value into a
// NumericSpec. Accepted shapes:
//   - nil → unset
//   - any Go integer or float → Literal
//   - string → ParseValue
//   - mapping with numeric "min" and "max" → Range
//   - list [min, max] → Range, [v] → Literal
//   - NumericSpec → itself
//   - Generator or func(Context) float64 → generator
//
// Any other shape fails with ErrMalformedSpec.
func SpecFromValue(v any) (NumericSpec, error) {
	switch val := v.(type) {
	case nil:
		return NumericSpec{}, nil
	case NumericSpec:
		return val, val.Validate()
	case Generator:
		return Func(val), Func(val).Validate()
	case func(Context) float64:
		return Func(val), Func(val).Validate()
	case string:
		return ParseValue(val)
	case Config:
		return rangeFromMap(val)
	case map[string]any:
		return rangeFromMap(val)
	case []any:
		return rangeFromList(val)
	}

	if f, ok := toFloat(v); ok {
		spec := Literal(f)
		return spec, spec.Validate()
	}
	return NumericSpec{}, fmt.Errorf("%w: unsupported value %v (%T)", ErrMalformedSpec, v, v)
}

func rangeFromMap(m map[string]any) (NumericSpec, error) {
	minV, okMin := toFloat(m["min"])
	maxV, okMax := toFloat(m["max"])
	if !okMin || !okMax {
		return NumericSpec{}, fmt.Errorf("%w: range mapping needs numeric min and max, got %v", ErrMalformedSpec, m)
	}
	spec := Range(minV, maxV)
	return spec, spec.Validate()
}

func rangeFromList(list []any) (NumericSpec, error) {
	values := make([]float64, 0, len(list))
	for _, e := range list {
		f, ok := toFloat(e)
		if !ok {
			return NumericSpec{}, fmt.Errorf("%w: range list must hold numbers, got %v", ErrMalformedSpec, list)
		}
		values = append(values, f)
	}
	var spec NumericSpec
	switch len(values) {
	case 1:
		spec = Literal(values[0])
	case 2:
		spec = Range(values[0], values[1])
	default:
		return NumericSpec{}, fmt.Errorf("%w: range list needs one or two values, got %d", ErrMalformedSpec, len(values))
	}
	return spec, spec.Validate()
}

// toFloat converts the numeric types produced by yaml.v3 (and by hand-built
// configs) to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func cutHexPrefix(s string) (string, bool) {
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "0x"):
		return s[2:], true
	case strings.HasPrefix(lower, "#"):
		return s[1:], true
	}
	return "", false
}
