package particle

import (
	"fmt"
	"math"
	"math/rand"
)

// SpecKind tags the variant held by a NumericSpec.
type SpecKind uint8

const (
	// SpecUnset resolves to the caller-supplied default.
	SpecUnset SpecKind = iota
	// SpecLiteral resolves to a fixed value.
	SpecLiteral
	// SpecRange resolves to a uniform draw in [Min, Max).
	SpecRange
	// SpecGenerator resolves by calling a function with the requesting entity.
	SpecGenerator
)

// Context is the entity a value is resolved for: the *Particle under
// construction, or the particle system when resolving a spawn count.
type Context any

// Generator computes a value from the requesting entity.
type Generator func(ctx Context) float64

// NumericSpec is a number-like configuration value. The zero value is unset.
type NumericSpec struct {
	Kind     SpecKind
	Value    float64 // SpecLiteral
	Min, Max float64 // SpecRange
	Fn       Generator
}

// Literal returns a spec that always resolves to v.
func Literal(v float64) NumericSpec {
	return NumericSpec{Kind: SpecLiteral, Value: v}
}

// Range returns a spec that resolves to a uniform draw in [min, max).
func Range(min, max float64) NumericSpec {
	return NumericSpec{Kind: SpecRange, Min: min, Max: max}
}

// Func returns a spec that resolves by calling fn.
func Func(fn Generator) NumericSpec {
	return NumericSpec{Kind: SpecGenerator, Fn: fn}
}

// IsSet reports whether s holds a value.
func (s NumericSpec) IsSet() bool {
	return s.Kind != SpecUnset
}

// Validate checks that s can be resolved.
func (s NumericSpec) Validate() error {
	switch s.Kind {
	case SpecUnset:
		return nil
	case SpecLiteral:
		if !isFinite(s.Value) {
			return fmt.Errorf("%w: literal %v is not finite", ErrMalformedSpec, s.Value)
		}
	case SpecRange:
		if !isFinite(s.Min) || !isFinite(s.Max) {
			return fmt.Errorf("%w: range [%v %v] is not finite", ErrMalformedSpec, s.Min, s.Max)
		}
		if s.Min > s.Max {
			return fmt.Errorf("%w: range min %v > max %v", ErrMalformedSpec, s.Min, s.Max)
		}
	case SpecGenerator:
		if s.Fn == nil {
			return fmt.Errorf("%w: generator is nil", ErrMalformedSpec)
		}
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrMalformedSpec, s.Kind)
	}
	return nil
}

// String 便于日志输出
func (s NumericSpec) String() string {
	switch s.Kind {
	case SpecUnset:
		return "unset"
	case SpecLiteral:
		return fmt.Sprintf("%g", s.Value)
	case SpecRange:
		return fmt.Sprintf("[%g %g]", s.Min, s.Max)
	case SpecGenerator:
		return "func"
	}
	return fmt.Sprintf("NumericSpec(%d)", s.Kind)
}

// Resolver turns NumericSpecs into numbers.
//
// Rand supplies uniform draws in [0, 1) for ranges; when nil the global
// math/rand source is used.
type Resolver struct {
	Rand func() float64
}

// Float64 returns a uniform draw in [0, 1) from the resolver's source.
func (r Resolver) Float64() float64 {
	if r.Rand != nil {
		return r.Rand()
	}
	return rand.Float64()
}

// Resolve returns the concrete value of spec for ctx, or def when spec is
// unset. Malformed specs return an error wrapping ErrMalformedSpec; a
// generator returning NaN or ±Inf is also rejected so that bad values fail
// at construction instead of propagating through the simulation.
func (r Resolver) Resolve(spec NumericSpec, ctx Context, def float64) (float64, error) {
	if err := spec.Validate(); err != nil {
		return 0, err
	}

	switch spec.Kind {
	case SpecUnset:
		return def, nil
	case SpecLiteral:
		return spec.Value, nil
	case SpecRange:
		return spec.Min + r.Float64()*(spec.Max-spec.Min), nil
	case SpecGenerator:
		v := spec.Fn(ctx)
		if !isFinite(v) {
			return 0, fmt.Errorf("%w: generator returned %v", ErrMalformedSpec, v)
		}
		return v, nil
	}
	return 0, fmt.Errorf("%w: unknown kind %d", ErrMalformedSpec, spec.Kind)
}

// RandomInRange returns a uniform value in [min, max) using rnd, or min when
// the range is empty.
func RandomInRange(min, max float64, rnd func() float64) float64 {
	if min >= max {
		return min
	}
	if rnd == nil {
		rnd = rand.Float64
	}
	return min + rnd()*(max-min)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
