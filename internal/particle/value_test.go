package particle

import (
	"errors"
	"math"
	"testing"
)

// seq 返回依次产出给定值的随机源，用完后重复最后一个
func seq(values ...float64) func() float64 {
	i := 0
	return func() float64 {
		v := values[i]
		if i < len(values)-1 {
			i++
		}
		return v
	}
}

func TestResolver_Resolve(t *testing.T) {
	r := Resolver{Rand: seq(0.25)}

	tests := []struct {
		name string
		spec NumericSpec
		def  float64
		want float64
	}{
		{"unset uses default", NumericSpec{}, 9, 9},
		{"literal", Literal(3), 9, 3},
		{"range", Range(10, 20), 0, 12.5},
		{"degenerate range", Range(4, 4), 0, 4},
		{"generator", Func(func(Context) float64 { return -1 }), 0, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.spec, nil, tt.def)
			if err != nil {
				t.Fatalf("Resolve error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%v) = %v, want %v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestResolver_RangeBounds(t *testing.T) {
	r := Resolver{}
	for i := 0; i < 1000; i++ {
		v, err := r.Resolve(Range(-3, 5), nil, 0)
		if err != nil {
			t.Fatalf("Resolve error: %v", err)
		}
		if v < -3 || v >= 5 {
			t.Fatalf("draw %d = %v, outside [-3, 5)", i, v)
		}
	}
}

func TestResolver_GeneratorReceivesContext(t *testing.T) {
	type owner struct{ name string }
	want := &owner{"system"}
	var got Context

	spec := Func(func(ctx Context) float64 {
		got = ctx
		return 1
	})
	if _, err := (Resolver{}).Resolve(spec, want, 0); err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if got != want {
		t.Errorf("generator ctx = %v, want %v", got, want)
	}
}

func TestResolver_Errors(t *testing.T) {
	tests := []struct {
		name string
		spec NumericSpec
	}{
		{"inverted range", Range(2, 1)},
		{"nan literal", Literal(math.NaN())},
		{"inf range", Range(0, math.Inf(1))},
		{"nil generator", NumericSpec{Kind: SpecGenerator}},
		{"unknown kind", NumericSpec{Kind: 99}},
		{"generator returns nan", Func(func(Context) float64 { return math.NaN() })},
		{"generator returns inf", Func(func(Context) float64 { return math.Inf(-1) })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (Resolver{}).Resolve(tt.spec, nil, 0)
			if !errors.Is(err, ErrMalformedSpec) {
				t.Errorf("Resolve(%v) error = %v, want ErrMalformedSpec", tt.spec, err)
			}
		})
	}
}

func TestRandomInRange(t *testing.T) {
	if got := RandomInRange(5, 5, seq(0.9)); got != 5 {
		t.Errorf("empty range = %v, want 5", got)
	}
	if got := RandomInRange(0, 10, seq(0.5)); got != 5 {
		t.Errorf("midpoint = %v, want 5", got)
	}
	if got := RandomInRange(8, 2, seq(0.5)); got != 8 {
		t.Errorf("inverted range = %v, want min", got)
	}
}

func TestNumericSpec_String(t *testing.T) {
	if s := Range(1, 2).String(); s != "[1 2]" {
		t.Errorf("Range.String() = %q", s)
	}
	if s := Literal(0.5).String(); s != "0.5" {
		t.Errorf("Literal.String() = %q", s)
	}
	if s := (NumericSpec{}).String(); s != "unset" {
		t.Errorf("unset.String() = %q", s)
	}
}
