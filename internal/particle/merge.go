package particle

// Merge deep-merges configuration mappings. The first argument has the
// highest priority: for a key present on both sides, nested mappings are
// merged recursively and any other value from the earlier argument wins.
// Nil arguments are skipped.
//
// The result never aliases a nested mapping of any input, so callers may
// mutate it freely even when the same template is merged many times a
// second.
func Merge(configs ...Config) Config {
	var result Config
	for _, c := range configs {
		result = mergeTwo(result, c)
	}
	if result == nil {
		return Config{}
	}
	return result
}

// mergeTwo merges a and b with priority to a.
func mergeTwo(a, b Config) Config {
	if b == nil {
		return deepCloneMap(a)
	}
	if a == nil {
		return deepCloneMap(b)
	}

	result := deepCloneMap(a)
	for k, bv := range b {
		av, exists := a[k]
		if !exists || av == nil {
			result[k] = deepClone(bv)
			continue
		}
		am, aIsMap := asMap(av)
		bm, bIsMap := asMap(bv)
		if aIsMap && bIsMap {
			result[k] = mergeTwo(am, bm)
		}
	}
	return result
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	if c == nil {
		return nil
	}
	return deepCloneMap(c)
}

func deepCloneMap(m Config) Config {
	if m == nil {
		return nil
	}
	out := make(Config, len(m))
	for k, v := range m {
		out[k] = deepClone(v)
	}
	return out
}

// deepClone copies mappings and slices; scalars and functions are shared.
func deepClone(v any) any {
	if m, ok := asMap(v); ok {
		return deepCloneMap(m)
	}
	if s, ok := v.([]any); ok {
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = deepClone(e)
		}
		return out
	}
	return v
}

func asMap(v any) (Config, bool) {
	switch m := v.(type) {
	case Config:
		return m, m != nil
	case map[string]any:
		return Config(m), m != nil
	}
	return nil, false
}

// Merge returns c with every unset field filled from defaults. Set fields of
// c win; Extra mappings are deep-merged with Merge. The Check predicate and
// generator functions are shared, not copied.
func (c ParticleConfig) Merge(defaults ParticleConfig) ParticleConfig {
	out := c

	specs := []struct {
		dst *NumericSpec
		src NumericSpec
	}{
		{&out.X, defaults.X}, {&out.Y, defaults.Y},
		{&out.VX, defaults.VX}, {&out.VY, defaults.VY},
		{&out.Life, defaults.Life}, {&out.Size, defaults.Size},
		{&out.Color, defaults.Color}, {&out.Alpha, defaults.Alpha},
		{&out.Rotation, defaults.Rotation}, {&out.Spin, defaults.Spin},
		{&out.Count, defaults.Count},
	}
	for _, s := range specs {
		if !s.dst.IsSet() {
			*s.dst = s.src
		}
	}

	out.ShouldShrink = firstBool(c.ShouldShrink, defaults.ShouldShrink)
	out.ShouldDisappear = firstBool(c.ShouldDisappear, defaults.ShouldDisappear)
	out.ApplyForces = firstBool(c.ApplyForces, defaults.ApplyForces)
	if c.Drag != nil {
		out.Drag = Float(*c.Drag)
	} else if defaults.Drag != nil {
		out.Drag = Float(*defaults.Drag)
	}
	if out.Check == nil {
		out.Check = defaults.Check
	}
	if out.Texture == "" {
		out.Texture = defaults.Texture
	}
	if c.Extra != nil || defaults.Extra != nil {
		out.Extra = Merge(c.Extra, defaults.Extra)
	}
	return out
}

func firstBool(values ...*bool) *bool {
	for _, v := range values {
		if v != nil {
			return Bool(*v)
		}
	}
	return nil
}
