package particle

import (
	"fmt"
	"math"

	"github.com/decker502/particles/pkg/utils"
)

// DecodeParticleConfig builds a ParticleConfig from a configuration mapping.
//
// Recognized keys are x, y, vx, vy, life (alias lifetime), size, color
// (alias tint), alpha, count, rotation, spin, shouldShrink, shouldDisappear,
// applyForces, drag, texture and check. Every other key is kept in Extra.
func DecodeParticleConfig(m Config) (ParticleConfig, error) {
	var cfg ParticleConfig

	specKeys := map[string]*NumericSpec{
		"x": &cfg.X, "y": &cfg.Y,
		"vx": &cfg.VX, "vy": &cfg.VY,
		"life": &cfg.Life, "lifetime": &cfg.Life,
		"size":  &cfg.Size,
		"color": &cfg.Color, "tint": &cfg.Color,
		"alpha":    &cfg.Alpha,
		"count":    &cfg.Count,
		"rotation": &cfg.Rotation,
		"spin":     &cfg.Spin,
	}
	boolKeys := map[string]**bool{
		"shouldShrink":    &cfg.ShouldShrink,
		"shouldDisappear": &cfg.ShouldDisappear,
		"applyForces":     &cfg.ApplyForces,
	}

	for key, raw := range m {
		if dst, ok := specKeys[key]; ok {
			spec, err := SpecFromValue(raw)
			if err != nil {
				return ParticleConfig{}, fmt.Errorf("particle setting %q: %w", key, err)
			}
			// "color" 优先于别名 "tint"，"life" 优先于 "lifetime"
			if dst.IsSet() && (key == "tint" || key == "lifetime") {
				continue
			}
			*dst = spec
			continue
		}
		if dst, ok := boolKeys[key]; ok {
			b, isBool := raw.(bool)
			if !isBool {
				return ParticleConfig{}, fmt.Errorf("%w: %q must be a bool, got %T", ErrInvalidConfig, key, raw)
			}
			*dst = Bool(b)
			continue
		}

		switch key {
		case "drag":
			f, ok := toFloat(raw)
			if !ok || !isFinite(f) {
				return ParticleConfig{}, fmt.Errorf("%w: drag must be a finite number, got %v", ErrInvalidConfig, raw)
			}
			cfg.Drag = Float(f)
		case "texture":
			s, ok := raw.(string)
			if !ok {
				return ParticleConfig{}, fmt.Errorf("%w: texture must be a string, got %T", ErrInvalidConfig, raw)
			}
			cfg.Texture = s
		case "check":
			switch fn := raw.(type) {
			case CheckFunc:
				cfg.Check = fn
			case func(*Particle) bool:
				cfg.Check = fn
			default:
				return ParticleConfig{}, fmt.Errorf("%w: check must be a predicate, got %T", ErrInvalidConfig, raw)
			}
		default:
			if cfg.Extra == nil {
				cfg.Extra = Config{}
			}
			cfg.Extra[key] = deepClone(raw)
		}
	}
	return cfg, nil
}

// DecodeEmitterConfig builds an EmitterConfig from a configuration mapping.
// A missing type means "point" and a missing particlesPerSecond means
// DefaultParticlesPerSecond. The result is validated.
func DecodeEmitterConfig(m Config) (EmitterConfig, error) {
	cfg := EmitterConfig{ParticlesPerSecond: DefaultParticlesPerSecond}

	if name, ok := m["name"].(string); ok {
		cfg.Name = name
	}

	if raw, ok := m["type"]; ok {
		s, isString := raw.(string)
		if !isString {
			return EmitterConfig{}, fmt.Errorf("%w: type must be a string, got %T", ErrUnknownPointKind, raw)
		}
		kind, err := ParsePointKind(s)
		if err != nil {
			return EmitterConfig{}, err
		}
		cfg.Type = kind
	}

	var err error
	if cfg.Size, err = vectorField(m, "size"); err != nil {
		return EmitterConfig{}, err
	}
	if cfg.Center, err = vectorField(m, "center"); err != nil {
		return EmitterConfig{}, err
	}
	for _, lf := range []struct {
		key string
		dst **utils.Vector2
	}{{"lineStart", &cfg.LineStart}, {"lineEnd", &cfg.LineEnd}} {
		if _, ok := m[lf.key]; !ok {
			continue
		}
		v, err := vectorField(m, lf.key)
		if err != nil {
			return EmitterConfig{}, err
		}
		*lf.dst = &v
	}

	if raw, ok := m["particlesPerSecond"]; ok {
		f, isNum := toFloat(raw)
		if !isNum {
			return EmitterConfig{}, fmt.Errorf("%w: got %v", ErrInvalidRate, raw)
		}
		cfg.ParticlesPerSecond = f
	}
	if raw, ok := m["systemDuration"]; ok {
		f, isNum := toFloat(raw)
		if !isNum {
			return EmitterConfig{}, fmt.Errorf("%w: systemDuration must be a number", ErrInvalidConfig)
		}
		cfg.SystemDuration = f
	}
	if raw, ok := m["maxLaunched"]; ok {
		f, isNum := toFloat(raw)
		if !isNum || f != math.Trunc(f) {
			return EmitterConfig{}, fmt.Errorf("%w: maxLaunched must be an integer", ErrInvalidConfig)
		}
		cfg.MaxLaunched = int(f)
	}

	if raw, ok := m["particleSettings"]; ok {
		settings, isMap := asMap(raw)
		if !isMap {
			return EmitterConfig{}, fmt.Errorf("%w: particleSettings must be a mapping", ErrInvalidConfig)
		}
		ps, err := DecodeParticleConfig(settings)
		if err != nil {
			return EmitterConfig{}, err
		}
		cfg.ParticleSettings = ps
	}

	if err := cfg.Validate(); err != nil {
		return EmitterConfig{}, err
	}
	return cfg, nil
}

// vectorField reads {x, y} or [x, y] under key; a missing key is the zero
// vector.
func vectorField(m Config, key string) (utils.Vector2, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return utils.Vector2{}, nil
	}
	switch v := raw.(type) {
	case utils.Vector2:
		return v, nil
	case []any:
		if len(v) == 2 {
			x, okX := toFloat(v[0])
			y, okY := toFloat(v[1])
			if okX && okY {
				return utils.Vec2(x, y), nil
			}
		}
	default:
		if mm, isMap := asMap(raw); isMap {
			x, okX := toFloat(mm["x"])
			y, okY := toFloat(mm["y"])
			if okX && okY {
				return utils.Vec2(x, y), nil
			}
		}
	}
	return utils.Vector2{}, fmt.Errorf("%w: %s must be {x, y} or [x, y], got %v", ErrInvalidConfig, key, raw)
}
