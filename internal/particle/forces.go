package particle

import (
	"fmt"
	"strings"

	"github.com/decker502/particles/pkg/utils"
)

// ForceFunc maps a particle to a velocity delta. Returning false means the
// force has no effect on this particle this tick.
//
// Deltas are applied once per tick, after the particle has been integrated,
// so a force is first visible in the position on the following tick.
type ForceFunc func(p *Particle) (utils.Vector2, bool)

// Acceleration returns a force that adds the same delta to every particle.
func Acceleration(delta utils.Vector2) ForceFunc {
	return func(*Particle) (utils.Vector2, bool) {
		return delta, true
	}
}

// Friction returns a force that removes coefficient * velocity each tick.
func Friction(coefficient float64) ForceFunc {
	return func(p *Particle) (utils.Vector2, bool) {
		return p.Velocity.Scale(-coefficient), true
	}
}

// Attractor returns a force pulling particles toward point with constant
// strength. Particles exactly on the point are left alone.
func Attractor(point utils.Vector2, strength float64) ForceFunc {
	return func(p *Particle) (utils.Vector2, bool) {
		dir := point.Sub(p.Position)
		if dir.Len() == 0 {
			return utils.Vector2{}, false
		}
		return dir.Normalize().Scale(strength), true
	}
}

// BuildForce turns a ForceConfig into a ForceFunc.
func BuildForce(cfg ForceConfig) (ForceFunc, error) {
	switch strings.ToLower(cfg.Type) {
	case "acceleration", "gravity":
		return Acceleration(utils.Vec2(cfg.X, cfg.Y)), nil
	case "friction":
		return Friction(cfg.Strength), nil
	case "attractor":
		return Attractor(utils.Vec2(cfg.X, cfg.Y), cfg.Strength), nil
	}
	return nil, fmt.Errorf("%w: unknown force type %q", ErrInvalidConfig, cfg.Type)
}
