package particle

import (
	"fmt"

	"github.com/decker502/particles/pkg/utils"
)

// Particle is a single simulated entity.
//
// A particle is ALIVE from construction until Kill is called, either by its
// own Advance (lifetime expiry or Check) or by the owner. DEAD is terminal.
type Particle struct {
	Position utils.Vector2
	Velocity utils.Vector2 // pixels per second

	Age      float64 // seconds since spawn
	Lifetime float64 // seconds; 0 means immortal

	BaseSize float64 // resolved size
	Scale    float64 // current render scale

	Rotation float64 // degrees
	Spin     float64 // degrees per second

	Tint  uint32 // packed 0xRRGGBB
	Alpha float64

	ShouldShrink    bool
	ShouldDisappear bool
	ApplyForces     bool
	Drag            float64 // per-tick velocity multiplier; 1 means no drag, 0 stops the particle

	Check   CheckFunc
	Texture string
	Extra   Config

	alive bool
}

// NewParticle builds a particle from cfg, resolving every NumericSpec once.
//
// Fields are resolved in the order size, life, vx, vy, x, y, color, alpha,
// rotation, spin; a generator sees the fields resolved before it on the
// *Particle passed as its context.
func NewParticle(cfg ParticleConfig, r Resolver) (*Particle, error) {
	p := &Particle{
		alive:       true,
		ApplyForces: true,
		Tint:        DefaultTint,
		Drag:        1,
	}
	if cfg.ShouldShrink != nil {
		p.ShouldShrink = *cfg.ShouldShrink
	}
	if cfg.ShouldDisappear != nil {
		p.ShouldDisappear = *cfg.ShouldDisappear
	}
	if cfg.ApplyForces != nil {
		p.ApplyForces = *cfg.ApplyForces
	}
	if cfg.Drag != nil {
		if !isFinite(*cfg.Drag) {
			return nil, fmt.Errorf("%w: drag %v is not finite", ErrInvalidConfig, *cfg.Drag)
		}
		p.Drag = *cfg.Drag
	}
	p.Check = cfg.Check
	p.Texture = cfg.Texture
	p.Extra = cfg.Extra.Clone()

	fields := []struct {
		name string
		spec NumericSpec
		def  float64
		set  func(v float64)

		// valid 为空表示任意有限值
		valid func(v float64) bool
	}{
		{"size", cfg.Size, 1, func(v float64) { p.BaseSize, p.Scale = v, v }, nil},
		{"life", cfg.Life, 0, func(v float64) { p.Lifetime = v }, func(v float64) bool { return v >= 0 }},
		{"vx", cfg.VX, 0, func(v float64) { p.Velocity.X = v }, nil},
		{"vy", cfg.VY, 0, func(v float64) { p.Velocity.Y = v }, nil},
		{"x", cfg.X, 0, func(v float64) { p.Position.X = v }, nil},
		{"y", cfg.Y, 0, func(v float64) { p.Position.Y = v }, nil},
		{"color", cfg.Color, DefaultTint, func(v float64) { p.Tint = uint32(v) }, validTint},
		{"alpha", cfg.Alpha, 1, func(v float64) { p.Alpha = v }, nil},
		{"rotation", cfg.Rotation, 0, func(v float64) { p.Rotation = v }, nil},
		{"spin", cfg.Spin, 0, func(v float64) { p.Spin = v }, nil},
	}
	for _, f := range fields {
		v, err := r.Resolve(f.spec, p, f.def)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", f.name, err)
		}
		if f.valid != nil && !f.valid(v) {
			return nil, fmt.Errorf("%w: %s %v out of range", ErrInvalidConfig, f.name, v)
		}
		f.set(v)
	}
	return p, nil
}

// validTint accepts packed 0xRRGGBB values only.
func validTint(v float64) bool {
	return v >= 0 && v <= MaxTint
}

// Alive reports whether the particle is still simulated.
func (p *Particle) Alive() bool {
	return p.alive
}

// Kill moves the particle to DEAD and collapses its alpha to 0 in one step.
func (p *Particle) Kill() {
	p.alive = false
	p.Alpha = 0
}

// Immortal reports whether the particle never expires by age.
func (p *Particle) Immortal() bool {
	return p.Lifetime <= 0
}

// Advance integrates the particle by dt seconds.
//
// Age is incremented first, then the death checks run in order: lifetime
// expiry, then Check. If either kills the particle, nothing else changes this
// tick. Otherwise the decay flags, spin, drag and position are updated.
// Shrink and disappear are no-ops on immortal particles.
func (p *Particle) Advance(dt float64) {
	if !p.alive {
		return
	}

	p.Age += dt
	if !p.Immortal() && p.Age > p.Lifetime {
		p.Kill()
		return
	}
	if p.Check != nil && p.Check(p) {
		p.Kill()
		return
	}

	if !p.Immortal() {
		remaining := 1 - p.Age/p.Lifetime
		if p.ShouldShrink {
			p.Scale = p.BaseSize * remaining
		}
		if p.ShouldDisappear {
			p.Alpha = remaining
		}
	}

	p.Rotation += p.Spin * dt

	if p.Drag != 1 {
		p.Velocity = p.Velocity.Scale(p.Drag)
	}
	p.Position = p.Position.Add(p.Velocity.Scale(dt))
}

// ApplyForce adds force(p) to the velocity when the particle accepts forces
// and the force returns a delta.
func (p *Particle) ApplyForce(force ForceFunc) {
	if !p.ApplyForces || force == nil {
		return
	}
	if delta, ok := force(p); ok {
		p.Velocity = p.Velocity.Add(delta)
	}
}
