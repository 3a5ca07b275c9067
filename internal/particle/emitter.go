package particle

import (
	"fmt"
	"math"

	"github.com/decker502/particles/pkg/utils"
)

// Validate checks the emitter geometry and rate.
func (c *EmitterConfig) Validate() error {
	switch c.Type {
	case PointKindPoint, PointKindCircle, PointKindBox:
	case PointKindLine:
		if c.LineStart == nil || c.LineEnd == nil {
			return ErrMissingLineEndpoints
		}
		if !c.LineStart.IsFinite() || !c.LineEnd.IsFinite() {
			return fmt.Errorf("%w: line endpoints must be finite", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownPointKind, int(c.Type))
	}

	if !c.Center.IsFinite() || !c.Size.IsFinite() {
		return fmt.Errorf("%w: center and size must be finite", ErrInvalidConfig)
	}
	if c.ParticlesPerSecond <= 0 || !isFinite(c.ParticlesPerSecond) {
		return fmt.Errorf("%w: got %v", ErrInvalidRate, c.ParticlesPerSecond)
	}
	if c.SystemDuration < 0 || c.MaxLaunched < 0 {
		return fmt.Errorf("%w: systemDuration and maxLaunched must not be negative", ErrInvalidConfig)
	}
	return nil
}

// SpawnPosition returns a fresh spawn point for the emitter geometry. rnd
// supplies uniform draws in [0, 1).
//
// Circle radii are uniform in radius, not in area, so spawns are denser near
// the center.
func SpawnPosition(c *EmitterConfig, rnd func() float64) utils.Vector2 {
	switch c.Type {
	case PointKindCircle:
		angle := rnd() * 2 * math.Pi
		radius := rnd() * c.Size.X / 2
		return c.Center.Add(utils.Vec2(math.Cos(angle)*radius, math.Sin(angle)*radius))
	case PointKindBox:
		dx := (rnd() - 0.5) * c.Size.X
		dy := (rnd() - 0.5) * c.Size.Y
		return c.Center.Add(utils.Vec2(dx, dy))
	case PointKindLine:
		t := rnd()
		return c.LineStart.Lerp(*c.LineEnd, t)
	case PointKindPoint:
		return c.Center
	}
	// Validate rejects every other kind before an emitter is created.
	panic(fmt.Sprintf("particle: unhandled point kind %v", c.Type))
}
