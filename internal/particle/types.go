// Package particle provides the particle simulation core: configuration
// types, value resolution, configuration merging, the Particle entity with
// its per-tick integration, emitter spawn geometry, and stock forces.
//
// Configuration can be built in Go directly or loaded from YAML effect files
// (see ParseEffect). Number-like fields use NumericSpec, which may be a
// literal, a random range, or a generator function.
package particle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/decker502/particles/pkg/utils"
)

// Configuration errors. Callers can test for them with errors.Is.
var (
	ErrMalformedSpec        = errors.New("malformed numeric spec")
	ErrUnknownPointKind     = errors.New("unknown emitter point kind")
	ErrMissingLineEndpoints = errors.New("line emitter requires lineStart and lineEnd")
	ErrInvalidRate          = errors.New("particlesPerSecond must be a positive finite number")
	ErrInvalidConfig        = errors.New("invalid particle config")
)

// DefaultTint is opaque white, used when a particle has no color.
const DefaultTint = 0xffffff

// MaxTint is the largest packed color value.
const MaxTint = 0xffffff

// DefaultParticlesPerSecond 发射速率缺省值（与原始实现一致）
const DefaultParticlesPerSecond = 100

// Config is a loosely typed configuration mapping, as decoded from YAML.
// Nested mappings are Config or map[string]any values.
type Config map[string]any

// PointKind selects the spawn geometry of an emitter.
type PointKind int

const (
	// PointKindPoint spawns every particle at the emitter center.
	PointKindPoint PointKind = iota
	// PointKindCircle spawns inside a disc of diameter Size.X around the center.
	PointKindCircle
	// PointKindBox spawns inside a Size.X by Size.Y box centered on the center.
	PointKindBox
	// PointKindLine spawns on the segment LineStart..LineEnd.
	PointKindLine
)

var pointKindNames = map[PointKind]string{
	PointKindPoint:  "point",
	PointKindCircle: "circle",
	PointKindBox:    "box",
	PointKindLine:   "line",
}

// String returns the configuration name of k.
func (k PointKind) String() string {
	if name, ok := pointKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("PointKind(%d)", int(k))
}

// ParsePointKind parses "point", "circle", "box" or "line" (case-insensitive).
// An empty string yields PointKindPoint.
func ParsePointKind(s string) (PointKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PointKindPoint, nil
	}
	for k, name := range pointKindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPointKind, s)
}

// UnmarshalText implements encoding.TextUnmarshaler (used by yaml.v3).
func (k *PointKind) UnmarshalText(text []byte) error {
	parsed, err := ParsePointKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (k PointKind) MarshalText() ([]byte, error) {
	if _, ok := pointKindNames[k]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPointKind, int(k))
	}
	return []byte(k.String()), nil
}

// CheckFunc is a custom removal predicate: returning true kills the particle.
type CheckFunc func(p *Particle) bool

// ParticleConfig describes how to build one particle.
//
// Every NumericSpec field is resolved exactly once, when the particle is
// constructed. Pointer fields distinguish "unset" from the zero value so that
// ParticleConfig.Merge can tell which side set a flag.
type ParticleConfig struct {
	X, Y   NumericSpec // 初始位置
	VX, VY NumericSpec // 初始速度（像素/秒）

	Life  NumericSpec // seconds; 0 or unset means immortal
	Size  NumericSpec // relative scale, default 1
	Color NumericSpec // packed 0xRRGGBB, default DefaultTint
	Alpha NumericSpec // default 1

	Rotation NumericSpec // initial rotation in degrees
	Spin     NumericSpec // degrees per second

	// Count is only read by ParticleSystem.Spawn; default 1.
	Count NumericSpec

	ShouldShrink    *bool
	ShouldDisappear *bool
	ApplyForces     *bool    // nil means true
	Drag            *float64 // per-tick velocity multiplier

	Check CheckFunc

	// Texture names the drawable resource used by the renderer.
	Texture string

	// Extra holds keys the simulation does not interpret (renderer hints
	// such as "glyph" or "blend").
	Extra Config
}

// EmitterConfig describes an emitter: where particles appear, how often, and
// the template they are built from.
type EmitterConfig struct {
	Name string

	Type      PointKind
	Size      utils.Vector2 // circle: Size.X is the diameter; box: width and height
	Center    utils.Vector2
	LineStart *utils.Vector2
	LineEnd   *utils.Vector2

	ParticlesPerSecond float64
	ParticleSettings   ParticleConfig

	// SystemDuration stops the emitter after this many seconds (0 = forever).
	SystemDuration float64
	// MaxLaunched caps the total number of particles this emitter spawns
	// (0 = unlimited).
	MaxLaunched int
}

// ForceConfig is the file form of a force field.
//
// Supported types:
//   - "acceleration": constant (x, y) velocity delta per tick
//   - "friction": velocity *= -strength per tick, added as delta
//   - "attractor": pulls toward (x, y) with the given strength
type ForceConfig struct {
	Type     string  `yaml:"type"`
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Strength float64 `yaml:"strength"`
}

// Bool returns a pointer to b, for the optional flags in ParticleConfig.
func Bool(b bool) *bool {
	return &b
}

// Float returns a pointer to f, for ParticleConfig.Drag.
func Float(f float64) *float64 {
	return &f
}
