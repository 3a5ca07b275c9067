package components

import "github.com/decker502/particles/internal/particle"

// EmitterComponent represents a particle emitter that spawns particles at a
// fixed rate from its configured geometry.
//
// The ParticleSystem processes emitters each tick in creation order. This is
// a pure data component following ECS principles - it contains no methods.
type EmitterComponent struct {
	// Configuration (validated when the emitter was created)
	Config particle.EmitterConfig

	// Emitter state (发射器状态)
	Active bool    // false while stopped; a stopped emitter keeps its carry
	Age    float64 // seconds the emitter has been running

	// Carry is the unspawned time, in seconds, left over from earlier ticks.
	Carry float64

	// TotalLaunched counts spawn requests issued by this emitter.
	TotalLaunched int
}
