package components

import "github.com/decker502/particles/internal/particle"

// ParticleComponent is the ECS entry for one live particle.
//
// The particle owns its own state and integration; the component only binds
// it to the drawable the render backend created for it (nil when the system
// runs headless).
type ParticleComponent struct {
	Particle *particle.Particle

	// Drawable 渲染后端返回的不透明句柄
	Drawable any

	// Dying is set when the particle died during a tick and waits to be
	// culled on the next one.
	Dying bool
}
