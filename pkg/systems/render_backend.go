package systems

import "github.com/decker502/particles/internal/particle"

// Drawable is an opaque handle created by a RenderBackend.
type Drawable = any

// RenderBackend is everything the simulation needs from a renderer: a
// drawable bound to a particle's visual state, and add/remove against the
// render list.
//
// The drawable is expected to read the particle it was created for each
// frame; the system never pushes state into it.
type RenderBackend interface {
	NewDrawable(p *particle.Particle) Drawable
	AddDrawable(d Drawable)
	RemoveDrawable(d Drawable)
}
