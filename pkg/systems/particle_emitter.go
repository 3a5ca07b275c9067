package systems

import (
	"fmt"
	"log"
	"math"

	"github.com/decker502/particles/internal/particle"
	"github.com/decker502/particles/pkg/components"
	"github.com/decker502/particles/pkg/ecs"
	"github.com/decker502/particles/pkg/utils"
)

// SpawnRequest is one emitter spawn: where the particle appears and the
// template it is built from. The template is never modified.
type SpawnRequest struct {
	Position utils.Vector2
	Template *particle.ParticleConfig
}

// Config returns the particle configuration for this spawn: a copy of the
// template with X and Y fixed to Position and Count fixed to 1, since every
// request is exactly one particle.
func (r SpawnRequest) Config() particle.ParticleConfig {
	cfg := *r.Template
	cfg.X = particle.Literal(r.Position.X)
	cfg.Y = particle.Literal(r.Position.Y)
	cfg.Count = particle.Literal(1)
	return cfg
}

// EmitterHandle controls an emitter created by CreateEmitter.
type EmitterHandle struct {
	ps *ParticleSystem
	id ecs.EntityID
}

// CreateEmitter validates cfg and adds an active emitter. Emitters advance
// in creation order.
func (ps *ParticleSystem) CreateEmitter(cfg particle.EmitterConfig) (*EmitterHandle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create emitter %q: %w", cfg.Name, err)
	}

	id := ps.EntityManager.CreateEntity()
	ps.EntityManager.AddComponent(id, &components.EmitterComponent{
		Config: cfg,
		Active: true,
	})

	if ps.Verbose {
		log.Printf("[ParticleSystem] created emitter %q (id=%d, type=%s, rate=%.1f/s)",
			cfg.Name, id, cfg.Type, cfg.ParticlesPerSecond)
	}
	return &EmitterHandle{ps: ps, id: id}, nil
}

// updateEmitters advances every emitter in creation order.
func (ps *ParticleSystem) updateEmitters(dt float64) error {
	emitterEntities := ecs.GetEntitiesWith1[*components.EmitterComponent](ps.EntityManager)

	for _, id := range emitterEntities {
		emitter, ok := ecs.GetComponent[*components.EmitterComponent](ps.EntityManager, id)
		if !ok || ps.EntityManager.IsMarked(id) {
			continue
		}
		if err := ps.advanceEmitter(emitter, dt); err != nil {
			return fmt.Errorf("emitter %q: %w", emitter.Config.Name, err)
		}

		// 发射器完成后自动清理；已生成的粒子不受影响
		if emitterFinished(emitter) {
			if ps.Verbose {
				log.Printf("[ParticleSystem] emitter %q finished after %.2fs, %d launched",
					emitter.Config.Name, emitter.Age, emitter.TotalLaunched)
			}
			ps.EntityManager.DestroyEntity(id)
		}
	}
	return nil
}

// advanceEmitter runs the fractional spawn accumulator for one tick.
//
// carry += dt; n = floor(rate * carry); carry -= n / rate. The leftover is
// kept, not reset, so the long-run rate stays exact at any frame rate.
func (ps *ParticleSystem) advanceEmitter(e *components.EmitterComponent, dt float64) error {
	if !e.Active {
		return nil
	}

	cfg := &e.Config
	e.Age += dt
	if cfg.SystemDuration > 0 && e.Age >= cfg.SystemDuration {
		return nil
	}

	e.Carry += dt
	n := int(math.Floor(cfg.ParticlesPerSecond * e.Carry))
	if n == 0 {
		return nil
	}
	e.Carry -= float64(n) / cfg.ParticlesPerSecond

	if cfg.MaxLaunched > 0 {
		n = min(n, cfg.MaxLaunched-e.TotalLaunched)
	}

	rnd := ps.resolver().Float64
	for i := 0; i < n; i++ {
		req := SpawnRequest{
			Position: particle.SpawnPosition(cfg, rnd),
			Template: &cfg.ParticleSettings,
		}
		if err := ps.spawnOne(req.Config().Merge(ps.Defaults)); err != nil {
			return err
		}
		e.TotalLaunched++
	}
	return nil
}

func emitterFinished(e *components.EmitterComponent) bool {
	if e.Config.SystemDuration > 0 && e.Age >= e.Config.SystemDuration {
		return true
	}
	return e.Config.MaxLaunched > 0 && e.TotalLaunched >= e.Config.MaxLaunched
}

func (h *EmitterHandle) component() (*components.EmitterComponent, bool) {
	if h.ps.EntityManager.IsMarked(h.id) {
		return nil, false
	}
	return ecs.GetComponent[*components.EmitterComponent](h.ps.EntityManager, h.id)
}

// Stop pauses spawning. The carry is kept, so Start resumes at the same
// phase.
func (h *EmitterHandle) Stop() {
	if e, ok := h.component(); ok {
		e.Active = false
	}
}

// Start resumes a stopped emitter.
func (h *EmitterHandle) Start() {
	if e, ok := h.component(); ok {
		e.Active = true
	}
}

// Remove detaches the emitter. Particles it already spawned live on.
func (h *EmitterHandle) Remove() {
	if _, ok := h.component(); ok {
		h.ps.EntityManager.DestroyEntity(h.id)
	}
}

// Active reports whether the emitter exists and is spawning.
func (h *EmitterHandle) Active() bool {
	e, ok := h.component()
	return ok && e.Active
}

// Removed reports whether the emitter was removed or has finished.
func (h *EmitterHandle) Removed() bool {
	_, ok := h.component()
	return !ok
}

// Launched returns the number of spawn requests the emitter has issued.
func (h *EmitterHandle) Launched() int {
	if e, ok := h.component(); ok {
		return e.TotalLaunched
	}
	return 0
}

// Config returns a copy of the emitter configuration.
func (h *EmitterHandle) Config() particle.EmitterConfig {
	if e, ok := h.component(); ok {
		return e.Config
	}
	return particle.EmitterConfig{}
}

// MoveTo re-anchors the emitter at pos. Line emitters keep their shape and
// are moved so that their midpoint lands on pos.
func (h *EmitterHandle) MoveTo(pos utils.Vector2) {
	e, ok := h.component()
	if !ok {
		return
	}
	cfg := &e.Config
	if cfg.Type == particle.PointKindLine {
		delta := pos.Sub(cfg.LineStart.Lerp(*cfg.LineEnd, 0.5))
		start, end := cfg.LineStart.Add(delta), cfg.LineEnd.Add(delta)
		cfg.LineStart, cfg.LineEnd = &start, &end
	}
	cfg.Center = pos
}
