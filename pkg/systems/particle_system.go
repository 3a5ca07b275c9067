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

// ParticleSystem owns the live particles, the emitters and the global
// forces, and drives the simulation one tick at a time.
//
// Each tick runs in a fixed order:
//  1. Advance all emitters in creation order (may spawn particles)
//  2. Visit every particle once: cull the dead, integrate the living,
//     then apply every force in list order
//
// Particles spawned in phase 1 are integrated in the same tick. A particle
// killed during a tick is culled at the start of its visit in the next one.
//
// Not safe for concurrent use.
type ParticleSystem struct {
	EntityManager *ecs.EntityManager

	// Forces are applied to every force-enabled particle, in order, after
	// it has been integrated.
	Forces []particle.ForceFunc

	// MaxCount caps the number of alive particles (0 = unlimited). Spawn
	// requests over the cap are dropped. Particles killed this tick but not
	// yet culled do not count.
	MaxCount int

	// Defaults is merged under every spawned particle's configuration.
	Defaults particle.ParticleConfig

	// Backend receives a drawable per particle; nil runs headless.
	Backend RenderBackend

	// Rand supplies uniform draws in [0, 1); nil uses math/rand.
	Rand func() float64

	// Verbose enables per-emitter lifecycle logging.
	Verbose bool

	live            int
	dying           int // killed during a tick, culled on the next one
	dropped         int
	droppedThisTick int
}

// ParticleView is a read-only snapshot of one live particle.
type ParticleView struct {
	ID       ecs.EntityID
	Position utils.Vector2
	Scale    float64
	Rotation float64
	Tint     uint32
	Alpha    float64
	Texture  string
}

// NewParticleSystem creates a ParticleSystem storing its entities in em.
// A nil em gets a fresh EntityManager.
func NewParticleSystem(em *ecs.EntityManager, backend RenderBackend) *ParticleSystem {
	if em == nil {
		em = ecs.NewEntityManager()
	}
	return &ParticleSystem{
		EntityManager: em,
		Backend:       backend,
	}
}

func (ps *ParticleSystem) resolver() particle.Resolver {
	return particle.Resolver{Rand: ps.Rand}
}

// Tick advances the simulation by dt seconds.
//
// Errors from building particles (emitter spawns) are returned as-is with
// context; the tick stops at the first one.
func (ps *ParticleSystem) Tick(dt float64) error {
	ps.droppedThisTick = 0

	if err := ps.updateEmitters(dt); err != nil {
		return err
	}
	ps.updateParticles(dt)
	ps.EntityManager.RemoveMarkedEntities()

	if ps.droppedThisTick > 0 {
		log.Printf("[ParticleSystem] dropped %d spawn requests (maxCount=%d, total dropped=%d)",
			ps.droppedThisTick, ps.MaxCount, ps.dropped)
	}
	return nil
}

// updateParticles visits every particle entity exactly once.
func (ps *ParticleSystem) updateParticles(dt float64) {
	particleEntities := ecs.GetEntitiesWith1[*components.ParticleComponent](ps.EntityManager)

	for _, id := range particleEntities {
		pc, ok := ecs.GetComponent[*components.ParticleComponent](ps.EntityManager, id)
		if !ok {
			continue
		}
		p := pc.Particle

		if !p.Alive() {
			ps.removeParticle(id, pc)
			continue
		}

		p.Advance(dt)
		// 本帧死亡的粒子不再受力，下一帧剔除
		if !p.Alive() {
			pc.Dying = true
			ps.dying++
			continue
		}
		for _, force := range ps.Forces {
			p.ApplyForce(force)
		}
	}
}

// MaxSpawnCount bounds the count of a single Spawn call.
const MaxSpawnCount = 1 << 20

// Spawn builds particles from cfg merged over Defaults and adds them to the
// live set and the render list.
//
// cfg.Count (default 1) is resolved once, with the system as the generator
// context; fractional counts are floored. Counts outside [0, MaxSpawnCount]
// are rejected. The first construction error is returned; particles built
// before it stay alive.
func (ps *ParticleSystem) Spawn(cfg particle.ParticleConfig) error {
	merged := cfg.Merge(ps.Defaults)

	n, err := ps.resolver().Resolve(merged.Count, ps, 1)
	if err != nil {
		return fmt.Errorf("failed to resolve count: %w", err)
	}
	if !(n >= 0 && n <= MaxSpawnCount) {
		return fmt.Errorf("%w: count %v out of range [0, %d]", particle.ErrInvalidConfig, n, MaxSpawnCount)
	}

	count := int(math.Floor(n))
	for i := 0; i < count; i++ {
		if err := ps.spawnOne(merged); err != nil {
			return err
		}
	}
	return nil
}

// spawnOne builds exactly one particle from an already merged config; Count
// is not consulted. Emitters spawn through here, once per particle.
func (ps *ParticleSystem) spawnOne(merged particle.ParticleConfig) error {
	if ps.MaxCount > 0 && ps.AliveCount() >= ps.MaxCount {
		ps.dropped++
		ps.droppedThisTick++
		return nil
	}

	p, err := particle.NewParticle(merged, ps.resolver())
	if err != nil {
		return fmt.Errorf("failed to spawn particle: %w", err)
	}
	ps.addParticle(p)
	return nil
}

func (ps *ParticleSystem) addParticle(p *particle.Particle) ecs.EntityID {
	id := ps.EntityManager.CreateEntity()
	pc := &components.ParticleComponent{Particle: p}
	if ps.Backend != nil {
		pc.Drawable = ps.Backend.NewDrawable(p)
		ps.Backend.AddDrawable(pc.Drawable)
	}
	ps.EntityManager.AddComponent(id, pc)
	ps.live++
	return id
}

func (ps *ParticleSystem) removeParticle(id ecs.EntityID, pc *components.ParticleComponent) {
	if ps.EntityManager.IsMarked(id) {
		return
	}
	if ps.Backend != nil && pc.Drawable != nil {
		ps.Backend.RemoveDrawable(pc.Drawable)
	}
	if pc.Dying {
		ps.dying--
	}
	ps.EntityManager.DestroyEntity(id)
	ps.live--
}

// Particles returns a snapshot of the particles that are still alive, in
// spawn order.
func (ps *ParticleSystem) Particles() []ParticleView {
	ids := ecs.GetEntitiesWith1[*components.ParticleComponent](ps.EntityManager)
	views := make([]ParticleView, 0, len(ids))
	for _, id := range ids {
		pc, _ := ecs.GetComponent[*components.ParticleComponent](ps.EntityManager, id)
		p := pc.Particle
		if !p.Alive() || ps.EntityManager.IsMarked(id) {
			continue
		}
		views = append(views, ParticleView{
			ID:       id,
			Position: p.Position,
			Scale:    p.Scale,
			Rotation: p.Rotation,
			Tint:     p.Tint,
			Alpha:    p.Alpha,
			Texture:  p.Texture,
		})
	}
	return views
}

// Clear removes every particle immediately. Emitters are kept.
func (ps *ParticleSystem) Clear() {
	for _, id := range ecs.GetEntitiesWith1[*components.ParticleComponent](ps.EntityManager) {
		pc, _ := ecs.GetComponent[*components.ParticleComponent](ps.EntityManager, id)
		ps.removeParticle(id, pc)
	}
	ps.EntityManager.RemoveMarkedEntities()
}

// Count returns the size of the live set, including particles killed this
// tick that have not been culled yet.
func (ps *ParticleSystem) Count() int {
	return ps.live
}

// AliveCount returns the number of live particles that are still alive.
// MaxCount is enforced against this value.
func (ps *ParticleSystem) AliveCount() int {
	return ps.live - ps.dying
}

// DroppedSpawns returns how many spawn requests MaxCount has rejected.
func (ps *ParticleSystem) DroppedSpawns() int {
	return ps.dropped
}
