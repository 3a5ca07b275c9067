package game

import (
	"fmt"
	"log"

	"github.com/decker502/particles/internal/particle"
	"github.com/decker502/particles/pkg/systems"
	"github.com/decker502/particles/pkg/utils"
)

// BurstCount is the number of particles one Burst spawns.
const BurstCount = 80

// Viewer is the front-end independent state of an effect viewer: which
// effect is loaded, its emitters, and the pause/speed settings. The ebiten
// and terminal front ends only translate input into Viewer calls.
type Viewer struct {
	System   *systems.ParticleSystem
	Catalog  *EffectCatalog
	Settings *SettingsManager

	emitters []*systems.EmitterHandle
	effect   *particle.Effect

	// Status is a one-line message for the HUD.
	Status string
}

// NewViewer creates a viewer and loads the effect selected in catalog.
// settings may be nil (nothing is remembered).
func NewViewer(ps *systems.ParticleSystem, catalog *EffectCatalog, settings *SettingsManager) (*Viewer, error) {
	if settings == nil {
		settings, _ = NewSettingsManager(nil)
	}
	v := &Viewer{
		System:   ps,
		Catalog:  catalog,
		Settings: settings,
	}
	if err := v.Load(); err != nil {
		return nil, err
	}
	return v, nil
}

// Load replaces whatever is running with the catalog's current effect.
// Particles, emitters, forces and the capacity limit are all reset.
func (v *Viewer) Load() error {
	effect, err := v.Catalog.Load()
	if err != nil {
		// 读取失败时当前特效保持运行
		return fmt.Errorf("failed to load effect %s: %w", v.Catalog.Current(), err)
	}
	return v.run(effect)
}

// run replaces the running effect with effect. If its emitters cannot be
// created nothing runs afterwards and Effect returns nil.
func (v *Viewer) run(effect *particle.Effect) error {
	v.removeEmitters()
	v.System.Clear()
	v.System.Forces = nil
	v.System.MaxCount = 0

	handles, err := v.System.AddEffect(effect)
	if err != nil {
		v.effect = nil
		v.Status = fmt.Sprintf("Error: %v", err)
		return err
	}
	v.effect = effect
	v.emitters = handles
	v.Settings.SetLastEffect(v.Catalog.Current())
	v.Status = fmt.Sprintf("Selected: %s", v.Catalog.Current())
	log.Printf("[Viewer] Loaded effect %s (%d emitters, %d forces, maxCount=%d)",
		v.Catalog.Current(), len(handles), len(effect.Forces), effect.MaxCount)
	return nil
}

// Step switches to the effect delta positions away and loads it.
func (v *Viewer) Step(delta int) error {
	v.Catalog.Step(delta)
	return v.Load()
}

// Update advances the simulation by dt scaled by the time-scale setting.
// A paused viewer does nothing.
func (v *Viewer) Update(dt float64) error {
	s := v.Settings.GetSettings()
	if s.Paused {
		return nil
	}
	return v.System.Tick(dt * s.TimeScale)
}

// Burst spawns BurstCount short-lived particles at pos.
func (v *Viewer) Burst(pos utils.Vector2) error {
	if err := v.System.Spawn(BurstConfig(pos)); err != nil {
		return fmt.Errorf("failed to spawn burst: %w", err)
	}
	v.Status = fmt.Sprintf("Burst at (%.0f, %.0f)", pos.X, pos.Y)
	return nil
}

// MoveEmitters re-anchors every live emitter of the current effect at pos.
func (v *Viewer) MoveEmitters(pos utils.Vector2) {
	for _, h := range v.emitters {
		h.MoveTo(pos)
	}
	v.Status = fmt.Sprintf("Emitters moved to (%.0f, %.0f)", pos.X, pos.Y)
}

// TogglePause flips the pause setting and returns the new state.
func (v *Viewer) TogglePause() bool {
	paused := !v.Settings.GetSettings().Paused
	v.Settings.SetPaused(paused)
	if paused {
		v.Status = "PAUSED"
	} else {
		v.Status = "Resumed"
	}
	return paused
}

// ScaleTime multiplies the time scale by factor (clamped).
func (v *Viewer) ScaleTime(factor float64) {
	v.Settings.SetTimeScale(v.Settings.GetSettings().TimeScale * factor)
	v.Status = fmt.Sprintf("Speed x%.2f", v.Settings.GetSettings().TimeScale)
}

// Clear removes all particles; emitters keep running.
func (v *Viewer) Clear() {
	n := v.System.Count()
	v.System.Clear()
	v.Status = fmt.Sprintf("Cleared %d particles", n)
}

// ActiveEmitters counts the effect's emitters that still exist.
func (v *Viewer) ActiveEmitters() int {
	n := 0
	for _, h := range v.emitters {
		if !h.Removed() {
			n++
		}
	}
	return n
}

// Effect returns the loaded effect, nil when the last Load failed.
func (v *Viewer) Effect() *particle.Effect {
	return v.effect
}

// HUDLines returns the info panel text shared by both front ends.
func (v *Viewer) HUDLines() []string {
	s := v.Settings.GetSettings()
	lines := []string{
		fmt.Sprintf("Effect %d/%d: %s", v.Catalog.Index()+1, len(v.Catalog.Names()), v.Catalog.Current()),
		fmt.Sprintf("Particles: %d  Emitters: %d  Dropped: %d", v.System.Count(), v.ActiveEmitters(), v.System.DroppedSpawns()),
		fmt.Sprintf("Speed: x%.2f", s.TimeScale),
	}
	if s.Paused {
		lines = append(lines, "PAUSED")
	}
	if v.Status != "" {
		lines = append(lines, v.Status)
	}
	return lines
}

func (v *Viewer) removeEmitters() {
	for _, h := range v.emitters {
		h.Remove()
	}
	v.emitters = nil
}

// BurstConfig describes a one-shot radial spray at pos.
func BurstConfig(pos utils.Vector2) particle.ParticleConfig {
	return particle.ParticleConfig{
		X:               particle.Literal(pos.X),
		Y:               particle.Literal(pos.Y),
		VX:              particle.Range(-220, 220),
		VY:              particle.Range(-220, 220),
		Life:            particle.Range(0.4, 1.2),
		Size:            particle.Range(0.3, 0.8),
		Color:           particle.Literal(0xffe08a),
		Count:           particle.Literal(BurstCount),
		Spin:            particle.Range(-180, 180),
		ShouldShrink:    particle.Bool(true),
		ShouldDisappear: particle.Bool(true),
		Drag:            particle.Float(0.97),
		Texture:         "square",
		Extra:           particle.Config{"blend": "additive", "glyph": "*"},
	}
}
