package systems

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/decker502/particles/internal/particle"
	"github.com/decker502/particles/pkg/utils"
)

func TestCreateEmitter_Validation(t *testing.T) {
	start := utils.Vec2(0, 0)
	tests := []struct {
		name string
		cfg  particle.EmitterConfig
		want error
	}{
		{"unknown kind", particle.EmitterConfig{Type: particle.PointKind(17), ParticlesPerSecond: 1}, particle.ErrUnknownPointKind},
		{"line without endpoints", particle.EmitterConfig{Type: particle.PointKindLine, LineStart: &start, ParticlesPerSecond: 1}, particle.ErrMissingLineEndpoints},
		{"zero rate", particle.EmitterConfig{}, particle.ErrInvalidRate},
		{"negative rate", particle.EmitterConfig{ParticlesPerSecond: -1}, particle.ErrInvalidRate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps, _ := newTestSystem()
			h, err := ps.CreateEmitter(tt.cfg)
			if !errors.Is(err, tt.want) {
				t.Errorf("CreateEmitter error = %v, want %v", err, tt.want)
			}
			if h != nil {
				t.Error("failed CreateEmitter returned a handle")
			}
		})
	}
}

// TestEmitter_SpawnsInsideGeometry 发射器生成的粒子落在几何范围内（生成当帧位置未移动）
func TestEmitter_SpawnsInsideGeometry(t *testing.T) {
	ps, _ := newTestSystem()
	ps.Rand = rand.New(rand.NewSource(7)).Float64

	center := utils.Vec2(200, 100)
	if _, err := ps.CreateEmitter(particle.EmitterConfig{
		Type:               particle.PointKindBox,
		Center:             center,
		Size:               utils.Vec2(50, 20),
		ParticlesPerSecond: 1000,
	}); err != nil {
		t.Fatalf("CreateEmitter error: %v", err)
	}
	if err := ps.Tick(0.1); err != nil {
		t.Fatalf("Tick error: %v", err)
	}

	views := ps.Particles()
	if len(views) < 99 {
		t.Fatalf("expected about 100 particles, got %d", len(views))
	}
	for _, v := range views {
		if math.Abs(v.Position.X-center.X) > 25 || math.Abs(v.Position.Y-center.Y) > 10 {
			t.Fatalf("particle at %v outside the box", v.Position)
		}
	}
}

// TestEmitter_TemplateUntouched 每次生成使用独立的配置值，模板不被修改
func TestEmitter_TemplateUntouched(t *testing.T) {
	ps, _ := newTestSystem()
	h, err := ps.CreateEmitter(particle.EmitterConfig{
		Type:               particle.PointKindCircle,
		Center:             utils.Vec2(10, 10),
		Size:               utils.Vec2(8, 8),
		ParticlesPerSecond: 50,
		ParticleSettings: particle.ParticleConfig{
			Extra: particle.Config{"nested": particle.Config{"k": 1}},
		},
	})
	if err != nil {
		t.Fatalf("CreateEmitter error: %v", err)
	}
	_ = ps.Tick(0.2)

	tmpl := h.Config().ParticleSettings
	if tmpl.X.IsSet() || tmpl.Y.IsSet() {
		t.Errorf("template position was written: x=%v y=%v", tmpl.X, tmpl.Y)
	}

	// 修改某个粒子的 Extra 不影响模板
	v := ps.Particles()[0]
	ps.particleByID(t, v).Extra["nested"].(particle.Config)["k"] = 2
	if tmpl.Extra["nested"].(particle.Config)["k"] != 1 {
		t.Error("particle Extra aliases the emitter template")
	}
}

func TestSpawnRequest_Config(t *testing.T) {
	tmpl := particle.ParticleConfig{VX: particle.Literal(3)}
	req := SpawnRequest{Position: utils.Vec2(4, 5), Template: &tmpl}
	cfg := req.Config()

	if cfg.X.Value != 4 || cfg.Y.Value != 5 || cfg.VX.Value != 3 {
		t.Errorf("request config = %+v", cfg)
	}
	if tmpl.X.IsSet() {
		t.Error("SpawnRequest.Config modified the template")
	}
	if cfg.Count.Value != 1 {
		t.Errorf("request count = %v, want 1", cfg.Count)
	}
}

// TestEmitter_IgnoresCount 发射器每次请求只生成一个粒子，count 不放大发射速率
func TestEmitter_IgnoresCount(t *testing.T) {
	tests := []struct {
		name          string
		templateCount particle.NumericSpec
		defaultCount  particle.NumericSpec
	}{
		{"模板 count", particle.Literal(5), particle.NumericSpec{}},
		{"默认 count", particle.NumericSpec{}, particle.Literal(3)},
		{"两者都有", particle.Range(2, 4), particle.Literal(7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps, _ := newTestSystem()
			ps.Defaults.Count = tt.defaultCount
			h, err := ps.CreateEmitter(particle.EmitterConfig{
				ParticlesPerSecond: 10,
				ParticleSettings:   particle.ParticleConfig{Count: tt.templateCount},
			})
			if err != nil {
				t.Fatalf("CreateEmitter error: %v", err)
			}

			for i := 0; i < 20; i++ {
				if err := ps.Tick(0.05); err != nil {
					t.Fatalf("Tick error: %v", err)
				}
			}
			if h.Launched() != 10 || ps.Count() != 10 {
				t.Errorf("launched=%d Count=%d, want 10", h.Launched(), ps.Count())
			}
		})
	}
}

// TestEmitter_UsesDefaults 发射器生成的粒子仍合并系统默认配置
func TestEmitter_UsesDefaults(t *testing.T) {
	ps, _ := newTestSystem()
	ps.Defaults.Color = particle.Literal(0x123456)
	if _, err := ps.CreateEmitter(particle.EmitterConfig{ParticlesPerSecond: 10}); err != nil {
		t.Fatalf("CreateEmitter error: %v", err)
	}
	if err := ps.Tick(0.1); err != nil {
		t.Fatalf("Tick error: %v", err)
	}
	if v := onlyParticle(t, ps); v.Tint != 0x123456 {
		t.Errorf("tint = %#x, want defaults 0x123456", v.Tint)
	}
}

func TestEmitter_SystemDuration(t *testing.T) {
	ps, _ := newTestSystem()
	h, err := ps.CreateEmitter(particle.EmitterConfig{
		ParticlesPerSecond: 10,
		SystemDuration:     1,
		ParticleSettings:   particle.ParticleConfig{Life: particle.Literal(5)},
	})
	if err != nil {
		t.Fatalf("CreateEmitter error: %v", err)
	}

	for i := 0; i < 4; i++ {
		_ = ps.Tick(0.25)
	}
	if !h.Removed() {
		t.Fatal("emitter should finish once its duration has elapsed")
	}
	launched := ps.Count()
	if launched < 6 || launched > 8 {
		t.Errorf("launched %d particles in 0.75s at 10/s", launched)
	}

	// 发射器结束后，已生成的粒子继续存活
	for i := 0; i < 4; i++ {
		_ = ps.Tick(0.25)
	}
	if ps.Count() != launched {
		t.Errorf("Count() = %d, want %d (no new spawns, no deaths)", ps.Count(), launched)
	}
}

func TestEmitter_MaxLaunched(t *testing.T) {
	ps, _ := newTestSystem()
	h, _ := ps.CreateEmitter(particle.EmitterConfig{ParticlesPerSecond: 100, MaxLaunched: 4})
	_ = ps.Tick(0.5)

	if ps.Count() != 4 {
		t.Errorf("Count() = %d, want 4", ps.Count())
	}
	if !h.Removed() || h.Launched() != 0 {
		t.Error("emitter should be removed after reaching maxLaunched")
	}
}

func TestEmitterHandle_StopStart(t *testing.T) {
	ps, _ := newTestSystem()
	h, _ := ps.CreateEmitter(particle.EmitterConfig{ParticlesPerSecond: 10})

	_ = ps.Tick(0.15) // 1 个，carry 0.05
	h.Stop()
	if h.Active() {
		t.Error("Active() after Stop")
	}
	_ = ps.Tick(1)
	if h.Launched() != 1 {
		t.Errorf("stopped emitter launched: %d", h.Launched())
	}

	h.Start()
	_ = ps.Tick(0.1) // carry 0.15 → 1 个
	if h.Launched() != 2 {
		t.Errorf("Launched() = %d after restart, want 2", h.Launched())
	}
}

func TestEmitterHandle_Remove(t *testing.T) {
	ps, _ := newTestSystem()
	h, _ := ps.CreateEmitter(particle.EmitterConfig{ParticlesPerSecond: 10})
	_ = ps.Tick(0.5)
	before := ps.Count()

	h.Remove()
	_ = ps.Tick(0.5)
	if !h.Removed() {
		t.Error("emitter not removed")
	}
	if ps.Count() != before {
		t.Errorf("Count() = %d, want %d: removal must not spawn or kill", ps.Count(), before)
	}
	h.Stop()
	h.Start()
	h.MoveTo(utils.Vec2(1, 1))
}

func TestEmitterHandle_MoveTo(t *testing.T) {
	ps, _ := newTestSystem()
	start, end := utils.Vec2(0, 0), utils.Vec2(100, 0)
	h, _ := ps.CreateEmitter(particle.EmitterConfig{
		Type:               particle.PointKindLine,
		LineStart:          &start,
		LineEnd:            &end,
		ParticlesPerSecond: 1,
	})

	h.MoveTo(utils.Vec2(50, 40))
	cfg := h.Config()
	if *cfg.LineStart != utils.Vec2(0, 40) || *cfg.LineEnd != utils.Vec2(100, 40) {
		t.Errorf("line moved to %v..%v", *cfg.LineStart, *cfg.LineEnd)
	}
	if start != utils.Vec2(0, 0) {
		t.Error("MoveTo modified the caller's endpoint")
	}
}

// TestEmitterOrder 发射器按创建顺序推进
func TestEmitterOrder(t *testing.T) {
	ps, _ := newTestSystem()
	for _, x := range []float64{1, 2, 3} {
		_, err := ps.CreateEmitter(particle.EmitterConfig{
			Center:             utils.Vec2(x, 0),
			ParticlesPerSecond: 1,
		})
		if err != nil {
			t.Fatalf("CreateEmitter error: %v", err)
		}
	}
	_ = ps.Tick(1)

	views := ps.Particles()
	if len(views) != 3 {
		t.Fatalf("expected 3 particles, got %d", len(views))
	}
	for i, v := range views {
		if v.Position.X != float64(i+1) {
			t.Errorf("particle %d spawned from emitter at x=%v", i, v.Position.X)
		}
	}
}
