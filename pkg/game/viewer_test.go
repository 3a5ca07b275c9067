package game

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/decker502/particles/internal/particle"
	"github.com/decker502/particles/pkg/systems"
	"github.com/decker502/particles/pkg/utils"
)

func newTestViewer(t *testing.T) *Viewer {
	t.Helper()
	catalog, err := NewEffectCatalog("")
	if err != nil {
		t.Fatalf("NewEffectCatalog() error: %v", err)
	}
	ps := systems.NewParticleSystem(nil, nil)
	ps.Rand = func() float64 { return 0.5 }

	v, err := NewViewer(ps, catalog, nil)
	if err != nil {
		t.Fatalf("NewViewer() error: %v", err)
	}
	return v
}

// TestViewerLoadsFirstEffect 测试初始化时加载目录中的第一个特效
func TestViewerLoadsFirstEffect(t *testing.T) {
	v := newTestViewer(t)

	if v.Catalog.Current() != "fire" {
		t.Fatalf("Current(): got %q, want fire", v.Catalog.Current())
	}
	if v.ActiveEmitters() != 2 {
		t.Errorf("ActiveEmitters(): got %d, want 2", v.ActiveEmitters())
	}
	if v.System.MaxCount != 3000 {
		t.Errorf("MaxCount: got %d, want 3000", v.System.MaxCount)
	}
	if len(v.System.Forces) != 1 {
		t.Errorf("Forces: got %d, want 1", len(v.System.Forces))
	}
	if v.Settings.GetSettings().LastEffect != "fire" {
		t.Errorf("LastEffect: got %q, want fire", v.Settings.GetSettings().LastEffect)
	}
}

// TestViewerStepReplacesEffect 测试切换特效时旧的发射器、粒子和力被清除
func TestViewerStepReplacesEffect(t *testing.T) {
	v := newTestViewer(t)

	if err := v.Update(0.1); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if v.System.Count() == 0 {
		t.Fatal("fire should have spawned particles")
	}
	oldEmitters := v.emitters

	if err := v.Step(1); err != nil {
		t.Fatalf("Step(1) error: %v", err)
	}

	if v.Catalog.Current() != "fountain" {
		t.Errorf("Current(): got %q, want fountain", v.Catalog.Current())
	}
	if v.System.Count() != 0 {
		t.Errorf("Count() after switch: got %d, want 0", v.System.Count())
	}
	for i, h := range oldEmitters {
		if !h.Removed() {
			t.Errorf("old emitter %d still alive", i)
		}
	}
	if v.ActiveEmitters() != 1 {
		t.Errorf("ActiveEmitters(): got %d, want 1", v.ActiveEmitters())
	}
	// 力列表被替换而不是累加
	if len(v.System.Forces) != len(v.Effect().Forces) {
		t.Errorf("Forces: got %d, want %d", len(v.System.Forces), len(v.Effect().Forces))
	}
	if v.System.MaxCount != 4000 {
		t.Errorf("MaxCount: got %d, want 4000", v.System.MaxCount)
	}
}

// TestViewerPause 测试暂停时模拟不前进
func TestViewerPause(t *testing.T) {
	v := newTestViewer(t)

	if !v.TogglePause() {
		t.Fatal("TogglePause() should report paused")
	}
	for i := 0; i < 10; i++ {
		if err := v.Update(1.0 / 60); err != nil {
			t.Fatalf("Update() error: %v", err)
		}
	}
	if v.System.Count() != 0 {
		t.Errorf("paused viewer spawned %d particles", v.System.Count())
	}

	if v.TogglePause() {
		t.Fatal("second TogglePause() should resume")
	}
	if err := v.Update(0.1); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if v.System.Count() == 0 {
		t.Error("resumed viewer should spawn particles")
	}
}

// TestViewerTimeScale 测试速度倍率作用于模拟时间
func TestViewerTimeScale(t *testing.T) {
	normal := newTestViewer(t)
	fast := newTestViewer(t)
	fast.ScaleTime(2)

	if fast.Settings.GetSettings().TimeScale != 2 {
		t.Fatalf("TimeScale: got %v, want 2", fast.Settings.GetSettings().TimeScale)
	}

	for i := 0; i < 5; i++ {
		if err := normal.Update(0.1); err != nil {
			t.Fatal(err)
		}
		if err := fast.Update(0.1); err != nil {
			t.Fatal(err)
		}
	}
	if fast.System.Count() <= normal.System.Count() {
		t.Errorf("fast viewer should have more particles: fast=%d normal=%d",
			fast.System.Count(), normal.System.Count())
	}

	fast.ScaleTime(100)
	if fast.Settings.GetSettings().TimeScale != MaxTimeScale {
		t.Errorf("TimeScale should clamp to %v, got %v", MaxTimeScale, fast.Settings.GetSettings().TimeScale)
	}
}

// TestViewerBurst 测试爆发生成与清除
func TestViewerBurst(t *testing.T) {
	v := newTestViewer(t)

	if err := v.Burst(utils.Vec2(100, 200)); err != nil {
		t.Fatalf("Burst() error: %v", err)
	}
	if v.System.Count() != BurstCount {
		t.Fatalf("Count(): got %d, want %d", v.System.Count(), BurstCount)
	}
	for _, p := range v.System.Particles() {
		if p.Position != utils.Vec2(100, 200) {
			t.Fatalf("burst particle at %v, want (100, 200)", p.Position)
		}
	}

	v.Clear()
	if v.System.Count() != 0 {
		t.Errorf("Count() after Clear: got %d, want 0", v.System.Count())
	}
	if v.ActiveEmitters() != 2 {
		t.Errorf("Clear should keep emitters, got %d", v.ActiveEmitters())
	}
}

// TestViewerMoveEmitters 测试发射器整体移动
func TestViewerMoveEmitters(t *testing.T) {
	v := newTestViewer(t)
	target := utils.Vec2(50, 60)

	v.MoveEmitters(target)
	for i, h := range v.emitters {
		if got := h.Config().Center; got != target {
			t.Errorf("emitter %d center: got %v, want %v", i, got, target)
		}
	}
}

// TestViewerHUDLines 测试信息面板内容
func TestViewerHUDLines(t *testing.T) {
	v := newTestViewer(t)
	v.TogglePause()

	text := strings.Join(v.HUDLines(), "\n")
	for _, want := range []string{"Effect 1/4: fire", "Emitters: 2", "PAUSED", "x1.00"} {
		if !strings.Contains(text, want) {
			t.Errorf("HUD missing %q:\n%s", want, text)
		}
	}
}

// TestViewerRunFailureClearsEffect 发射器创建失败时不再保留上一个特效
func TestViewerRunFailureClearsEffect(t *testing.T) {
	v := newTestViewer(t)
	if v.Effect() == nil {
		t.Fatal("Effect() is nil after a successful load")
	}
	oldEmitters := v.emitters

	broken := &particle.Effect{
		Name: "broken",
		Emitters: []particle.EmitterConfig{
			{ParticlesPerSecond: 5},
			{ParticlesPerSecond: 0}, // 非法速率
		},
	}
	if err := v.run(broken); !errors.Is(err, particle.ErrInvalidRate) {
		t.Fatalf("run(broken) error = %v, want ErrInvalidRate", err)
	}

	if v.Effect() != nil {
		t.Error("Effect() should be nil after a failed load")
	}
	if v.ActiveEmitters() != 0 {
		t.Errorf("ActiveEmitters() = %d, want 0", v.ActiveEmitters())
	}
	for i, h := range oldEmitters {
		if !h.Removed() {
			t.Errorf("old emitter %d still alive", i)
		}
	}

	// 失败后仍可重新加载
	if err := v.Load(); err != nil {
		t.Fatalf("Load() after failure: %v", err)
	}
	if v.Effect() == nil || v.ActiveEmitters() != 2 {
		t.Errorf("reload: effect=%v emitters=%d", v.Effect(), v.ActiveEmitters())
	}
}

// TestViewerLoadReadFailureKeepsEffect 读取失败时当前特效继续运行
func TestViewerLoadReadFailureKeepsEffect(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zzz.yaml")
	if err := os.WriteFile(path, []byte("name: zzz\nemitters:\n  - particlesPerSecond: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	catalog, err := NewEffectCatalog(dir)
	if err != nil {
		t.Fatalf("NewEffectCatalog() error: %v", err)
	}
	v, err := NewViewer(systems.NewParticleSystem(nil, nil), catalog, nil)
	if err != nil {
		t.Fatalf("NewViewer() error: %v", err)
	}
	running := v.Effect()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	catalog.Select("zzz")
	if err := v.Load(); err == nil {
		t.Fatal("Load() of a missing file should fail")
	}
	if v.Effect() != running {
		t.Error("a read failure should keep the running effect")
	}
}
