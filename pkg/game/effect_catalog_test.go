package game

import (
	"os"
	"path/filepath"
	"testing"
)

// TestEffectCatalogEmbedded 测试内置特效列表
func TestEffectCatalogEmbedded(t *testing.T) {
	c, err := NewEffectCatalog("")
	if err != nil {
		t.Fatalf("NewEffectCatalog() error: %v", err)
	}

	want := []string{"fire", "fountain", "snow", "sparks"}
	names := c.Names()
	if len(names) != len(want) {
		t.Fatalf("Names(): got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d]: got %q, want %q", i, names[i], want[i])
		}
	}

	for _, name := range want {
		if !c.Select(name) {
			t.Fatalf("Select(%q) failed", name)
		}
		effect, err := c.Load()
		if err != nil {
			t.Fatalf("Load(%q) error: %v", name, err)
		}
		if len(effect.Emitters) == 0 {
			t.Errorf("effect %q has no emitters", name)
		}
	}
}

// TestEffectCatalogStep 测试前后切换的循环行为
func TestEffectCatalogStep(t *testing.T) {
	c, err := NewEffectCatalog("")
	if err != nil {
		t.Fatalf("NewEffectCatalog() error: %v", err)
	}

	tests := []struct {
		name  string
		delta int
		want  string
	}{
		{"下一个", 1, "fountain"},
		{"再下一个", 1, "snow"},
		{"后退两个", -2, "fire"},
		{"从头向前循环", -1, "sparks"},
		{"从尾向后循环", 1, "fire"},
		{"跨越多圈", 9, "fountain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Step(tt.delta); got != tt.want {
				t.Errorf("Step(%d): got %q, want %q", tt.delta, got, tt.want)
			}
		})
	}
}

// TestEffectCatalogSelect 测试按名称选择
func TestEffectCatalogSelect(t *testing.T) {
	c, _ := NewEffectCatalog("")

	if !c.Select("SNOW") {
		t.Error("Select(SNOW) should match case-insensitively")
	}
	if c.Current() != "snow" {
		t.Errorf("Current(): got %q, want snow", c.Current())
	}
	if c.Select("missing") {
		t.Error("Select(missing) should fail")
	}
	if c.Current() != "snow" {
		t.Errorf("failed Select changed Current() to %q", c.Current())
	}
}

// TestEffectCatalogDir 测试外部目录的特效覆盖与追加
func TestEffectCatalogDir(t *testing.T) {
	dir := t.TempDir()
	custom := "name: fire\nmaxCount: 7\nemitters:\n  - particlesPerSecond: 5\n"
	if err := os.WriteFile(filepath.Join(dir, "fire.yaml"), []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "aurora.yaml"), []byte("emitters:\n  - type: point\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := NewEffectCatalog(dir)
	if err != nil {
		t.Fatalf("NewEffectCatalog(%s) error: %v", dir, err)
	}
	if len(c.Names()) != 5 {
		t.Fatalf("Names(): got %v, want 5 entries", c.Names())
	}
	if c.Current() != "aurora" {
		t.Errorf("Current(): got %q, want aurora", c.Current())
	}

	c.Select("fire")
	effect, err := c.Load()
	if err != nil {
		t.Fatalf("Load(fire) error: %v", err)
	}
	if effect.MaxCount != 7 {
		t.Errorf("fire from dir should override embedded one, MaxCount = %d", effect.MaxCount)
	}
}

// TestEffectCatalogMissingDir 测试不存在的目录
func TestEffectCatalogMissingDir(t *testing.T) {
	if _, err := NewEffectCatalog(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}
