package systems

import (
	"testing"

	"github.com/decker502/particles/internal/particle"
	"github.com/decker502/particles/pkg/components"
	"github.com/decker502/particles/pkg/ecs"
)

// particleByID 通过快照中的 ID 取回粒子本体（仅测试使用）
func (ps *ParticleSystem) particleByID(t *testing.T, v ParticleView) *particle.Particle {
	t.Helper()
	pc, ok := ecs.GetComponent[*components.ParticleComponent](ps.EntityManager, v.ID)
	if !ok {
		t.Fatalf("particle %d not found", v.ID)
	}
	return pc.Particle
}
