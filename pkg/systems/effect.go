package systems

import (
	"fmt"

	"github.com/decker502/particles/internal/particle"
)

// AddEffect creates every emitter of a parsed effect file and appends its
// forces. A positive effect MaxCount replaces the system's.
//
// On error the emitters created so far are removed again.
func (ps *ParticleSystem) AddEffect(effect *particle.Effect) ([]*EmitterHandle, error) {
	handles := make([]*EmitterHandle, 0, len(effect.Emitters))
	for _, cfg := range effect.Emitters {
		h, err := ps.CreateEmitter(cfg)
		if err != nil {
			for _, created := range handles {
				created.Remove()
			}
			return nil, fmt.Errorf("effect %s: %w", effect.Name, err)
		}
		handles = append(handles, h)
	}

	ps.Forces = append(ps.Forces, effect.Forces...)
	if effect.MaxCount > 0 {
		ps.MaxCount = effect.MaxCount
	}
	return handles, nil
}
