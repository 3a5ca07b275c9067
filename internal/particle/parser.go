package particle

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/decker502/particles/pkg/embedded"
)

// effectFile is the on-disk layout of an effect YAML file.
type effectFile struct {
	Name     string        `yaml:"name"`
	MaxCount int           `yaml:"maxCount"`
	Defaults Config        `yaml:"defaults"`
	Emitters []Config      `yaml:"emitters"`
	Forces   []ForceConfig `yaml:"forces"`
}

// Effect is a parsed effect file: a set of emitters and forces that run in
// one particle system.
type Effect struct {
	Name     string
	MaxCount int
	Emitters []EmitterConfig
	Forces   []ForceFunc

	// ForceConfigs keeps the file form of Forces, index for index.
	ForceConfigs []ForceConfig
}

// ParseEffect parses an effect YAML document.
//
// The optional "defaults" mapping is deep-merged under every emitter's
// particleSettings (emitter keys win) before decoding.
//
// Parameters:
//   - data: YAML content
//   - source: name used in error messages (usually the file path)
//
// Example document:
//
//	name: fountain
//	defaults:
//	  applyForces: true
//	emitters:
//	  - type: box
//	    center: {x: 400, y: 560}
//	    size: {x: 40, y: 4}
//	    particlesPerSecond: 120
//	    particleSettings:
//	      vy: "[-420 -360]"
//	      life: 2.5
//	forces:
//	  - type: acceleration
//	    y: 6
func ParseEffect(data []byte, source string) (*Effect, error) {
	var file effectFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse effect %s: %w", source, err)
	}

	if len(file.Emitters) == 0 {
		return nil, fmt.Errorf("effect %s contains no emitters", source)
	}
	if file.MaxCount < 0 {
		return nil, fmt.Errorf("effect %s: %w: maxCount must not be negative", source, ErrInvalidConfig)
	}

	effect := &Effect{
		Name:     file.Name,
		MaxCount: file.MaxCount,
	}

	for i, raw := range file.Emitters {
		settings, isMap := asMap(raw["particleSettings"])
		if !isMap && raw["particleSettings"] != nil {
			return nil, fmt.Errorf("effect %s emitter %d: %w: particleSettings must be a mapping", source, i, ErrInvalidConfig)
		}
		merged := raw.Clone()
		if merged == nil {
			merged = Config{}
		}
		merged["particleSettings"] = Merge(settings, file.Defaults)

		emitter, err := DecodeEmitterConfig(merged)
		if err != nil {
			return nil, fmt.Errorf("effect %s emitter %d: %w", source, i, err)
		}
		if emitter.Name == "" {
			emitter.Name = fmt.Sprintf("emitter%d", i)
		}
		effect.Emitters = append(effect.Emitters, emitter)
	}

	for i, fc := range file.Forces {
		force, err := BuildForce(fc)
		if err != nil {
			return nil, fmt.Errorf("effect %s force %d: %w", source, i, err)
		}
		effect.Forces = append(effect.Forces, force)
		effect.ForceConfigs = append(effect.ForceConfigs, fc)
	}

	return effect, nil
}

// LoadEffect reads and parses an effect file. Paths under "data/" are read
// from the embedded bundle; anything else from the filesystem.
func LoadEffect(path string) (*Effect, error) {
	var (
		data []byte
		err  error
	)
	if embedded.Exists(path) {
		data, err = embedded.ReadFile(path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read effect file %s: %w", path, err)
	}
	return ParseEffect(data, path)
}
