package game

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/decker502/particles/internal/particle"
	"github.com/decker502/particles/pkg/embedded"
)

// EffectCatalog is the ordered list of effects a viewer can cycle through:
// the embedded effects plus any *.yaml files from an extra directory.
// A file whose name matches an embedded effect replaces it.
type EffectCatalog struct {
	names   []string
	paths   map[string]string
	current int
}

// NewEffectCatalog builds the catalog. dir may be empty.
func NewEffectCatalog(dir string) (*EffectCatalog, error) {
	c := &EffectCatalog{paths: make(map[string]string)}

	builtin, err := embedded.ListEffects()
	if err != nil {
		return nil, fmt.Errorf("failed to list embedded effects: %w", err)
	}
	for _, p := range builtin {
		c.paths[embedded.EffectName(p)] = p
	}

	if dir != "" {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("effect directory: %w", err)
		}
		files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
		}
		for _, f := range files {
			c.paths[embedded.EffectName(f)] = f
		}
	}

	for name := range c.paths {
		c.names = append(c.names, name)
	}
	sort.Strings(c.names)

	if len(c.names) == 0 {
		return nil, fmt.Errorf("no particle effects found")
	}
	return c, nil
}

// Names returns the effect names in catalog order.
func (c *EffectCatalog) Names() []string {
	return c.names
}

// Current returns the selected effect name.
func (c *EffectCatalog) Current() string {
	return c.names[c.current]
}

// Index returns the selected position (0-based).
func (c *EffectCatalog) Index() int {
	return c.current
}

// Select makes name current; matching is case-insensitive. It reports
// whether name was found.
func (c *EffectCatalog) Select(name string) bool {
	for i, n := range c.names {
		if strings.EqualFold(n, name) {
			c.current = i
			return true
		}
	}
	return false
}

// Step moves the selection by delta, wrapping around, and returns the new
// current name.
func (c *EffectCatalog) Step(delta int) string {
	n := len(c.names)
	c.current = ((c.current+delta)%n + n) % n
	return c.Current()
}

// Load parses the current effect.
func (c *EffectCatalog) Load() (*particle.Effect, error) {
	return particle.LoadEffect(c.paths[c.Current()])
}
