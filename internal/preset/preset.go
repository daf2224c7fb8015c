// Package preset loads the build-time catalog of configuration presets
// that drive repeated inference passes.
package preset

import (
	_ "embed"
	"fmt"

	"github.com/BurntSushi/toml"
)

//go:embed presets.toml
var catalogTOML []byte

// Preset is one named bundle of build settings. Settings are the fully
// merged toolchain feature toggles (base block plus overrides).
type Preset struct {
	Name        string
	CXX         bool
	ExtraCFlags []string
	Settings    map[string]any
}

type catalog struct {
	Base    map[string]any `toml:"base"`
	Presets []presetEntry  `toml:"preset"`
}

type presetEntry struct {
	Name        string         `toml:"name"`
	CXX         bool           `toml:"cxx"`
	ExtraCFlags []string       `toml:"extra_cflags"`
	Settings    map[string]any `toml:"settings"`
}

// Load parses the embedded catalog and merges the base settings block
// under each preset.
func Load() ([]Preset, error) {
	var cat catalog
	if err := toml.Unmarshal(catalogTOML, &cat); err != nil {
		return nil, fmt.Errorf("preset catalog: %w", err)
	}
	if len(cat.Presets) == 0 {
		return nil, fmt.Errorf("preset catalog: no presets defined")
	}
	seen := make(map[string]struct{}, len(cat.Presets))
	presets := make([]Preset, 0, len(cat.Presets))
	for _, entry := range cat.Presets {
		if entry.Name == "" {
			return nil, fmt.Errorf("preset catalog: preset without a name")
		}
		if _, dup := seen[entry.Name]; dup {
			return nil, fmt.Errorf("preset catalog: duplicate preset %q", entry.Name)
		}
		seen[entry.Name] = struct{}{}

		settings := make(map[string]any, len(cat.Base)+len(entry.Settings))
		for k, v := range cat.Base {
			settings[k] = v
		}
		for k, v := range entry.Settings {
			settings[k] = v
		}
		presets = append(presets, Preset{
			Name:        entry.Name,
			CXX:         entry.CXX,
			ExtraCFlags: entry.ExtraCFlags,
			Settings:    settings,
		})
	}
	return presets, nil
}
