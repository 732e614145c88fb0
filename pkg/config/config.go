// Package config loads named scenarios for the retrotilec CLI from
// YAML: which evaluator to exercise and the sources/destinations to
// feed it. The core engine itself never reads configuration — this
// package exists purely to drive the demo CLI described in
// SPEC_FULL.md.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nesforge/retrotile/pkg/colorspec"
)

// Scenario is the top-level shape of a scenario file. Exactly one of
// ColorToColor or SpriteCoverage should be set; which is present
// determines which CLI subcommand can run it.
type Scenario struct {
	Name           string                  `yaml:"name"`
	ColorToColor   *ColorToColorScenario   `yaml:"color_to_color,omitempty"`
	SpriteCoverage *SpriteCoverageScenario `yaml:"sprite_coverage,omitempty"`
}

// ColorEntrySpec describes one color source's intentions. A nil field
// means that intention is left unset, matching colorspec's
// unset-means-unconstrained convention.
type ColorEntrySpec struct {
	Color *int    `yaml:"color,omitempty"`
	Slot  *int    `yaml:"slot,omitempty"`
	Name  *string `yaml:"name,omitempty"`
}

// ColorToColorScenario configures a `run` invocation of the
// colortocolor evaluator: a list of color sources to merge into
// NumDestinations empty staging slots.
type ColorToColorScenario struct {
	NumDestinations int              `yaml:"num_destinations"`
	Sources         []ColorEntrySpec `yaml:"sources"`
}

// SpriteCoverageScenario configures a `cover-sprites` invocation: a
// rectangular foreground mask (one string per row, any non-'.'
// character marks a foreground pixel) and the sprite size to tile it
// with.
type SpriteCoverageScenario struct {
	SpriteWidth    int      `yaml:"sprite_width"`
	SpriteHeight   int      `yaml:"sprite_height"`
	MaxSolutions   int      `yaml:"max_solutions"`
	ForegroundRows []string `yaml:"foreground_rows"`
}

// ColorEntry builds a *colorspec.ColorEntry carrying whichever
// intentions spec sets.
func (spec ColorEntrySpec) ColorEntry() (*colorspec.ColorEntry, error) {
	entry := colorspec.NewColorEntry()
	if spec.Color != nil {
		if _, err := entry.Intentions.TrySet(colorspec.IntentionColor, *spec.Color); err != nil {
			return nil, errors.Wrap(err, "config: color intention")
		}
	}
	if spec.Slot != nil {
		if _, err := entry.Intentions.TrySet(colorspec.IntentionSlot, *spec.Slot); err != nil {
			return nil, errors.Wrap(err, "config: slot intention")
		}
	}
	if spec.Name != nil {
		if _, err := entry.Intentions.TrySet(colorspec.IntentionName, *spec.Name); err != nil {
			return nil, errors.Wrap(err, "config: name intention")
		}
	}
	return entry, nil
}

// ColorEntries builds every source in the scenario, in order.
func (s *ColorToColorScenario) ColorEntries() ([]*colorspec.ColorEntry, error) {
	entries := make([]*colorspec.ColorEntry, 0, len(s.Sources))
	for i, spec := range s.Sources {
		entry, err := spec.ColorEntry()
		if err != nil {
			return nil, errors.Wrapf(err, "config: source %d", i)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Load reads and parses a scenario file at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: reading %s", path)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrapf(err, "config: parsing %s", path)
	}
	return &s, nil
}

// Width reports the mask's column count, taken from its first row.
func (s *SpriteCoverageScenario) Width() int {
	if len(s.ForegroundRows) == 0 {
		return 0
	}
	return len([]rune(s.ForegroundRows[0]))
}

// Height reports the mask's row count.
func (s *SpriteCoverageScenario) Height() int {
	return len(s.ForegroundRows)
}

// IsForeground reports whether (x, y) in the mask is a foreground
// pixel.
func (s *SpriteCoverageScenario) IsForeground(x, y int) bool {
	if y < 0 || y >= len(s.ForegroundRows) {
		return false
	}
	row := []rune(s.ForegroundRows[y])
	if x < 0 || x >= len(row) {
		return false
	}
	return row[x] != '.'
}
