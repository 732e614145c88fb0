package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nesforge/retrotile/pkg/colorspec"
)

func writeScenario(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadColorToColorScenario(t *testing.T) {
	path := writeScenario(t, `
name: demo
color_to_color:
  num_destinations: 2
  sources:
    - color: 29
    - color: 29
      slot: 1
`)

	s, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, s.ColorToColor)
	assert.Equal(t, "demo", s.Name)
	assert.Equal(t, 2, s.ColorToColor.NumDestinations)
	require.Len(t, s.ColorToColor.Sources, 2)
	require.NotNil(t, s.ColorToColor.Sources[0].Color)
	assert.Equal(t, 29, *s.ColorToColor.Sources[0].Color)
	require.NotNil(t, s.ColorToColor.Sources[1].Slot)
	assert.Equal(t, 1, *s.ColorToColor.Sources[1].Slot)
}

func TestLoadSpriteCoverageScenario(t *testing.T) {
	path := writeScenario(t, `
name: strip
sprite_coverage:
  sprite_width: 2
  sprite_height: 1
  max_solutions: 50
  foreground_rows:
    - "####"
`)

	s, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, s.SpriteCoverage)
	assert.Equal(t, 4, s.SpriteCoverage.Width())
	assert.Equal(t, 1, s.SpriteCoverage.Height())
	assert.True(t, s.SpriteCoverage.IsForeground(0, 0))
	assert.False(t, s.SpriteCoverage.IsForeground(4, 0))
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestIsForegroundSkipsDotPixels(t *testing.T) {
	s := &SpriteCoverageScenario{ForegroundRows: []string{".#."}}
	assert.False(t, s.IsForeground(0, 0))
	assert.True(t, s.IsForeground(1, 0))
	assert.False(t, s.IsForeground(2, 0))
}

func TestColorEntryBuildsRequestedIntentions(t *testing.T) {
	color := 0x10
	slot := 2
	entry, err := ColorEntrySpec{Color: &color, Slot: &slot}.ColorEntry()
	require.NoError(t, err)
	assert.Equal(t, 0x10, entry.Intentions.Get(colorspec.IntentionColor))
	assert.Equal(t, 2, entry.Intentions.Get(colorspec.IntentionSlot))
}

func TestColorEntriesBuildsEveryScenarioSource(t *testing.T) {
	color1, color2 := 0x10, 0x20
	s := &ColorToColorScenario{Sources: []ColorEntrySpec{{Color: &color1}, {Color: &color2}}}
	entries, err := s.ColorEntries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 0x10, entries[0].Intentions.Get(colorspec.IntentionColor))
	assert.Equal(t, 0x20, entries[1].Intentions.Get(colorspec.IntentionColor))
}
