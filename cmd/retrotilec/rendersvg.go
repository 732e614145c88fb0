package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nesforge/retrotile/pkg/config"
	"github.com/nesforge/retrotile/pkg/evaluators/spritecoverage"
	"github.com/nesforge/retrotile/pkg/render"
)

// renderSVGCmd covers a scenario's foreground mask the same way
// coverSpritesCmd does, then draws the winning solution to an SVG
// file for visual inspection.
type renderSVGCmd struct {
	Scenario string `arg:"" help:"Path to a scenario YAML file with a sprite_coverage block."`
	Out      string `arg:"" help:"Path to write the rendered SVG to."`
}

func (c *renderSVGCmd) Run(logger *zap.Logger) error {
	scenario, err := config.Load(c.Scenario)
	if err != nil {
		return err
	}
	pixelIndices, candidates, err := coverageCandidates(scenario)
	if err != nil {
		return err
	}

	result, found := spritecoverage.Cover(pixelIndices, candidates, scenario.SpriteCoverage.MaxSolutions, logger)
	if !found {
		return errors.Errorf("retrotilec: %s has no covering solution to render", scenario.Name)
	}

	sc := scenario.SpriteCoverage
	doc := render.CoverageSVG(sc.Width(), sc.Height(), sc.IsForeground, candidates, result.SpriteIndices,
		sc.SpriteWidth, sc.SpriteHeight, render.DefaultSVGOptions())

	if err := os.WriteFile(c.Out, doc, 0o644); err != nil {
		return errors.Wrapf(err, "retrotilec: writing %s", c.Out)
	}

	fmt.Printf("%s: wrote %d sprite(s) to %s\n", scenario.Name, len(result.SpriteIndices), c.Out)
	return nil
}
