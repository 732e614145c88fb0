package main

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nesforge/retrotile/pkg/config"
	"github.com/nesforge/retrotile/pkg/evaluators/spritecoverage"
)

// coverSpritesCmd drives the spritecoverage evaluator over a
// scenario's foreground mask, reporting the fewest sprites found to
// cover it.
type coverSpritesCmd struct {
	Scenario string `arg:"" help:"Path to a scenario YAML file with a sprite_coverage block."`
}

func (c *coverSpritesCmd) Run(logger *zap.Logger) error {
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
		fmt.Printf("%s: no covering solution found\n", scenario.Name)
		return nil
	}

	fmt.Printf("%s: %d sprite(s) cover the mask\n", scenario.Name, len(result.SpriteIndices))
	for _, idx := range result.SpriteIndices {
		pos := candidates[idx].Pos
		fmt.Printf("  sprite at (%d, %d)\n", pos.X, pos.Y)
	}
	return nil
}

// coverageCandidates builds the foreground pixel index and candidate
// sprite placements for a scenario's sprite_coverage block, shared by
// the cover-sprites and render-svg subcommands.
func coverageCandidates(scenario *config.Scenario) (map[spritecoverage.Position]int, []spritecoverage.Candidate, error) {
	if scenario.SpriteCoverage == nil {
		return nil, nil, errors.New("retrotilec: scenario has no sprite_coverage block")
	}
	sc := scenario.SpriteCoverage

	width, height := sc.Width(), sc.Height()
	pixelIndices := spritecoverage.IndexForegroundPixels(width, height, sc.IsForeground)
	candidates := spritecoverage.EnumerateCandidates(pixelIndices, width, height, sc.SpriteWidth, sc.SpriteHeight)
	return pixelIndices, candidates, nil
}
