package main

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nesforge/retrotile/pkg/colorspec"
	"github.com/nesforge/retrotile/pkg/config"
	"github.com/nesforge/retrotile/pkg/evaluators/colortocolor"
	"github.com/nesforge/retrotile/pkg/solver"
)

// runCmd drives the colortocolor evaluator over a scenario's color
// sources and a freshly built set of empty staging slots, reporting
// every solution the search finds.
type runCmd struct {
	Scenario string `arg:"" help:"Path to a scenario YAML file with a color_to_color block."`
}

func (c *runCmd) Run(logger *zap.Logger) error {
	scenario, err := config.Load(c.Scenario)
	if err != nil {
		return err
	}
	if scenario.ColorToColor == nil {
		return errors.Errorf("retrotilec: %s has no color_to_color block", c.Scenario)
	}

	sourceEntries, err := scenario.ColorToColor.ColorEntries()
	if err != nil {
		return err
	}

	sources := make([]any, len(sourceEntries))
	for i, e := range sourceEntries {
		sources[i] = e
	}

	destinations := make([]any, scenario.ColorToColor.NumDestinations)
	for i := range destinations {
		destinations[i] = colorspec.NewColorEntry()
	}

	cs := solver.New(sources, destinations, colortocolor.Kind{}, logger)
	for !cs.IsExhausted() {
		cs.Update()
	}

	solutions := cs.Solutions()
	fmt.Printf("%s: %d source(s) into %d slot(s), %d solution(s) found\n",
		scenario.Name, len(sources), len(destinations), len(solutions))

	for i, solution := range solutions {
		fmt.Printf("solution %d:\n", i)
		for _, m := range solution {
			fmt.Printf("  source %d -> slot %d\n", m.SourceIndex, m.DestIndex)
		}
	}
	return nil
}
