// Command retrotilec is a small demo CLI driving the evaluators in
// pkg/evaluators from YAML scenario files: it is not a production
// pipeline, just a way to exercise the solver end to end.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
)

type cli struct {
	Debug bool `help:"Enable verbose solver logging." short:"v"`

	Run          runCmd          `cmd:"" help:"Merge a scenario's color sources into empty staging slots."`
	CoverSprites coverSpritesCmd `cmd:"" help:"Cover a scenario's foreground mask with the fewest sprites."`
	RenderSVG    renderSVGCmd    `cmd:"" help:"Render a sprite-coverage solution to an SVG file."`
}

func newLogger(debug bool) *zap.Logger {
	if !debug {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func main() {
	var c cli
	ctx := kong.Parse(&c,
		kong.Name("retrotilec"),
		kong.Description("Demo CLI for the retrotile constraint-search evaluators."),
		kong.UsageOnError(),
	)

	logger := newLogger(c.Debug)
	defer logger.Sync() //nolint:errcheck

	err := ctx.Run(logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "retrotilec:", err)
		os.Exit(1)
	}
}
