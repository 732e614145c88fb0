// Package render draws a sprite-coverage solution as an SVG for
// visual debugging: the foreground mask as background pixels, and the
// chosen sprite rectangles outlined on top.
package render

import (
	"bytes"
	"fmt"

	svg "github.com/ajstarks/svgo"

	"github.com/nesforge/retrotile/pkg/evaluators/spritecoverage"
)

// SVGOptions configures the rendered canvas.
type SVGOptions struct {
	PixelSize int // Size in pixels of one source pixel's square, default 16
	Margin    int // Canvas margin in pixels, default 20
}

// DefaultSVGOptions returns sensible defaults.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{PixelSize: 16, Margin: 20}
}

// CoverageSVG renders a foreground mask of maskWidth x maskHeight
// pixels and outlines the candidate sprites (each spriteWidth x
// spriteHeight) named in chosen, labeling each with its position in
// chosen. Candidates not named in chosen are not drawn.
func CoverageSVG(maskWidth, maskHeight int, isForeground func(x, y int) bool, candidates []spritecoverage.Candidate, chosen []int, spriteWidth, spriteHeight int, opts SVGOptions) []byte {
	if opts.PixelSize <= 0 {
		opts.PixelSize = 16
	}
	if opts.Margin <= 0 {
		opts.Margin = 20
	}

	width := maskWidth*opts.PixelSize + 2*opts.Margin
	height := maskHeight*opts.PixelSize + 2*opts.Margin

	buf := new(bytes.Buffer)
	canvas := svg.New(buf)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:#1a1a2e")

	drawMask(canvas, maskWidth, maskHeight, isForeground, opts)
	drawSprites(canvas, candidates, chosen, spriteWidth, spriteHeight, opts)

	canvas.End()
	return buf.Bytes()
}

func drawMask(canvas *svg.SVG, maskWidth, maskHeight int, isForeground func(x, y int) bool, opts SVGOptions) {
	for y := 0; y < maskHeight; y++ {
		for x := 0; x < maskWidth; x++ {
			if !isForeground(x, y) {
				continue
			}
			px := opts.Margin + x*opts.PixelSize
			py := opts.Margin + y*opts.PixelSize
			canvas.Rect(px, py, opts.PixelSize, opts.PixelSize, "fill:#48bb78")
		}
	}
}

func drawSprites(canvas *svg.SVG, candidates []spritecoverage.Candidate, chosen []int, spriteWidth, spriteHeight int, opts SVGOptions) {
	for i, idx := range chosen {
		if idx < 0 || idx >= len(candidates) {
			continue
		}
		c := candidates[idx]
		px := opts.Margin + c.Pos.X*opts.PixelSize
		py := opts.Margin + c.Pos.Y*opts.PixelSize
		w := spriteWidth * opts.PixelSize
		h := spriteHeight * opts.PixelSize
		canvas.Rect(px, py, w, h, "fill:none;stroke:#f56565;stroke-width:2")
		canvas.Text(px+2, py+12, fmt.Sprintf("%d", i),
			"font-size:10px;font-family:monospace;fill:#f56565")
	}
}
