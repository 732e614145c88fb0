// Package remaptopalette implements the evaluator that fits a whole
// color remap (a set of colors that must land together) into a
// staging palette. Unlike the other evaluators, fitting isn't a
// single comparison: it runs a nested colortocolor solve to
// exhaustion and turns every solution that solve finds into one
// candidate move.
package remaptopalette

import (
	"sort"

	"github.com/nesforge/retrotile/pkg/colorspec"
	"github.com/nesforge/retrotile/pkg/evaluators/colortocolor"
	"github.com/nesforge/retrotile/pkg/solver"
)

const (
	// scoreAdjustOnlyOneMove biases a remap toward committing as soon
	// as it has exactly one destination it could possibly land in.
	scoreAdjustOnlyOneMove = -10000

	// scoreAdjustEachColorInRemap gives larger remaps a slight edge,
	// since they have fewer alternative palettes able to host them.
	scoreAdjustEachColorInRemap = -1

	// scoreAdjustEachColorMatching rewards a landing where more of the
	// remap's colors already match what the staging palette holds,
	// requiring fewer newly-committed intentions.
	scoreAdjustEachColorMatching = -100
)

// ColorRemap is a set of colors that must all land in the same staging
// palette together. ForcedPaletteIndex, if non-nil, restricts the
// remap to a single destination index.
type ColorRemap struct {
	ForcedPaletteIndex *int
	ColorEntries       []*colorspec.ColorEntry
}

// StagingPalette is a destination palette: a fixed-size set of color
// slots that remaps are fit into.
type StagingPalette struct {
	ColorEntries []*colorspec.ColorEntry
}

// NewStagingPalette returns a palette of numSlots empty color slots.
func NewStagingPalette(numSlots int) *StagingPalette {
	entries := make([]*colorspec.ColorEntry, numSlots)
	for i := range entries {
		entries[i] = colorspec.NewColorEntry()
	}
	return &StagingPalette{ColorEntries: entries}
}

func (p *StagingPalette) Clone() any {
	entries := make([]*colorspec.ColorEntry, len(p.ColorEntries))
	for i, e := range p.ColorEntries {
		entries[i] = e.Clone().(*colorspec.ColorEntry)
	}
	return &StagingPalette{ColorEntries: entries}
}

// ChangeList is the evaluator's Move.ChangeList payload: one complete
// colortocolor solution mapping every color in the remap into a slot
// of the destination palette.
type ChangeList struct {
	ColorIntoColorMoves []solver.Move
}

// Kind is the stateless solver.EvaluatorKind for remap-to-palette
// fitting.
type Kind struct{}

func (Kind) NewEvaluator(sourceIndex int, source any) solver.Evaluator {
	return &evaluator{
		sourceIndex: sourceIndex,
		source:      source.(*ColorRemap),
		moves:       map[int][]potentialMove{},
	}
}

func (Kind) ApplyChanges(source, destination any, changeList any) {
	src := source.(*ColorRemap)
	dest := destination.(*StagingPalette)
	cl := changeList.(ChangeList)

	colorKind := colortocolor.Kind{}
	for _, m := range cl.ColorIntoColorMoves {
		colorKind.ApplyChanges(src.ColorEntries[m.SourceIndex], dest.ColorEntries[m.DestIndex], m.ChangeList)
	}
}

// IsDestinationEmpty always reports false: a staging palette is always
// fully instantiated with its slots, however empty those slots are.
func (Kind) IsDestinationEmpty(destination any) bool {
	return false
}

type potentialMove struct {
	move      solver.Move
	baseScore solver.Score
}

type evaluator struct {
	sourceIndex int
	source      *ColorRemap
	// moves caches, per destination index, every way the remap's
	// colors could be assigned into that palette, or a nil
	// (present-but-empty) entry once determined infeasible.
	moves map[int][]potentialMove
}

func (e *evaluator) UpdateMovesForDestination(destIndex int, destination any) {
	if existing, seen := e.moves[destIndex]; seen && existing == nil {
		return
	}
	e.moves[destIndex] = nil

	dest := destination.(*StagingPalette)
	candidates := e.changesToFit(destIndex, dest)
	if len(candidates) > 0 {
		e.moves[destIndex] = candidates
	}
}

func (e *evaluator) BestMoves() (solver.Score, []solver.Move) {
	onlyOneMove := e.countLiveCandidates() == 1
	numColorAdjust := solver.Score(len(e.source.ColorEntries) * scoreAdjustEachColorInRemap)

	best := solver.ScoreInvalid
	var bestMoves []solver.Move

	for _, destIndex := range e.sortedDestIndices() {
		for _, pm := range e.moves[destIndex] {
			score := pm.baseScore.Add(int64(numColorAdjust))
			if onlyOneMove {
				score = score.Add(scoreAdjustOnlyOneMove)
			}
			switch {
			case score < best:
				best = score
				bestMoves = []solver.Move{pm.move}
			case score == best:
				bestMoves = append(bestMoves, pm.move)
			}
		}
	}
	return best, bestMoves
}

func (e *evaluator) countLiveCandidates() int {
	n := 0
	for _, candidates := range e.moves {
		n += len(candidates)
	}
	return n
}

func (e *evaluator) sortedDestIndices() []int {
	indices := make([]int, 0, len(e.moves))
	for destIndex := range e.moves {
		indices = append(indices, destIndex)
	}
	sort.Ints(indices)
	return indices
}

// changesToFit rejects a destination that doesn't match a forced
// palette assignment, then runs a nested colortocolor solve of this
// remap's colors against the palette's slots to exhaustion. Every
// solution found becomes one candidate move.
func (e *evaluator) changesToFit(destIndex int, destination *StagingPalette) []potentialMove {
	if e.source.ForcedPaletteIndex != nil && *e.source.ForcedPaletteIndex != destIndex {
		return nil
	}

	colorSources := make([]any, len(e.source.ColorEntries))
	for i, c := range e.source.ColorEntries {
		colorSources[i] = c
	}
	paletteDestinations := make([]any, len(destination.ColorEntries))
	for i, c := range destination.ColorEntries {
		paletteDestinations[i] = c
	}

	nested := solver.New(colorSources, paletteDestinations, colortocolor.Kind{}, nil)
	for !nested.IsExhausted() {
		nested.Update()
	}

	solutions := nested.Solutions()
	if len(solutions) == 0 {
		return nil
	}

	candidates := make([]potentialMove, 0, len(solutions))
	for _, solution := range solutions {
		cl := ChangeList{ColorIntoColorMoves: solution}
		move := solver.Move{SourceIndex: e.sourceIndex, DestIndex: destIndex, ChangeList: cl}
		candidates = append(candidates, potentialMove{move: move, baseScore: scoreForChanges(cl)})
	}
	return candidates
}

func scoreForChanges(cl ChangeList) solver.Score {
	var score solver.Score
	for _, m := range cl.ColorIntoColorMoves {
		if len(m.ChangeList.(colortocolor.ChangeList)) == 0 {
			score = score.Add(scoreAdjustEachColorMatching)
		}
	}
	return score
}
