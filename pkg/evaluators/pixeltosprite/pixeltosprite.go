// Package pixeltosprite implements the pixel-to-sprite rasterizer: a
// pixel may only move into a sprite-coverage destination once every
// pixel before it in raster order has already committed somewhere. A
// pixel that isn't yet up gets a placeholder move scored at
// ScoreInvalid so the search keeps it alive without ever selecting it;
// once it is up, every sprite that could cover it becomes a candidate,
// ordered by how little of the destination it would overlap.
package pixeltosprite

import (
	"github.com/nesforge/retrotile/pkg/bitset"
	"github.com/nesforge/retrotile/pkg/solver"
)

// Source is a single pixel: which sprites could possibly cover it, and
// the shared table of what every candidate sprite covers.
type Source struct {
	// PotentialSprites is the set of candidate sprite indices (into
	// SpriteCoverages) that include this pixel.
	PotentialSprites *bitset.BitSet

	// SpriteCoverages is shared across every pixel's Source: index i
	// is the pixel-coverage bitset of candidate sprite i.
	SpriteCoverages []*bitset.BitSet
}

// Destination is a rasterized output's growing pixel-coverage bitset.
type Destination struct {
	Bits *bitset.BitSet
}

// NewDestination returns an empty Destination covering numPixels
// pixel indices.
func NewDestination(numPixels int) *Destination {
	return &Destination{Bits: bitset.New(numPixels)}
}

func (d *Destination) Clone() any {
	return &Destination{Bits: d.Bits.Clone()}
}

// ChangeList is the evaluator's Move.ChangeList payload. A Move whose
// ChangeList is a plain nil is a free already-covered move; Invalid
// marks a not-our-turn placeholder that must never be applied.
type ChangeList struct {
	Invalid          bool
	DestSpriteIndex  int
	AddedPixels      *bitset.BitSet
	OverlappedPixels *bitset.BitSet
}

// Kind is the stateless solver.EvaluatorKind for raster-gated sprite
// assignment.
type Kind struct{}

func (Kind) NewEvaluator(sourceIndex int, source any) solver.Evaluator {
	return &evaluator{
		sourceIndex: sourceIndex,
		source:      source.(*Source),
		moves:       map[int][]potentialMove{},
	}
}

func (Kind) ApplyChanges(source, destination any, changeList any) {
	if changeList == nil {
		return
	}
	cl := changeList.(*ChangeList)
	if cl.Invalid {
		panic("pixeltosprite: attempted to apply a move for a pixel that was not next in raster order")
	}
	dest := destination.(*Destination)
	dest.Bits.UnionWith(cl.AddedPixels)
}

// IsDestinationEmpty always reports false: a rasterized pixel-coverage
// output is always discrete, never empty in the sense the engine cares
// about.
func (Kind) IsDestinationEmpty(destination any) bool {
	return false
}

type potentialMove struct {
	move      solver.Move
	baseScore solver.Score
}

type evaluator struct {
	sourceIndex int
	source      *Source
	// moves caches, per destination index, every way this pixel can
	// currently move there. A destination index holding the single
	// not-our-turn placeholder is left alone on subsequent dirty
	// passes, matching the upstream evaluator's "build it once" rule.
	moves map[int][]potentialMove
}

func (e *evaluator) UpdateMovesForDestination(destIndex int, destination any) {
	dest := destination.(*Destination)

	if dest.Bits.IsSet(e.sourceIndex) {
		move := solver.Move{SourceIndex: e.sourceIndex, DestIndex: destIndex, ChangeList: nil}
		e.moves[destIndex] = []potentialMove{{move: move, baseScore: solver.ScoreFree}}
		return
	}

	nextPixelIdx, ok := dest.Bits.NextUnset(0)
	if !ok || nextPixelIdx != e.sourceIndex {
		if _, seen := e.moves[destIndex]; seen {
			return
		}
		invalid := &ChangeList{Invalid: true}
		move := solver.Move{SourceIndex: e.sourceIndex, DestIndex: destIndex, ChangeList: invalid}
		e.moves[destIndex] = []potentialMove{{move: move, baseScore: solver.ScoreInvalid}}
		return
	}

	e.moves[destIndex] = e.candidateSpriteMoves(destIndex, dest)
}

// candidateSpriteMoves enumerates every sprite that could cover this
// pixel, ordered by ascending overlap with what the destination
// already holds — testing found this a better search-order heuristic
// than ordering by pixels newly added.
func (e *evaluator) candidateSpriteMoves(destIndex int, dest *Destination) []potentialMove {
	type ranked struct {
		cl      *ChangeList
		overlap int
	}
	var candidates []ranked

	spriteIdx, ok := e.source.PotentialSprites.NextSet(0)
	for ok {
		coverage := e.source.SpriteCoverages[spriteIdx]

		overlap := coverage.Intersect(dest.Bits)
		added := coverage.Difference(dest.Bits)
		added.IntersectWith(coverage)

		candidates = append(candidates, ranked{
			cl: &ChangeList{
				DestSpriteIndex:  spriteIdx,
				AddedPixels:      added,
				OverlappedPixels: overlap,
			},
			overlap: overlap.CountSet(),
		})

		spriteIdx, ok = e.source.PotentialSprites.NextSet(spriteIdx + 1)
	}

	moves := make([]potentialMove, 0, len(candidates))
	for len(candidates) > 0 {
		bestIdx := 0
		for i, c := range candidates {
			if c.overlap < candidates[bestIdx].overlap {
				bestIdx = i
			}
		}
		cl := candidates[bestIdx].cl
		move := solver.Move{SourceIndex: e.sourceIndex, DestIndex: destIndex, ChangeList: cl}
		moves = append(moves, potentialMove{move: move, baseScore: 0})
		candidates = append(candidates[:bestIdx], candidates[bestIdx+1:]...)
	}
	return moves
}

func (e *evaluator) BestMoves() (solver.Score, []solver.Move) {
	best := solver.ScoreInvalid
	var bestMoves []solver.Move

	for _, pms := range e.moves {
		for _, pm := range pms {
			switch {
			case pm.baseScore < best:
				best = pm.baseScore
				bestMoves = []solver.Move{pm.move}
			case pm.baseScore == best:
				bestMoves = append(bestMoves, pm.move)
			}
		}
	}
	return best, bestMoves
}
