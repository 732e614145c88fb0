// Package spritecoverage implements the pixels-to-fewest-sprites
// evaluator: each foreground pixel is a source that must commit to
// exactly one sprite-shaped destination slot, and pixels with more
// still-unclaimed neighbors are deferred in favor of ones with fewer,
// so the search tends to finish a sprite's neighborhood before
// starting another. A pixel already covered by a slot's committed
// sprite moves in for free; an empty slot is scored by how many of the
// pixel's remaining neighbors a candidate sprite would also claim.
package spritecoverage

import (
	"go.uber.org/zap"

	"github.com/nesforge/retrotile/pkg/bitset"
	"github.com/nesforge/retrotile/pkg/solver"
)

const (
	// scorePenaltyPerRemainingAdjacency defers pixels that still have
	// many unclaimed neighbors, so densely connected regions get
	// solved after sparser ones.
	scorePenaltyPerRemainingAdjacency = 10000

	// scoreBonusPerPixelAdded favors sprites that claim more of a
	// pixel's remaining neighbors in one move.
	scoreBonusPerPixelAdded = -1
)

// Position is a candidate sprite's upper-left corner in image
// coordinates. Sprites may sit partially off-canvas, since an optimal
// tiling is not guaranteed to align with the source image's edges.
type Position struct {
	X, Y int
}

// Candidate is one possible sprite placement together with the set of
// foreground pixel indices it would cover.
type Candidate struct {
	Pos      Position
	Coverage *bitset.BitSet
}

// IndexForegroundPixels scans a foreground mask (true where a pixel is
// not the clear color) and assigns each foreground pixel a stable,
// zero-based coverage-bitset index in raster order.
func IndexForegroundPixels(width, height int, isForeground func(x, y int) bool) map[Position]int {
	indices := make(map[Position]int)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if isForeground(x, y) {
				indices[Position{X: x, Y: y}] = len(indices)
			}
		}
	}
	return indices
}

// EnumerateCandidates builds every sprite placement of size
// spriteWidth x spriteHeight that covers at least one foreground
// pixel. Placements extend one sprite dimension beyond every canvas
// edge, since a tiling aligned past the border can still be optimal.
func EnumerateCandidates(pixelIndices map[Position]int, imageWidth, imageHeight, spriteWidth, spriteHeight int) []Candidate {
	numPixels := len(pixelIndices)
	var candidates []Candidate

	for yStart := -spriteHeight + 1; yStart < imageHeight+spriteHeight-1; yStart++ {
		for xStart := -spriteWidth + 1; xStart < imageWidth+spriteWidth-1; xStart++ {
			coverage := bitset.New(numPixels)
			coversAny := false
			for y := yStart; y < yStart+spriteHeight; y++ {
				for x := xStart; x < xStart+spriteWidth; x++ {
					if idx, ok := pixelIndices[Position{X: x, Y: y}]; ok {
						coverage.Set(idx)
						coversAny = true
					}
				}
			}
			if coversAny {
				candidates = append(candidates, Candidate{Pos: Position{X: xStart, Y: yStart}, Coverage: coverage})
			}
		}
	}
	return candidates
}

// adjacencyBitsets returns, per pixel index, the set of other pixel
// indices immediately above, below, left, or right of it in image
// space — the neighbor set a committed sprite can "claim away" as it
// covers that pixel.
func adjacencyBitsets(pixelIndices map[Position]int, numPixels int) []*bitset.BitSet {
	adjacency := make([]*bitset.BitSet, numPixels)
	for i := range adjacency {
		adjacency[i] = bitset.New(numPixels)
	}
	offsets := []Position{{X: -1, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: -1}, {X: 0, Y: 1}}
	for pos, idx := range pixelIndices {
		for _, off := range offsets {
			if neighborIdx, ok := pixelIndices[Position{X: pos.X + off.X, Y: pos.Y + off.Y}]; ok {
				adjacency[idx].Set(neighborIdx)
			}
		}
	}
	return adjacency
}

// Source is a single foreground pixel: which sprites could possibly
// cover it, which other pixels it's adjacent to, and the shared table
// of what every candidate sprite covers.
type Source struct {
	// PotentialSprites is the set of candidate sprite indices (into
	// SpriteCoverages) that include this pixel.
	PotentialSprites *bitset.BitSet

	// Adjacency is the set of pixel indices immediately neighboring
	// this one.
	Adjacency *bitset.BitSet

	// SpriteCoverages is shared across every pixel's Source: index i
	// is the pixel-coverage bitset of candidate sprite i.
	SpriteCoverages []*bitset.BitSet
}

// Destination is a single output sprite slot: empty until some pixel
// commits a sprite into it, after which every pixel that sprite covers
// may move in for free.
type Destination struct {
	SpriteIndex *int
}

// NewDestination returns an empty sprite slot.
func NewDestination() *Destination {
	return &Destination{}
}

func (d *Destination) Clone() any {
	if d.SpriteIndex == nil {
		return &Destination{}
	}
	idx := *d.SpriteIndex
	return &Destination{SpriteIndex: &idx}
}

// ChangeList is the evaluator's Move.ChangeList payload: the sprite a
// pixel is proposing to commit into an empty slot, and which of its
// still-unclaimed neighbors that sprite would also claim.
type ChangeList struct {
	DestSpriteIndex int
	AddedPixels     *bitset.BitSet
}

// Kind is the stateless solver.EvaluatorKind for fewest-sprite
// coverage.
type Kind struct{}

func (Kind) NewEvaluator(sourceIndex int, source any) solver.Evaluator {
	src := source.(*Source)
	return &evaluator{
		sourceIndex:       sourceIndex,
		source:            src,
		moves:             map[int][]potentialMove{},
		remainingAdjacent: src.Adjacency.Clone(),
	}
}

func (Kind) ApplyChanges(source, destination any, changeList any) {
	cl, _ := changeList.(*ChangeList)
	if cl == nil {
		return
	}
	dest := destination.(*Destination)
	idx := cl.DestSpriteIndex
	dest.SpriteIndex = &idx
}

// IsDestinationEmpty reports whether a sprite slot has no committed
// sprite yet.
func (Kind) IsDestinationEmpty(destination any) bool {
	return destination.(*Destination).SpriteIndex == nil
}

type potentialMove struct {
	move      solver.Move
	baseScore solver.Score
}

type evaluator struct {
	sourceIndex int
	source      *Source
	// moves caches, per destination index, every way this pixel can
	// currently move there, or a nil (present-but-empty) entry once
	// determined infeasible — sticky, since a pixel that can't move
	// into a slot now never becomes able to later.
	moves map[int][]potentialMove

	// remainingAdjacent tracks which of this pixel's neighbors haven't
	// yet been claimed by some other, already-committed sprite.
	remainingAdjacent *bitset.BitSet
}

func (e *evaluator) UpdateMovesForDestination(destIndex int, destination any) {
	if existing, seen := e.moves[destIndex]; seen && existing == nil {
		return
	}
	e.moves[destIndex] = nil

	dest := destination.(*Destination)

	var changeLists []*ChangeList
	if dest.SpriteIndex == nil {
		changeLists = e.changesForNewDestination()
	} else {
		changeLists = e.changesForCommittedDestination(*dest.SpriteIndex)
	}
	if changeLists == nil {
		return
	}

	moves := make([]potentialMove, 0, len(changeLists))
	for _, cl := range changeLists {
		move := solver.Move{SourceIndex: e.sourceIndex, DestIndex: destIndex, ChangeList: cl}
		moves = append(moves, potentialMove{move: move, baseScore: e.scoreForChanges(cl)})
	}
	e.moves[destIndex] = moves
}

// changesForCommittedDestination checks whether an occupied slot's
// sprite is relevant to this pixel at all. If it already covers the
// pixel, moving in is free. If not, but the sprite could still have
// covered it, committing it permanently removes any of this pixel's
// remaining neighbors it also covers — a side effect with no move of
// its own.
func (e *evaluator) changesForCommittedDestination(spriteIdx int) []*ChangeList {
	if !e.source.PotentialSprites.IsSet(spriteIdx) {
		return nil
	}
	coverage := e.source.SpriteCoverages[spriteIdx]
	if coverage.IsSet(e.sourceIndex) {
		return []*ChangeList{nil}
	}

	claimed := e.remainingAdjacent.Difference(coverage)
	e.remainingAdjacent.IntersectWith(claimed)
	return nil
}

// changesForNewDestination proposes every candidate sprite covering
// this pixel as a way to fill an empty slot.
func (e *evaluator) changesForNewDestination() []*ChangeList {
	var changeLists []*ChangeList
	spriteIdx, ok := e.source.PotentialSprites.NextSet(0)
	for ok {
		coverage := e.source.SpriteCoverages[spriteIdx]
		added := e.remainingAdjacent.Intersect(coverage)
		changeLists = append(changeLists, &ChangeList{DestSpriteIndex: spriteIdx, AddedPixels: added})
		spriteIdx, ok = e.source.PotentialSprites.NextSet(spriteIdx + 1)
	}
	return changeLists
}

func (e *evaluator) scoreForChanges(cl *ChangeList) solver.Score {
	if cl == nil {
		return solver.ScoreFree
	}
	numAdjacent := int64(e.remainingAdjacent.CountSet())
	numAdded := int64(cl.AddedPixels.CountSet())
	return solver.Score(numAdjacent*scorePenaltyPerRemainingAdjacency + numAdded*scoreBonusPerPixelAdded)
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

// Result is the best tiling found: the candidate indices (into the
// slice passed to Cover) whose sprites together cover every foreground
// pixel.
type Result struct {
	SpriteIndices []int
}

// Cover drives the fewest-sprites search over every foreground pixel
// indexed by pixelIndices until either the search is exhausted or
// maxSolutions complete solutions have been produced, keeping the
// solution that commits the fewest distinct sprites. It returns false
// if no solution covers every foreground pixel.
func Cover(pixelIndices map[Position]int, candidates []Candidate, maxSolutions int, logger *zap.Logger) (Result, bool) {
	numPixels := len(pixelIndices)
	if numPixels == 0 {
		return Result{}, true
	}

	coverages := make([]*bitset.BitSet, len(candidates))
	for i, c := range candidates {
		coverages[i] = c.Coverage
	}

	potentialSprites := make([]*bitset.BitSet, numPixels)
	for i := range potentialSprites {
		potentialSprites[i] = bitset.New(len(candidates))
	}
	for spriteIdx, c := range candidates {
		pixelIdx, ok := c.Coverage.NextSet(0)
		for ok {
			potentialSprites[pixelIdx].Set(spriteIdx)
			pixelIdx, ok = c.Coverage.NextSet(pixelIdx + 1)
		}
	}

	adjacency := adjacencyBitsets(pixelIndices, numPixels)

	sources := make([]any, numPixels)
	for i := 0; i < numPixels; i++ {
		sources[i] = &Source{
			PotentialSprites: potentialSprites[i],
			Adjacency:        adjacency[i],
			SpriteCoverages:  coverages,
		}
	}

	destinations := make([]any, numPixels)
	for i := range destinations {
		destinations[i] = NewDestination()
	}

	cs := solver.New(sources, destinations, Kind{}, logger)

	var best Result
	found := false
	seen := 0

	for len(cs.Solutions()) < maxSolutions && !cs.IsExhausted() {
		cs.Update()

		solutions := cs.Solutions()
		if len(solutions) == seen {
			continue
		}
		solution := solutions[seen]
		seen = len(solutions)

		uniqueSprites := uniqueSpriteIndices(solution)
		if !found || len(uniqueSprites) < len(best.SpriteIndices) {
			best = Result{SpriteIndices: uniqueSprites}
			found = true
		}
	}

	return best, found
}

// uniqueSpriteIndices returns the distinct sprite indices a solution
// actually commits: a free move (nil change list) rides along on a
// sprite some earlier move in the same solution already committed, so
// it doesn't introduce a new one.
func uniqueSpriteIndices(solution []solver.Move) []int {
	seen := map[int]struct{}{}
	var indices []int
	for _, m := range solution {
		cl, ok := m.ChangeList.(*ChangeList)
		if !ok || cl == nil {
			continue
		}
		if _, dup := seen[cl.DestSpriteIndex]; !dup {
			seen[cl.DestSpriteIndex] = struct{}{}
			indices = append(indices, cl.DestSpriteIndex)
		}
	}
	return indices
}
