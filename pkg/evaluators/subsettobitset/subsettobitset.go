// Package subsettobitset implements the evaluator that merges a
// source BitSet into a destination BitSet, scoring by how many new
// bits the merge would contribute. A source whose bits are already a
// subset of the destination is a free move.
package subsettobitset

import (
	"github.com/nesforge/retrotile/pkg/bitset"
	"github.com/nesforge/retrotile/pkg/solver"
)

// scoreAdjustPerBitContributed rewards merges that add more new bits,
// preferring sources that claim a lot of fresh space over ones that
// mostly overlap an already-populated destination.
const scoreAdjustPerBitContributed = -1

// Destination wraps a bitset.BitSet so it satisfies solver.Cloneable.
type Destination struct {
	Bits *bitset.BitSet
}

// NewDestination returns an empty Destination of the given width.
func NewDestination(numBits int) *Destination {
	return &Destination{Bits: bitset.New(numBits)}
}

func (d *Destination) Clone() any {
	return &Destination{Bits: d.Bits.Clone()}
}

// ChangeList is the evaluator's Move.ChangeList payload: the bits the
// merge would newly set in the destination.
type ChangeList struct {
	ChangedBits *bitset.BitSet
}

// Kind is the stateless solver.EvaluatorKind for subset merging.
type Kind struct{}

func (Kind) NewEvaluator(sourceIndex int, source any) solver.Evaluator {
	return &evaluator{
		sourceIndex: sourceIndex,
		source:      source.(*bitset.BitSet),
		moves:       map[int]*potentialMove{},
	}
}

func (Kind) ApplyChanges(source, destination any, changeList any) {
	dest := destination.(*Destination)
	cl := changeList.(ChangeList)
	dest.Bits.UnionWith(cl.ChangedBits)
}

// IsDestinationEmpty always reports false: the merged output set is
// always discrete and usable, regardless of how many bits it holds.
func (Kind) IsDestinationEmpty(destination any) bool {
	return false
}

type potentialMove struct {
	move      solver.Move
	baseScore solver.Score
}

type evaluator struct {
	sourceIndex int
	source      *bitset.BitSet
	// moves caches, per destination index, the single way this source
	// can merge there, or a nil (present-but-empty) entry once
	// determined infeasible.
	moves map[int]*potentialMove
}

func (e *evaluator) UpdateMovesForDestination(destIndex int, destination any) {
	if existing, seen := e.moves[destIndex]; seen && existing == nil {
		return
	}
	e.moves[destIndex] = nil

	dest := destination.(*Destination)
	cl := e.changesToFit(dest)

	move := solver.Move{SourceIndex: e.sourceIndex, DestIndex: destIndex, ChangeList: cl}
	score := scoreForChanges(cl)
	e.moves[destIndex] = &potentialMove{move: move, baseScore: score}
}

func (e *evaluator) BestMoves() (solver.Score, []solver.Move) {
	best := solver.ScoreInvalid
	var bestMoves []solver.Move

	for _, pm := range e.moves {
		if pm == nil {
			continue
		}
		switch {
		case pm.baseScore < best:
			best = pm.baseScore
			bestMoves = []solver.Move{pm.move}
		case pm.baseScore == best:
			bestMoves = append(bestMoves, pm.move)
		}
	}
	return best, bestMoves
}

// changesToFit computes which bits of the source aren't already set in
// the destination. A subset merge can always be made: even when it
// contributes no new bits at all, that's a valid (free) move.
func (e *evaluator) changesToFit(destination *Destination) ChangeList {
	changed := e.source.Difference(destination.Bits)
	changed.IntersectWith(e.source)
	return ChangeList{ChangedBits: changed}
}

func scoreForChanges(cl ChangeList) solver.Score {
	if cl.ChangedBits.AllClear() {
		return solver.ScoreFree
	}
	return solver.Score(cl.ChangedBits.CountSet() * scoreAdjustPerBitContributed)
}
