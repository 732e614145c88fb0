// Package intervaltobitset implements the evaluator that packs
// interval demands (a contiguous run of bits somewhere within a
// window) into a destination BitSet, preferring placements that leave
// the largest remaining contiguous fragment so that later, larger
// demands still have somewhere to go.
package intervaltobitset

import (
	"github.com/nesforge/retrotile/pkg/bitset"
	"github.com/nesforge/retrotile/pkg/interval"
	"github.com/nesforge/retrotile/pkg/solver"
)

const (
	// scoreAdjustPerIntervalItem rewards longer demands with a better
	// (lower) score so they are prioritized while more destinations
	// are still open to them.
	scoreAdjustPerIntervalItem = -100

	// scorePerPossibleDestination penalizes demands that could fit in
	// many places within their window — those are cheap to delay,
	// whereas tightly constrained demands should be placed first.
	scorePerPossibleDestination = 100000

	// scorePerFragmentSize rewards placements that leave a larger
	// contiguous fragment behind.
	scorePerFragmentSize = -1
)

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

// ChangeList is the evaluator's Move.ChangeList payload: the window it
// was found within, and the exact block chosen inside that window.
type ChangeList struct {
	PossibleInterval interval.Interval
	ChosenInterval   interval.Interval
}

// Kind is the stateless solver.EvaluatorKind for interval packing.
type Kind struct{}

func (Kind) NewEvaluator(sourceIndex int, source any) solver.Evaluator {
	return &evaluator{
		sourceIndex: sourceIndex,
		source:      source.(interval.Interval),
		moves:       map[int][]potentialMove{},
	}
}

func (Kind) ApplyChanges(source, destination any, changeList any) {
	dest := destination.(*Destination)
	cl := changeList.(ChangeList)
	for i := cl.ChosenInterval.Begin; i <= cl.ChosenInterval.End; i++ {
		dest.Bits.Set(i)
	}
}

func (Kind) IsDestinationEmpty(destination any) bool {
	return destination.(*Destination).Bits.AllClear()
}

type potentialMove struct {
	move             solver.Move
	baseScore        solver.Score
	smallestFragment int
	largestFragment  int
}

type evaluator struct {
	sourceIndex int
	source      interval.Interval
	// moves caches, per destination index, every placement this
	// interval could take there, or a nil (present-but-empty) entry
	// once we've determined none fit.
	moves map[int][]potentialMove
}

func (e *evaluator) UpdateMovesForDestination(destIndex int, destination any) {
	if existing, seen := e.moves[destIndex]; seen && existing == nil {
		return
	}
	e.moves[destIndex] = nil

	dest := destination.(*Destination)
	candidates := e.changesToFit(destIndex, dest)
	if len(candidates) > 0 {
		e.moves[destIndex] = candidates
	}
}

func (e *evaluator) BestMoves() (solver.Score, []solver.Move) {
	best := solver.ScoreInvalid
	var bestMoves []solver.Move

	for _, candidates := range e.moves {
		for _, pm := range candidates {
			score := pm.baseScore.Add(int64(pm.largestFragment * scorePerFragmentSize))
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

// changesToFit scans destIndex's destination for every maximal run of
// clear bits overlapping the source's window that is at least as long
// as the source, and proposes the best placement within each.
func (e *evaluator) changesToFit(destIndex int, destination *Destination) []potentialMove {
	var candidates []potentialMove

	bits := destination.Bits
	rangeStart, rangeEnd := e.source.Begin, e.source.End

	currClear, ok := bits.NextUnset(rangeStart)
	for ok && currClear <= rangeEnd {
		nextSet, found := bits.NextSet(currClear)
		if !found {
			nextSet = bits.Len()
		}
		if nextSet > rangeEnd {
			nextSet = rangeEnd + 1
		}

		possible := interval.FromFixedRange(currClear, nextSet-1)
		if possible.Length >= e.source.Length {
			move, smallest, largest := e.bestChangeForPossibleInterval(destIndex, possible, bits)
			candidates = append(candidates, potentialMove{
				move:             move,
				baseScore:        scoreForChanges(e.source, possible),
				smallestFragment: smallest,
				largestFragment:  largest,
			})
		}

		currClear, ok = bits.NextUnset(nextSet)
	}

	return candidates
}

// bestChangeForPossibleInterval picks the end of possible to align
// the source's block against, whichever side is closer to existing
// content, to minimize the fragment it introduces.
func (e *evaluator) bestChangeForPossibleInterval(destIndex int, possible interval.Interval, bits *bitset.BitSet) (solver.Move, int, int) {
	numBitsToLeft := 0
	if leftSet, found := bits.PrevSet(possible.Begin); found {
		numBitsToLeft = possible.Begin - leftSet - 1
	}

	numBitsToRight := bits.Len() - possible.End - 1
	if rightSet, found := bits.NextSet(possible.End); found {
		numBitsToRight = rightSet - possible.End - 1
	}

	var chosen interval.Interval
	var smallest, largest int
	if numBitsToLeft <= numBitsToRight {
		chosen = interval.FixedLengthAtStart(possible.Begin, e.source.Length)
		smallest = numBitsToLeft
		largest = numBitsToRight + (possible.Length - e.source.Length)
	} else {
		chosen = interval.FixedLengthFromEnd(possible.End, e.source.Length)
		smallest = numBitsToRight
		largest = numBitsToLeft + (possible.Length - e.source.Length)
	}

	cl := ChangeList{PossibleInterval: possible, ChosenInterval: chosen}
	move := solver.Move{SourceIndex: e.sourceIndex, DestIndex: destIndex, ChangeList: cl}
	return move, smallest, largest
}

func scoreForChanges(source interval.Interval, possible interval.Interval) solver.Score {
	score := solver.Score(source.Length * scoreAdjustPerIntervalItem)
	numDestinations := possible.Length - source.Length
	score = score.Add(int64(numDestinations * scorePerPossibleDestination))
	return score
}
