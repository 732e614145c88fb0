// Package colortocolor implements the evaluator that merges color
// sources into staging ColorEntry slots: a source fits a destination
// slot if every intention it asserts either matches what the slot
// already holds or fills a gap the slot hasn't claimed yet.
package colortocolor

import (
	"sort"

	"github.com/nesforge/retrotile/pkg/colorspec"
	"github.com/nesforge/retrotile/pkg/solver"
)

// Per-intention cost of adding that intention to a destination that
// doesn't yet have it. Color is cheap; claiming a name is expensive,
// since names must be globally unique and committing one forecloses
// every other source that might have wanted it.
const (
	costAddColor = 1
	costAddSlot  = 100
	costAddName  = 1000
)

var intentionCost = map[colorspec.IntentionKey]int64{
	colorspec.IntentionColor: costAddColor,
	colorspec.IntentionSlot:  costAddSlot,
	colorspec.IntentionName:  costAddName,
}

// scoreAdjustOnlyOneMove biases a source toward committing as soon as
// it has exactly one destination it could possibly move into, rather
// than leaving it to tie-break against alternatives that might vanish
// once other sources commit first.
const scoreAdjustOnlyOneMove = -10000

// change is one intention this move would assign on the destination.
type change struct {
	Key   colorspec.IntentionKey
	Value any
}

// ChangeList is the colortocolor evaluator's Move.ChangeList payload:
// the intentions a move would newly assign on its destination.
type ChangeList []change

// Kind is the stateless solver.EvaluatorKind for color-to-color
// merging.
type Kind struct{}

func (Kind) NewEvaluator(sourceIndex int, source any) solver.Evaluator {
	return &evaluator{
		sourceIndex: sourceIndex,
		source:      source.(*colorspec.ColorEntry),
		moves:       map[int]*potentialMove{},
	}
}

func (Kind) ApplyChanges(source, destination any, changeList any) {
	dest := destination.(*colorspec.ColorEntry)
	for _, c := range changeList.(ChangeList) {
		if _, err := dest.Intentions.TrySet(c.Key, c.Value); err != nil {
			panic(err)
		}
	}
}

func (Kind) IsDestinationEmpty(destination any) bool {
	return destination.(*colorspec.ColorEntry).IsEmpty()
}

type potentialMove struct {
	move      solver.Move
	baseScore solver.Score
}

type evaluator struct {
	sourceIndex int
	source      *colorspec.ColorEntry
	// moves caches, per destination index, the best move into that
	// destination, or nil once we've determined it can never fit.
	moves map[int]*potentialMove
}

func (e *evaluator) UpdateMovesForDestination(destIndex int, destination any) {
	if existing, seen := e.moves[destIndex]; seen && existing == nil {
		return
	}
	e.moves[destIndex] = nil

	dest := destination.(*colorspec.ColorEntry)
	changes, ok := changesToFit(e.source, dest)
	if !ok {
		return
	}

	move := solver.Move{SourceIndex: e.sourceIndex, DestIndex: destIndex, ChangeList: changes}
	e.moves[destIndex] = &potentialMove{move: move, baseScore: scoreForChanges(changes)}
}

func (e *evaluator) BestMoves() (solver.Score, []solver.Move) {
	var indices []int
	numMoves := 0
	for idx, pm := range e.moves {
		if pm != nil {
			indices = append(indices, idx)
			numMoves++
		}
	}
	sort.Ints(indices)
	onlyOneMove := numMoves == 1

	best := solver.ScoreInvalid
	var bestMoves []solver.Move
	for _, idx := range indices {
		score := e.moves[idx].baseScore
		if onlyOneMove {
			score = score.Add(scoreAdjustOnlyOneMove)
		}
		switch {
		case score < best:
			best = score
			bestMoves = []solver.Move{e.moves[idx].move}
		case score == best:
			bestMoves = append(bestMoves, e.moves[idx].move)
		}
	}
	return best, bestMoves
}

// changesToFit reports the intentions source would need to newly
// assign on destination, or ok=false if source cannot land there at
// all.
func changesToFit(source, destination *colorspec.ColorEntry) (ChangeList, bool) {
	var changes ChangeList

	srcColor := source.Intentions.Get(colorspec.IntentionColor)
	destColor := destination.Intentions.Get(colorspec.IntentionColor)
	if srcColor != nil {
		if destColor == nil {
			changes = append(changes, change{colorspec.IntentionColor, srcColor})
		} else if srcColor != destColor {
			return nil, false
		}
	}

	srcSlot := source.Intentions.Get(colorspec.IntentionSlot)
	destSlot := destination.Intentions.Get(colorspec.IntentionSlot)
	if srcSlot != nil {
		if destSlot == nil {
			changes = append(changes, change{colorspec.IntentionSlot, srcSlot})
		} else if srcSlot != destSlot {
			return nil, false
		}
	}

	srcName := source.Intentions.Get(colorspec.IntentionName)
	destName := destination.Intentions.Get(colorspec.IntentionName)
	if srcName == nil {
		if destName != nil {
			// Names are unique: a nameless source cannot land on a
			// named slot.
			return nil, false
		}
	} else if destName == nil {
		// A named source may only claim a slot that is otherwise
		// completely unclaimed.
		if destSlot != nil || destColor != nil {
			return nil, false
		}
		changes = append(changes, change{colorspec.IntentionName, srcName})
	} else if srcName != destName {
		return nil, false
	}

	return changes, true
}

func scoreForChanges(changes ChangeList) solver.Score {
	if len(changes) == 0 {
		return solver.ScoreFree
	}
	var score solver.Score
	for _, c := range changes {
		score = score.Add(intentionCost[c.Key])
	}
	return score
}
