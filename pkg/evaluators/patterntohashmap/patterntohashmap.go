// Package patterntohashmap implements the evaluator that dedupes tile
// patterns into a shared hash map, one entry per distinct pixel
// content, recognizing a pattern under any of its allowed flips
// against hashes already present.
package patterntohashmap

import (
	"sort"

	"github.com/nesforge/retrotile/pkg/pattern"
	"github.com/nesforge/retrotile/pkg/solver"
)

const (
	// scorePenaltyPerUniqueHashOption discourages committing patterns
	// that still have many unexplored hash alternatives, so ambiguous
	// patterns are deferred while more constrained ones settle first.
	scorePenaltyPerUniqueHashOption = 10

	// scorePenaltyAddNewPattern makes matching an existing hash far
	// cheaper than introducing a brand new one.
	scorePenaltyAddNewPattern = 10000

	// scoreAdjustNoFlipping prefers an unflipped match over an
	// otherwise identical flipped one.
	scoreAdjustNoFlipping = -1
)

// Destination is the shared hash -> pattern ID map a set of patterns is
// being deduplicated into.
type Destination map[uint64]uint64

// NewDestination returns an empty Destination.
func NewDestination() Destination {
	return Destination{}
}

func (d Destination) Clone() any {
	cloned := make(Destination, len(d))
	for k, v := range d {
		cloned[k] = v
	}
	return cloned
}

// ChangeList is the evaluator's Move.ChangeList payload: the flip the
// source was matched under, and the ID of the hash entry it matched,
// if any. A nil MatchedPatternID means this move would add a new
// entry rather than reuse one.
type ChangeList struct {
	Flip             pattern.Flip
	MatchedPatternID *uint64
}

// Kind is the stateless solver.EvaluatorKind for pattern deduplication.
type Kind struct{}

func (Kind) NewEvaluator(sourceIndex int, source any) solver.Evaluator {
	return &evaluator{
		sourceIndex: sourceIndex,
		source:      source.(*pattern.Pattern),
		moves:       map[int][]potentialMove{},
	}
}

func (Kind) ApplyChanges(source, destination any, changeList any) {
	src := source.(*pattern.Pattern)
	dest := destination.(Destination)
	cl := changeList.(ChangeList)

	hashVal, ok := src.HashForFlip(cl.Flip)
	if !ok {
		return
	}
	if _, exists := dest[hashVal]; !exists {
		dest[hashVal] = src.ID
	}
}

// IsDestinationEmpty always reports false: a hash map destination is
// always a valid, usable destination regardless of how many entries it
// holds.
func (Kind) IsDestinationEmpty(destination any) bool {
	return false
}

type potentialMove struct {
	move      solver.Move
	baseScore solver.Score
	isNew     bool
}

type evaluator struct {
	sourceIndex int
	source      *pattern.Pattern
	// moves caches, per destination index, every candidate flip-match
	// this pattern could make there, or a nil (present-but-empty) entry
	// once determined to be permanently infeasible (only possible when
	// the pattern is restricted to a different PatternSetIndex).
	moves map[int][]potentialMove
}

func (e *evaluator) UpdateMovesForDestination(destIndex int, destination any) {
	if existing, seen := e.moves[destIndex]; seen && existing == nil {
		return
	}
	e.moves[destIndex] = nil

	if e.source.PatternSetIndex != nil && *e.source.PatternSetIndex != destIndex {
		return
	}

	dest := destination.(Destination)
	candidates := e.changesToFit(destIndex, dest)
	if len(candidates) > 0 {
		e.moves[destIndex] = candidates
	}
}

func (e *evaluator) BestMoves() (solver.Score, []solver.Move) {
	onlyOneMove := e.countLiveCandidates() == 1

	best := solver.ScoreInvalid
	var bestMoves []solver.Move

	for _, destIndex := range e.sortedDestIndices() {
		for _, pm := range e.moves[destIndex] {
			score := pm.baseScore
			if onlyOneMove && !pm.isNew {
				score = solver.ScoreFree
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

// changesToFit builds one candidate per orientation this pattern
// supports: a match against an existing hash already in destIndex's
// map if one exists under that orientation, otherwise a candidate that
// would add a new entry.
func (e *evaluator) changesToFit(destIndex int, destination Destination) []potentialMove {
	var candidates []potentialMove

	for _, flip := range []pattern.Flip{pattern.FlipNone, pattern.FlipHoriz, pattern.FlipVert, pattern.FlipHorizVert} {
		hashVal, ok := e.source.HashForFlip(flip)
		if !ok {
			continue
		}

		cl := ChangeList{Flip: flip}
		isNew := true
		if matchedID, exists := destination[hashVal]; exists {
			id := matchedID
			cl.MatchedPatternID = &id
			isNew = false
		}

		move := solver.Move{SourceIndex: e.sourceIndex, DestIndex: destIndex, ChangeList: cl}
		candidates = append(candidates, potentialMove{
			move:      move,
			baseScore: scoreForChanges(cl, e.source, isNew),
			isNew:     isNew,
		})
	}

	return candidates
}

func scoreForChanges(cl ChangeList, source *pattern.Pattern, isNew bool) solver.Score {
	score := solver.Score(0)
	if isNew {
		score = score.Add(scorePenaltyAddNewPattern)
	}
	if cl.Flip == pattern.FlipNone {
		score = score.Add(scoreAdjustNoFlipping)
	}
	score = score.Add(int64(source.NumUniqueHashes() * scorePenaltyPerUniqueHashOption))
	return score
}
