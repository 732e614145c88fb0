package solver

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// binKind is a minimal bin-packing EvaluatorKind used to exercise the
// engine's control flow without any domain package in the loop: a
// source is an int weight, a destination is a *bin with a remaining
// capacity. A weight of 0 is a free move. Among destinations that fit,
// the evaluator prefers the tightest remaining capacity, so equal
// remainders tie and force a fork.

type bin struct {
	remaining int
	full      int
}

func (b *bin) Clone() any {
	cp := *b
	return &cp
}

type binKind struct{}

func (binKind) NewEvaluator(sourceIndex int, source any) Evaluator {
	return &binEvaluator{sourceIndex: sourceIndex, weight: source.(int), cache: map[int]*int{}}
}

func (binKind) ApplyChanges(source, destination any, changeList any) {
	b := destination.(*bin)
	b.remaining -= changeList.(int)
}

func (binKind) IsDestinationEmpty(destination any) bool {
	b := destination.(*bin)
	return b.remaining == b.full
}

// binEvaluator caches, per destination index, the remaining capacity
// after placement (nil meaning "does not fit, sticky").
type binEvaluator struct {
	sourceIndex int
	weight      int
	cache       map[int]*int
}

func (e *binEvaluator) UpdateMovesForDestination(destIndex int, destination any) {
	if v, ok := e.cache[destIndex]; ok && v == nil {
		return
	}
	b := destination.(*bin)
	if e.weight > b.remaining {
		e.cache[destIndex] = nil
		return
	}
	after := b.remaining - e.weight
	e.cache[destIndex] = &after
}

func (e *binEvaluator) BestMoves() (Score, []Move) {
	if e.weight == 0 {
		// Free: any destination will do, but one is enough since
		// applying it changes nothing.
		for idx := range e.cache {
			return ScoreFree, []Move{{SourceIndex: e.sourceIndex, DestIndex: idx, ChangeList: 0}}
		}
		// No destination assessed yet (shouldn't happen once at least
		// one destination has gone dirty) — treat the first index as
		// free-eligible.
		return ScoreFree, []Move{{SourceIndex: e.sourceIndex, DestIndex: 0, ChangeList: 0}}
	}

	var indices []int
	for idx, v := range e.cache {
		if v != nil {
			indices = append(indices, idx)
		}
	}
	sort.Ints(indices)

	best := ScoreInvalid
	var moves []Move
	for _, idx := range indices {
		score := Score(*e.cache[idx])
		switch {
		case score < best:
			best = score
			moves = []Move{{SourceIndex: e.sourceIndex, DestIndex: idx, ChangeList: e.weight}}
		case score == best:
			moves = append(moves, Move{SourceIndex: e.sourceIndex, DestIndex: idx, ChangeList: e.weight})
		}
	}
	return best, moves
}

func newBinSources(weights ...int) []any {
	sources := make([]any, len(weights))
	for i, w := range weights {
		sources[i] = w
	}
	return sources
}

func newBinDestinations(capacities ...int) []any {
	destinations := make([]any, len(capacities))
	for i, c := range capacities {
		destinations[i] = &bin{remaining: c, full: c}
	}
	return destinations
}

func drain(cs *ConstraintSolver) {
	for !cs.IsExhausted() {
		cs.Update()
	}
}

func TestSingleSourceSingleDestinationSolves(t *testing.T) {
	sources := newBinSources(3)
	destinations := newBinDestinations(5)

	cs := New(sources, destinations, binKind{}, nil)
	drain(cs)

	require.Len(t, cs.Solutions(), 1)
	assert.Equal(t, []Move{{SourceIndex: 0, DestIndex: 0, ChangeList: 3}}, cs.Solutions()[0])
}

func TestNoFittingDestinationYieldsNoSolutions(t *testing.T) {
	sources := newBinSources(10)
	destinations := newBinDestinations(5)

	cs := New(sources, destinations, binKind{}, nil)
	drain(cs)

	assert.Empty(t, cs.Solutions())
}

// The bin starts partly filled: a weight-0 free move changes nothing,
// and a move that leaves its destination empty is a contract violation
// the engine panics on.
func TestFreeMoveNeverForks(t *testing.T) {
	sources := newBinSources(0, 2)
	destinations := []any{&bin{remaining: 5, full: 6}}

	cs := New(sources, destinations, binKind{}, nil)
	drain(cs)

	require.Len(t, cs.Solutions(), 1)
	assert.Len(t, cs.Solutions()[0], 2)
}

// TestTieForksAndExploresBothBranches verifies that when a source ties
// between two equally good destinations, the engine produces a
// solution along each branch rather than committing arbitrarily to one.
// The second source's weight only fits the third destination, so it
// never ties and each branch resolves to a distinct assignment. The
// bins start partly filled so none counts as empty: empty destinations
// are treated as interchangeable and only one of them is assessed at a
// time, which would hide both the tie and the third bin.
func TestTieForksAndExploresBothBranches(t *testing.T) {
	sources := newBinSources(3, 7)
	destinations := []any{
		&bin{remaining: 3, full: 4},
		&bin{remaining: 3, full: 4},
		&bin{remaining: 10, full: 11},
	}

	cs := New(sources, destinations, binKind{}, nil)
	drain(cs)

	require.Len(t, cs.Solutions(), 2)
	seen := map[int]bool{}
	for _, sol := range cs.Solutions() {
		require.Len(t, sol, 2)
		for _, m := range sol {
			if m.SourceIndex == 0 {
				seen[m.DestIndex] = true
			}
		}
	}
	assert.Equal(t, map[int]bool{0: true, 1: true}, seen)
}

// TestDeterminism checks that solving the same inputs twice yields
// identical solutions in identical order.
func TestDeterminism(t *testing.T) {
	run := func() [][]Move {
		sources := newBinSources(3, 3, 2)
		destinations := newBinDestinations(3, 3, 5)
		cs := New(sources, destinations, binKind{}, nil)
		drain(cs)
		return cs.Solutions()
	}

	first := run()
	second := run()
	assert.Equal(t, first, second)
}

// TestApplySolutionMutatesCallerDestinations checks that replaying a
// found solution against the original destination slice leaves it in
// the expected final state.
func TestApplySolutionMutatesCallerDestinations(t *testing.T) {
	sources := newBinSources(3)
	destinations := newBinDestinations(5)

	cs := New(sources, destinations, binKind{}, nil)
	drain(cs)
	require.Len(t, cs.Solutions(), 1)

	cs.ApplySolution(cs.Solutions()[0])
	assert.Equal(t, 2, destinations[0].(*bin).remaining)
}

// TestEmptyDestinationDedupInvariant checks that when multiple
// destinations start empty, only one is ever dirty at construction.
func TestEmptyDestinationDedupInvariant(t *testing.T) {
	sources := newBinSources(1)
	destinations := newBinDestinations(5, 5, 5)

	s := newSubsetSolver(binKind{}, sources, destinations, newRootNode(), nil)

	assert.Equal(t, 3, s.emptyDestinations.CountSet())

	dirtyAndEmpty := 0
	for i := 0; i < 3; i++ {
		if s.emptyDestinations.IsSet(i) && s.dirtyDestinations.IsSet(i) {
			dirtyAndEmpty++
		}
	}
	assert.Equal(t, 1, dirtyAndEmpty)
}

// TestStickyNegativeCache checks that once an evaluator caches a
// destination as infeasible it never reassesses it, even after further
// moves are committed elsewhere in the same SubsetSolver.
func TestStickyNegativeCache(t *testing.T) {
	e := &binEvaluator{weight: 10, cache: map[int]*int{}}
	b := &bin{remaining: 5, full: 5}

	e.UpdateMovesForDestination(0, b)
	require.Contains(t, e.cache, 0)
	assert.Nil(t, e.cache[0])

	// Even if the destination were to somehow look more generous later,
	// the cached nil must stick.
	b.remaining = 100
	e.UpdateMovesForDestination(0, b)
	assert.Nil(t, e.cache[0])
}

func TestScoreAddSaturatesSentinels(t *testing.T) {
	assert.Equal(t, ScoreFree, ScoreFree.Add(-10000))
	assert.Equal(t, ScoreInvalid, ScoreInvalid.Add(10000))
	assert.Equal(t, Score(90), Score(100).Add(-10))
}

func TestDestinationLeftEmptyPanics(t *testing.T) {
	kind := panickyKind{}
	sources := newBinSources(1)
	destinations := []any{&bin{remaining: 5, full: 5}}

	s := newSubsetSolver(kind, sources, destinations, newRootNode(), nil)
	assert.Panics(t, func() {
		s.applyMove(Move{SourceIndex: 0, DestIndex: 0, ChangeList: 0})
	})
}

// panickyKind's ApplyChanges never actually changes anything, so
// IsDestinationEmpty still reports true after a move is applied —
// exercising the engine's contract-violation panic.
type panickyKind struct{}

func (panickyKind) NewEvaluator(sourceIndex int, source any) Evaluator {
	return &binEvaluator{weight: source.(int), cache: map[int]*int{}}
}

func (panickyKind) ApplyChanges(source, destination any, changeList any) {}

func (panickyKind) IsDestinationEmpty(destination any) bool {
	return destination.(*bin).remaining == destination.(*bin).full
}
