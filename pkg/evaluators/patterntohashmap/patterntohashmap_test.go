package patterntohashmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nesforge/retrotile/pkg/pattern"
	"github.com/nesforge/retrotile/pkg/solver"
)

func grid(values ...int) pattern.IndexedColorArray {
	return pattern.IndexedColorArray{Width: 2, Height: 2, Values: values}
}

func TestFirstPatternIntoEmptyMapAddsNewEntry(t *testing.T) {
	kind := Kind{}
	src := pattern.New(grid(1, 2, 3, 4), pattern.FlipNone, nil)
	dest := NewDestination()

	ev := kind.NewEvaluator(0, src)
	ev.UpdateMovesForDestination(0, dest)

	_, moves := ev.BestMoves()
	require.Len(t, moves, 1)
	cl := moves[0].ChangeList.(ChangeList)
	assert.Nil(t, cl.MatchedPatternID)
}

func TestMatchingExistingHashIsPreferredOverNewEntry(t *testing.T) {
	kind := Kind{}
	existing := pattern.New(grid(1, 2, 3, 4), pattern.FlipNone, nil)
	dest := NewDestination()
	hashVal, ok := existing.HashForFlip(pattern.FlipNone)
	require.True(t, ok)
	dest[hashVal] = existing.ID

	src := pattern.New(grid(1, 2, 3, 4), pattern.FlipNone, nil)
	ev := kind.NewEvaluator(0, src)
	ev.UpdateMovesForDestination(0, dest)

	score, moves := ev.BestMoves()
	require.Len(t, moves, 1)
	cl := moves[0].ChangeList.(ChangeList)
	require.NotNil(t, cl.MatchedPatternID)
	assert.Equal(t, existing.ID, *cl.MatchedPatternID)
	assert.False(t, score.IsInvalid())
}

func TestOnlyOneMoveMatchingExistingHashIsFree(t *testing.T) {
	kind := Kind{}
	existing := pattern.New(grid(1, 2, 3, 4), pattern.FlipNone, nil)
	dest := NewDestination()
	hashVal, _ := existing.HashForFlip(pattern.FlipNone)
	dest[hashVal] = existing.ID

	src := pattern.New(grid(1, 2, 3, 4), pattern.FlipNone, nil)
	ev := kind.NewEvaluator(0, src)
	ev.UpdateMovesForDestination(0, dest)

	score, moves := ev.BestMoves()
	require.Len(t, moves, 1)
	assert.True(t, score.IsFree())
}

func TestRestrictedPatternSetIndexRejectsOtherDestinations(t *testing.T) {
	kind := Kind{}
	restrictTo := 2
	src := pattern.New(grid(1, 2, 3, 4), pattern.FlipNone, &restrictTo)
	dest := NewDestination()

	ev := kind.NewEvaluator(0, src)
	ev.UpdateMovesForDestination(0, dest)

	_, moves := ev.BestMoves()
	assert.Empty(t, moves)
}

func TestRestrictedPatternSetIndexAcceptsItsOwnDestination(t *testing.T) {
	kind := Kind{}
	restrictTo := 2
	src := pattern.New(grid(1, 2, 3, 4), pattern.FlipNone, &restrictTo)
	dest := NewDestination()

	ev := kind.NewEvaluator(0, src)
	ev.UpdateMovesForDestination(2, dest)

	_, moves := ev.BestMoves()
	require.Len(t, moves, 1)
	assert.Equal(t, 2, moves[0].DestIndex)
}

func TestUnflippedMatchScoresBetterThanFlippedMatch(t *testing.T) {
	kind := Kind{}
	asymmetric := pattern.New(grid(1, 2, 3, 4), pattern.FlipHorizVert, nil)
	dest := NewDestination()

	ev := kind.NewEvaluator(0, asymmetric).(*evaluator)
	ev.UpdateMovesForDestination(0, dest)

	candidates := ev.moves[0]
	require.Len(t, candidates, 4)

	var noneScore, otherScore solver.Score
	for _, pm := range candidates {
		cl := pm.move.ChangeList.(ChangeList)
		if cl.Flip == pattern.FlipNone {
			noneScore = pm.baseScore
		} else {
			otherScore = pm.baseScore
		}
	}
	assert.True(t, noneScore < otherScore)
}

func TestApplyChangesAddsNewHashOnlyOnce(t *testing.T) {
	kind := Kind{}
	src := pattern.New(grid(1, 2, 3, 4), pattern.FlipNone, nil)
	dest := NewDestination()

	hashVal, _ := src.HashForFlip(pattern.FlipNone)
	kind.ApplyChanges(src, dest, ChangeList{Flip: pattern.FlipNone})
	require.Contains(t, dest, hashVal)
	assert.Equal(t, src.ID, dest[hashVal])

	other := pattern.New(grid(1, 2, 3, 4), pattern.FlipNone, nil)
	kind.ApplyChanges(other, dest, ChangeList{Flip: pattern.FlipNone})
	assert.Equal(t, src.ID, dest[hashVal], "existing hash entry must not be overwritten")
}

func TestIsDestinationEmptyAlwaysFalse(t *testing.T) {
	kind := Kind{}
	assert.False(t, kind.IsDestinationEmpty(NewDestination()))
}

func TestStickyNegativeCachePersistsForRestrictedPattern(t *testing.T) {
	kind := Kind{}
	restrictTo := 1
	src := pattern.New(grid(1, 2, 3, 4), pattern.FlipNone, &restrictTo)
	dest := NewDestination()

	ev := kind.NewEvaluator(0, src).(*evaluator)
	ev.UpdateMovesForDestination(0, dest)
	require.Contains(t, ev.moves, 0)
	assert.Nil(t, ev.moves[0])

	ev.UpdateMovesForDestination(0, dest)
	assert.Nil(t, ev.moves[0])
}
