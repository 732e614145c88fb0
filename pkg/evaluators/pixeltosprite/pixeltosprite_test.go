package pixeltosprite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nesforge/retrotile/pkg/bitset"
	"github.com/nesforge/retrotile/pkg/solver"
)

func coverage(numPixels int, bits ...int) *bitset.BitSet {
	b := bitset.New(numPixels)
	for _, i := range bits {
		b.Set(i)
	}
	return b
}

func TestAlreadyCoveredPixelIsFreeMove(t *testing.T) {
	kind := Kind{}
	src := &Source{
		PotentialSprites: coverage(1, 0),
		SpriteCoverages:  []*bitset.BitSet{coverage(2, 0, 1)},
	}
	dest := NewDestination(2)
	dest.Bits.Set(0)

	ev := kind.NewEvaluator(0, src)
	ev.UpdateMovesForDestination(0, dest)

	score, moves := ev.BestMoves()
	require.Len(t, moves, 1)
	assert.True(t, score.IsFree())
	assert.Nil(t, moves[0].ChangeList)
}

func TestPixelNotYetNextGetsInvalidPlaceholder(t *testing.T) {
	kind := Kind{}
	src := &Source{
		PotentialSprites: coverage(2, 1),
		SpriteCoverages:  []*bitset.BitSet{nil, coverage(2, 1)},
	}
	dest := NewDestination(2)

	ev := kind.NewEvaluator(1, src)
	ev.UpdateMovesForDestination(0, dest)

	score, moves := ev.BestMoves()
	require.Len(t, moves, 1)
	assert.True(t, score.IsInvalid())
	cl := moves[0].ChangeList.(*ChangeList)
	assert.True(t, cl.Invalid)
}

func TestInvalidPlaceholderIsBuiltOnceAndCached(t *testing.T) {
	kind := Kind{}
	src := &Source{
		PotentialSprites: coverage(2, 1),
		SpriteCoverages:  []*bitset.BitSet{nil, coverage(2, 1)},
	}
	dest := NewDestination(2)

	ev := kind.NewEvaluator(1, src).(*evaluator)
	ev.UpdateMovesForDestination(0, dest)
	first := ev.moves[0][0].move

	ev.UpdateMovesForDestination(0, dest)
	second := ev.moves[0][0].move
	assert.Equal(t, first, second)
}

func TestNextPixelInRasterOrderEnumeratesAllCoveringSprites(t *testing.T) {
	kind := Kind{}
	src := &Source{
		PotentialSprites: coverage(3, 0, 1),
		SpriteCoverages: []*bitset.BitSet{
			coverage(2, 0),
			coverage(2, 0, 1),
			coverage(2, 1),
		},
	}
	dest := NewDestination(2)

	ev := kind.NewEvaluator(0, src)
	ev.UpdateMovesForDestination(0, dest)

	score, moves := ev.BestMoves()
	assert.Equal(t, solver.Score(0), score)
	require.Len(t, moves, 2)
}

func TestCandidatesOrderedByAscendingOverlap(t *testing.T) {
	kind := Kind{}
	src := &Source{
		PotentialSprites: coverage(3, 0, 1),
		SpriteCoverages: []*bitset.BitSet{
			coverage(3, 0, 1, 2),
			coverage(3, 0),
			nil,
		},
	}
	dest := NewDestination(3)
	dest.Bits.Set(2)

	ev := kind.NewEvaluator(0, src).(*evaluator)
	moves := ev.candidateSpriteMoves(0, dest)

	require.Len(t, moves, 2)
	assert.Equal(t, 1, moves[0].move.ChangeList.(*ChangeList).DestSpriteIndex)
	assert.Equal(t, 0, moves[1].move.ChangeList.(*ChangeList).DestSpriteIndex)
}

func TestApplyChangesUnionsAddedPixels(t *testing.T) {
	kind := Kind{}
	dest := NewDestination(2)
	cl := &ChangeList{AddedPixels: coverage(2, 0, 1)}

	kind.ApplyChanges(&Source{}, dest, cl)
	assert.True(t, dest.Bits.AllSet())
}

func TestApplyChangesNilIsNoOp(t *testing.T) {
	kind := Kind{}
	dest := NewDestination(2)
	kind.ApplyChanges(&Source{}, dest, nil)
	assert.True(t, dest.Bits.AllClear())
}

func TestApplyChangesPanicsOnInvalidPlaceholder(t *testing.T) {
	kind := Kind{}
	dest := NewDestination(2)
	cl := &ChangeList{Invalid: true}
	assert.Panics(t, func() {
		kind.ApplyChanges(&Source{}, dest, cl)
	})
}

func TestIsDestinationEmptyAlwaysFalse(t *testing.T) {
	kind := Kind{}
	assert.False(t, kind.IsDestinationEmpty(NewDestination(2)))
}
