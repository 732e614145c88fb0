package intervaltobitset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nesforge/retrotile/pkg/interval"
)

func TestFitsIntoEmptyDestination(t *testing.T) {
	kind := Kind{}
	src := interval.New(0, 9, 3)
	dest := NewDestination(10)

	ev := kind.NewEvaluator(0, src)
	ev.UpdateMovesForDestination(0, dest)

	_, moves := ev.BestMoves()
	require.Len(t, moves, 1)
	assert.Equal(t, 0, moves[0].DestIndex)
}

func TestPrefersLeftAlignmentWhenCloserToExistingContent(t *testing.T) {
	kind := Kind{}
	// 10000001, window stops at bit 5, length 3: the run [1,5] sits
	// flush against bit 0 but one clear bit short of bit 7.
	dest := NewDestination(8)
	dest.Bits.Set(0)
	dest.Bits.Set(7)

	src := interval.New(0, 5, 3)
	ev := kind.NewEvaluator(0, src)
	ev.UpdateMovesForDestination(0, dest)

	_, moves := ev.BestMoves()
	require.Len(t, moves, 1)
	cl := moves[0].ChangeList.(ChangeList)
	assert.Equal(t, 1, cl.ChosenInterval.Begin)
	assert.Equal(t, 3, cl.ChosenInterval.End)
}

func TestNoRunLongEnoughYieldsNoMoves(t *testing.T) {
	kind := Kind{}
	dest := NewDestination(8)
	dest.Bits.Set(2)
	dest.Bits.Set(5)

	src := interval.New(0, 7, 4)
	ev := kind.NewEvaluator(0, src)
	ev.UpdateMovesForDestination(0, dest)

	_, moves := ev.BestMoves()
	assert.Empty(t, moves)
}

func TestApplyChangesSetsChosenBits(t *testing.T) {
	kind := Kind{}
	dest := NewDestination(8)
	cl := ChangeList{
		PossibleInterval: interval.FromFixedRange(0, 7),
		ChosenInterval:   interval.FixedLengthAtStart(2, 3),
	}
	kind.ApplyChanges(interval.New(0, 7, 3), dest, cl)

	for i := 0; i < 8; i++ {
		assert.Equal(t, i >= 2 && i <= 4, dest.Bits.IsSet(i))
	}
}

func TestIsDestinationEmpty(t *testing.T) {
	kind := Kind{}
	dest := NewDestination(4)
	assert.True(t, kind.IsDestinationEmpty(dest))
	dest.Bits.Set(0)
	assert.False(t, kind.IsDestinationEmpty(dest))
}

func TestLargerIntervalsScoreBetter(t *testing.T) {
	small := scoreForChanges(interval.New(0, 9, 2), interval.FromFixedRange(0, 9))
	large := scoreForChanges(interval.New(0, 9, 5), interval.FromFixedRange(0, 9))
	assert.True(t, large < small)
}

func TestStickyNegativeCachePersists(t *testing.T) {
	kind := Kind{}
	src := interval.New(0, 3, 4)
	dest := NewDestination(4)
	dest.Bits.SetAll()

	ev := kind.NewEvaluator(0, src).(*evaluator)
	ev.UpdateMovesForDestination(0, dest)
	require.Contains(t, ev.moves, 0)
	assert.Nil(t, ev.moves[0])

	dest.Bits.ClearAll()
	ev.UpdateMovesForDestination(0, dest)
	assert.Nil(t, ev.moves[0])
}
