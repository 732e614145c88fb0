package solver

import (
	"sort"

	"go.uber.org/zap"

	"github.com/nesforge/retrotile/pkg/bitset"
)

// SubsetSolver drives one exploration branch: it owns a working copy
// of the destinations, the evaluators for every still-unmapped source,
// and the dirty/empty bookkeeping that keeps reassessment bounded. It
// never clones itself — ConstraintSolver forks by recording a new
// SolverSubsetNode and, when that node is later visited, rebuilding a
// fresh SubsetSolver and replaying the node's ancestor chain of moves.
type SubsetSolver struct {
	kind EvaluatorKind

	sources         []any
	wipDestinations []any

	unmappedSources   *bitset.BitSet
	dirtyDestinations *bitset.BitSet
	emptyDestinations *bitset.BitSet

	sourceEvaluators map[int]Evaluator

	// node is the tree node this solver currently represents. Every
	// move executed in-place (free fast-forward, or the first move of
	// a fork) is recorded here.
	node *SolverSubsetNode

	logger *zap.Logger
}

// newSubsetSolver builds a SubsetSolver over fresh clones of
// destinations with every source unmapped. node should be newRootNode()
// for the very first visit, or the target node being resumed — callers
// resuming a non-root node must replay its ancestor chain via applyMove
// before calling AssessMoves.
func newSubsetSolver(kind EvaluatorKind, sources, destinations []any, node *SolverSubsetNode, logger *zap.Logger) *SubsetSolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	wip := make([]any, len(destinations))
	for i, d := range destinations {
		wip[i] = d.(Cloneable).Clone()
	}

	evaluators := make(map[int]Evaluator, len(sources))
	for i, src := range sources {
		evaluators[i] = kind.NewEvaluator(i, src)
	}

	s := &SubsetSolver{
		kind:              kind,
		sources:           sources,
		wipDestinations:   wip,
		unmappedSources:   bitset.New(len(sources)),
		dirtyDestinations: bitset.New(len(wip)),
		emptyDestinations: bitset.New(len(wip)),
		sourceEvaluators:  evaluators,
		node:              node,
		logger:            logger,
	}
	s.unmappedSources.SetAll()
	s.dirtyDestinations.SetAll()

	first := true
	for idx, d := range wip {
		if kind.IsDestinationEmpty(d) {
			s.emptyDestinations.Set(idx)
			if first {
				first = false
			} else {
				s.dirtyDestinations.Clear(idx)
			}
		}
	}
	return s
}

// evaluatorOrder returns the live evaluators' source indices in
// ascending order, so that assessment and tie-collection are
// deterministic regardless of Go's randomized map iteration.
func (s *SubsetSolver) evaluatorOrder() []int {
	order := make([]int, 0, len(s.sourceEvaluators))
	for idx := range s.sourceEvaluators {
		order = append(order, idx)
	}
	sort.Ints(order)
	return order
}

// AssessMoves refreshes every live evaluator's candidate moves against
// every currently-dirty destination, then clears the dirty set. It
// returns errAllItemsMapped once no sources remain unmapped.
func (s *SubsetSolver) AssessMoves() error {
	if s.unmappedSources.AllClear() {
		return errAllItemsMapped
	}

	order := s.evaluatorOrder()
	for idx, ok := s.dirtyDestinations.NextSet(0); ok; idx, ok = s.dirtyDestinations.NextSet(idx + 1) {
		dest := s.wipDestinations[idx]
		for _, srcIdx := range order {
			s.sourceEvaluators[srcIdx].UpdateMovesForDestination(idx, dest)
		}
	}
	s.dirtyDestinations.ClearAll()
	return nil
}

// ChooseNextMoves collects every live evaluator's best move, commits
// any free moves outright, and otherwise forks: it creates one child
// SolverSubsetNode per tied move, continues in this solver with the
// first child, and hands the rest to enqueue for later visits. It
// returns errNoMovesAvailable if any live evaluator has exhausted its
// candidates, or if the best score on offer is ScoreInvalid.
func (s *SubsetSolver) ChooseNextMoves(enqueue func(*SolverSubsetNode)) error {
	bestScore := ScoreInvalid
	var bestMoves []Move

	for _, idx := range s.evaluatorOrder() {
		score, moves := s.sourceEvaluators[idx].BestMoves()
		if len(moves) == 0 {
			return errNoMovesAvailable
		}
		switch {
		case score < bestScore:
			bestScore = score
			bestMoves = append([]Move(nil), moves...)
		case score == bestScore:
			bestMoves = append(bestMoves, moves...)
		}
	}

	if bestScore.IsInvalid() {
		return errNoMovesAvailable
	}

	if bestScore.IsFree() {
		for _, m := range bestMoves {
			s.executeMove(m)
		}
		return nil
	}

	children := make([]*SolverSubsetNode, len(bestMoves))
	for i, m := range bestMoves {
		children[i] = &SolverSubsetNode{parent: s.node, moves: []Move{m}}
	}
	s.node.children = append(s.node.children, children...)
	s.logger.Debug("forking on tie", zap.Int64("score", int64(bestScore)), zap.Int("branches", len(children)))
	s.node = children[0]
	s.applyMove(bestMoves[0])
	for _, child := range children[1:] {
		enqueue(child)
	}
	return nil
}

// executeMove applies m and records it against the node this solver
// currently represents. Used by the free-move fast path; the first
// move of a fork is already recorded on the new child node, so it is
// applied with applyMove instead.
func (s *SubsetSolver) executeMove(m Move) {
	s.applyMove(m)
	s.node.moves = append(s.node.moves, m)
}

// applyMove performs the mutation side effects of committing m without
// touching the node tree: it materializes the change onto the
// destination, retires the source's evaluator, and updates the
// dirty/empty bookkeeping. Used both by executeMove and by replay,
// which re-applies moves already recorded in the tree.
func (s *SubsetSolver) applyMove(m Move) {
	src := s.sources[m.SourceIndex]
	dest := s.wipDestinations[m.DestIndex]

	s.kind.ApplyChanges(src, dest, m.ChangeList)

	delete(s.sourceEvaluators, m.SourceIndex)
	s.unmappedSources.Clear(m.SourceIndex)
	s.dirtyDestinations.Set(m.DestIndex)

	if s.kind.IsDestinationEmpty(dest) {
		panic("solver: destination left empty after move was applied")
	}

	if s.emptyDestinations.IsSet(m.DestIndex) {
		s.emptyDestinations.Clear(m.DestIndex)
		s.promoteHiddenEmpty()
	}

	s.logger.Debug("move executed", zap.Int("source_index", m.SourceIndex), zap.Int("dest_index", m.DestIndex))
}

// promoteHiddenEmpty marks the lowest-indexed remaining empty
// destination dirty again, restoring the invariant that at most one
// empty destination is visible to assessment at a time.
func (s *SubsetSolver) promoteHiddenEmpty() {
	if idx, ok := s.emptyDestinations.NextSet(0); ok {
		s.dirtyDestinations.Set(idx)
	}
}
