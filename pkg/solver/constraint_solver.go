package solver

import (
	"go.uber.org/zap"

	"github.com/nesforge/retrotile/pkg/fsm"
)

// ConstraintSolver is the outer driver: it owns the exploration tree,
// the FIFO of nodes still waiting to be visited, and every solution
// found so far. It advances one FSM hook at a time via Update, so a
// caller can interleave solving with its own deadline or progress
// reporting instead of blocking until exhaustion.
type ConstraintSolver struct {
	kind         EvaluatorKind
	sources      []any
	destinations []any

	visitQueue []*SolverSubsetNode
	current    *SubsetSolver
	solutions  [][]Move

	machine *fsm.FSM
	logger  *zap.Logger
}

// New builds a ConstraintSolver for the given sources and destinations
// under kind, and immediately drives the FSM to its first AssessMoves
// state. destinations must implement Cloneable; logger may be nil, in
// which case a no-op logger is used.
func New(sources, destinations []any, kind EvaluatorKind, logger *zap.Logger) *ConstraintSolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	cs := &ConstraintSolver{
		kind:         kind,
		sources:      sources,
		destinations: destinations,
		visitQueue:   []*SolverSubsetNode{newRootNode()},
		logger:       logger,
	}
	cs.machine = fsm.New(cs)
	cs.machine.Start(assessCompletionState{})
	return cs
}

// Update advances the FSM by exactly one hook. Callers loop on Update
// until IsExhausted reports true, inspecting Solutions in between if an
// anytime result is useful.
func (cs *ConstraintSolver) Update() {
	cs.machine.Update()
}

// IsExhausted reports whether the search has visited every node the
// exploration tree produced and has nothing left to try.
func (cs *ConstraintSolver) IsExhausted() bool {
	_, ok := cs.machine.Current().(exhaustedState)
	return ok
}

// Solutions returns every complete move sequence found so far, each in
// root-to-leaf order. The slice is owned by the caller but its
// underlying array may be shared with future appends; callers that need
// a stable snapshot should copy it.
func (cs *ConstraintSolver) Solutions() [][]Move {
	return cs.solutions
}

// ApplySolution replays a solution (as returned by Solutions) against
// the caller's original destinations, the same slice passed to New.
func (cs *ConstraintSolver) ApplySolution(moves []Move) {
	for _, m := range moves {
		cs.kind.ApplyChanges(cs.sources[m.SourceIndex], cs.destinations[m.DestIndex], m.ChangeList)
	}
}

// buildSubsetSolverForNode rebuilds a SubsetSolver from scratch and
// replays every move recorded from the root down to node, inclusive.
func (cs *ConstraintSolver) buildSubsetSolverForNode(node *SolverSubsetNode) *SubsetSolver {
	s := newSubsetSolver(cs.kind, cs.sources, cs.destinations, node, cs.logger)
	for _, m := range node.allMoves() {
		s.applyMove(m)
	}
	return s
}

// --- FSM states -------------------------------------------------------
//
// The table below is the whole of the driver's control flow:
//
//	AssessCompletion (enter): queue empty -> Exhausted
//	                          else pop node, build solver -> AssessMoves
//	AssessMoves      (update): assess; all mapped -> SuccessfulSubsetCompletion
//	                          else -> SelectMoves
//	SelectMoves      (update): choose; no moves left -> FailedSubsetCompletion
//	                          else -> AssessMoves
//	SuccessfulSubsetCompletion (enter): record solution, drop solver -> AssessCompletion
//	FailedSubsetCompletion     (enter): drop solver -> AssessCompletion
//	Exhausted: terminal

type assessCompletionState struct{ fsm.NopState }

func (assessCompletionState) OnEnter(ctx any) fsm.State {
	cs := ctx.(*ConstraintSolver)
	if len(cs.visitQueue) == 0 {
		return exhaustedState{}
	}
	node := cs.visitQueue[0]
	cs.visitQueue = cs.visitQueue[1:]
	cs.current = cs.buildSubsetSolverForNode(node)
	cs.logger.Debug("visiting node", zap.Int("queue_depth", len(cs.visitQueue)), zap.Int("replayed_moves", len(node.allMoves())))
	return assessMovesState{}
}

type assessMovesState struct{ fsm.NopState }

func (assessMovesState) OnUpdate(ctx any) fsm.State {
	cs := ctx.(*ConstraintSolver)
	if err := cs.current.AssessMoves(); err == errAllItemsMapped {
		return successfulSubsetCompletionState{}
	}
	return selectMovesState{}
}

type selectMovesState struct{ fsm.NopState }

func (selectMovesState) OnUpdate(ctx any) fsm.State {
	cs := ctx.(*ConstraintSolver)
	enqueue := func(n *SolverSubsetNode) {
		cs.visitQueue = append(cs.visitQueue, n)
	}
	if err := cs.current.ChooseNextMoves(enqueue); err == errNoMovesAvailable {
		return failedSubsetCompletionState{}
	}
	return assessMovesState{}
}

type successfulSubsetCompletionState struct{ fsm.NopState }

func (successfulSubsetCompletionState) OnEnter(ctx any) fsm.State {
	cs := ctx.(*ConstraintSolver)
	solution := cs.current.node.allMoves()
	cs.solutions = append(cs.solutions, solution)
	cs.logger.Debug("subset solved", zap.Int("moves", len(solution)), zap.Int("solutions_so_far", len(cs.solutions)))
	cs.current = nil
	return assessCompletionState{}
}

type failedSubsetCompletionState struct{ fsm.NopState }

func (failedSubsetCompletionState) OnEnter(ctx any) fsm.State {
	cs := ctx.(*ConstraintSolver)
	cs.logger.Debug("subset branch failed")
	cs.current = nil
	return assessCompletionState{}
}

type exhaustedState struct{ fsm.NopState }
