package solver

// Cloneable is implemented by destination values so the engine can take
// a working copy before a SubsetSolver mutates it. Destinations should
// be reference types (typically pointers) so that ApplyChanges, when
// eventually invoked against the caller's original destinations via
// ConstraintSolver.ApplySolution, is visible to the caller.
type Cloneable interface {
	Clone() any
}

// EvaluatorKind is the domain-supplied factory and the two operations
// the engine needs without an evaluator instance in hand: constructing
// a fresh per-source Evaluator, materializing a chosen move's changes
// onto a destination, and testing whether a destination is empty.
// Implementations are stateless; all per-source bookkeeping lives on
// the Evaluator values NewEvaluator returns.
type EvaluatorKind interface {
	// NewEvaluator builds the Evaluator that will track candidate moves
	// for a single source throughout one SubsetSolver's lifetime.
	NewEvaluator(sourceIndex int, source any) Evaluator

	// ApplyChanges mutates destination in place according to
	// changeList, which must have been produced by a Move returned from
	// the matching Evaluator's BestMoves.
	ApplyChanges(source, destination any, changeList any)

	// IsDestinationEmpty reports whether destination currently holds no
	// content, i.e. is eligible to be silently hidden from assessment
	// once another destination is already known to be empty.
	IsDestinationEmpty(destination any) bool
}

// Evaluator tracks one source's candidate moves against the
// destinations a SubsetSolver is assembling. A SubsetSolver calls
// UpdateMovesForDestination once per dirty destination per round, then
// calls BestMoves to collect whatever the evaluator currently considers
// its best candidates.
type Evaluator interface {
	// UpdateMovesForDestination recomputes (or caches as infeasible)
	// this evaluator's candidate moves against the destination at
	// destIndex. Once an evaluator caches a destination as infeasible it
	// must never revisit that destination again, even after further
	// moves are committed elsewhere in the same SubsetSolver.
	UpdateMovesForDestination(destIndex int, destination any)

	// BestMoves returns the lowest score this evaluator currently has
	// on offer and every move that achieves it. An empty move list
	// means this source has nowhere left to go and the SubsetSolver's
	// current branch has failed.
	BestMoves() (Score, []Move)
}
