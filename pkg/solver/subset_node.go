package solver

// SolverSubsetNode is one node in the ConstraintSolver's exploration
// tree. A node is created only at a fork: it holds the single move
// that distinguishes it from its siblings, plus every further move
// committed in-place before the next fork or completion. The full
// move sequence a node represents is the concatenation, root to node,
// of every ancestor's moves.
type SolverSubsetNode struct {
	parent   *SolverSubsetNode
	moves    []Move
	children []*SolverSubsetNode
}

// newRootNode creates the tree's root, representing the empty move
// sequence.
func newRootNode() *SolverSubsetNode {
	return &SolverSubsetNode{}
}

// chain returns every node from the root down to n, inclusive.
func (n *SolverSubsetNode) chain() []*SolverSubsetNode {
	var rev []*SolverSubsetNode
	for cur := n; cur != nil; cur = cur.parent {
		rev = append(rev, cur)
	}
	chain := make([]*SolverSubsetNode, len(rev))
	for i, node := range rev {
		chain[len(rev)-1-i] = node
	}
	return chain
}

// allMoves concatenates the moves of every node from the root down to
// n, inclusive — the full move sequence that solving along this path
// produced.
func (n *SolverSubsetNode) allMoves() []Move {
	var moves []Move
	for _, node := range n.chain() {
		moves = append(moves, node.moves...)
	}
	return moves
}
