package solver

import "errors"

// errAllItemsMapped signals assessMoves found no remaining unmapped
// sources — the current branch is a solution. It is flow control
// internal to this package, never returned across the public API.
var errAllItemsMapped = errors.New("solver: all sources mapped")

// errNoMovesAvailable signals some evaluator has no candidate moves
// left — the current branch is dead. Also internal flow control.
var errNoMovesAvailable = errors.New("solver: no moves available for a source")
