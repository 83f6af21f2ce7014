// Package layout computes generational positions for a family graph.
//
// # Algorithm
//
// [Compute] levels the graph breadth-first from its roots (people without
// recorded parents):
//
//  1. Level 0 holds every root, in snapshot order.
//  2. Level k+1 holds the children of level k's members that have not been
//     reached yet, deduplicated, in first-discovery order.
//  3. The i-th of n members at level lvl sits at
//     x = (i - (n-1)/2) * XGap, y = lvl * YGap.
//
// A person keeps the level at which it is first reached, so each level is
// centered on x = 0 and generations stack downward.
//
// # Degenerate Graphs
//
// When no person is parentless (every node sits on a parent cycle), every
// person is treated as a root and the whole collection lands on level 0.
// This is documented behavior, not an error.
//
// People unreachable from any root are omitted from the result unless
// [Options.PlaceUnreached] is set, which places them on one extra row below
// the deepest generation.
//
// # Determinism
//
// The result depends only on topology and snapshot order; existing positions
// are ignored. Identical snapshots always produce identical layouts.
package layout
