// Package versiontree rebuilds a recipe fork tree from the flat list of
// versions a store returns.
//
// Every version carries its full ancestry path, so placement never chases
// parent pointers. Build runs in two phases:
//
//  1. Depth indexing: the root is registered at depth 0 and each record at
//     depth len(Path), in input order. Each record also gets its tree node
//     and an entry in an ownership map keyed by (depth, id).
//  2. Placement: records are verified depth by depth against their already
//     verified parents, then attached to their parent's children in input
//     order.
//
// Because indexing completes before anything is placed, a record may appear
// in the input before its own ancestors and still land in the same position.
// Records whose path cannot be resolved are skipped and reported as
// diagnostics; they never fail the build. Only an invalid root does.
//
// Build keeps all of its state local to the call, so independent trees may
// be built concurrently.
package versiontree
