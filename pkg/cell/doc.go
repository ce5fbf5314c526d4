// Package cell implements the small reactive primitive the form list engine is
// built on: writable cells, memoized derivations with automatic dependency
// tracking, and a store that batches writes and notifies subscribers.
//
// Evaluation is synchronous and pull based:
//   - Cell.Set bumps the cell version and asks its Store to flush.
//   - Derived values recompute lazily on Get, and only when one of the
//     sources read during the previous computation changed version.
//   - Store.Batch defers subscriber notification until the outermost batch
//     returns, so subscribers never observe a partially applied mutation.
//
// Cells and derivations are not safe for concurrent mutation; the Store only
// guards its own subscriber bookkeeping.
package cell
