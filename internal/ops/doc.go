// Package ops holds the operations the CLI performs on entities.
//
// The pieces, leaves first:
//
//   - resolve.go: selector resolution (a regular expression matched against
//     ids first, then names)
//   - filter.go: predicates over collections and collection merging
//   - tasks.go: task filters and the board/step/recency ordering
//   - boards.go, move.go: board mutators and bulk move/orphan
//   - flows.go, steps.go: flow editions and step lookups
//   - remove.go: removal planning and execution
//
// Operators is the registry constructed once per process and handed to
// every command; there is no package-level state.
package ops
