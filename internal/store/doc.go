// Package store persists todo-manager entities.
//
// The Source interface is the contract the core depends on: get, set,
// delete and list per entity kind, plus the reverse task -> board lookup.
// Repository implements Source on top of a record-level Backend; the yamlfile
// and sqlite subpackages provide backends.
//
// # Records
//
// A Record is the flat persisted form of an entity. References between
// entities are stored as ids:
//   - task:  boardId (back-reference to the owning board)
//   - flow:  stepIds (canonical order), defaultStepId
//   - board: flowId, taskStepIds (task id -> step id, "" when unassigned)
//
// # Consistency
//
// Repository keeps the task -> board back-references in step with the
// boards: saving a board claims its tasks and releases the tasks it dropped,
// deleting a board releases all of its tasks, deleting a task removes it
// from its board. A task claimed by a board is released from any other
// board first, so a task belongs to at most one board.
//
// # Caching
//
// Decoded entities are cached per kind for the life of the Repository.
// Writes invalidate the kinds that embed the written kind (boards embed
// tasks and flows, flows embed steps). Access is sequential; the cache is
// not safe for concurrent use.
package store
