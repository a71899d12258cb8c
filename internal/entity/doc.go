// Package entity defines the todo-manager data model.
//
// Four entity kinds exist: Task, FlowStep, Flow and Board. The Entity
// interface is sealed: only the four types of this package implement it, so
// a type switch over them is exhaustive.
//
// # Saved entities
//
// An entity is saved once it carries an ID and a creation timestamp. The
// store assigns both on first write and stamps UpdatedAt on later writes.
// Saved-ness is checked at runtime with Base.IsSaved.
//
// # Ownership
//
//   - A Board owns its Tasks and the TaskSteps assignment (task id -> step id).
//   - A Flow owns its Steps and their canonical Order.
//   - A Board references exactly one Flow; a Flow may be shared by many boards.
//
// Boards and flows are treated as values: operators clone before changing
// them and hand back the new value.
package entity
