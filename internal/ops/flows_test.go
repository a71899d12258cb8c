package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/todo-manager/internal/edition"
	"github.com/roach88/todo-manager/internal/entity"
)

func parseEdition(t *testing.T, doc string) *edition.FlowEdition {
	t.Helper()
	ed, err := edition.Parse([]byte(doc))
	require.NoError(t, err)
	return ed
}

// decodeEdition skips validation so that ApplyEdition's own checks run.
func decodeEdition(t *testing.T, doc string) *edition.FlowEdition {
	t.Helper()
	var ed edition.FlowEdition
	require.NoError(t, yaml.Unmarshal([]byte(doc), &ed))
	return &ed
}

func TestCreateFromEdition(t *testing.T) {
	f := newFixture(t)

	res, err := f.ops.Flows.CreateFromEdition(f.ctx, "kanban", parseEdition(t, `
name: Kanban
description: team
default: Doing
steps:
  - action: add
    name: Todo
    color: red
  - action: add
    name: Doing
`))
	require.NoError(t, err)

	flow := res.Flow
	assert.Equal(t, entity.ID("kanban"), flow.ID)
	assert.Equal(t, "team", flow.Description)
	assert.Equal(t, []string{"Todo", "Doing"}, names(flow.OrderedSteps()))
	def, ok := flow.DefaultStep()
	require.True(t, ok)
	assert.Equal(t, "Doing", def.Name)
	assert.Equal(t, entity.ColorRed, flow.OrderedSteps()[0].Color)
	assert.Len(t, res.Added, 2)

	stored, err := f.ops.Flows.GetOrFail(f.ctx, "kanban")
	require.NoError(t, err)
	assert.Equal(t, flow.Order, stored.Order)
}

func TestCreateFromEdition_OnlyAdds(t *testing.T) {
	f := newFixture(t)

	_, err := f.ops.Flows.CreateFromEdition(f.ctx, "", parseEdition(t, `
name: Kanban
steps:
  - action: keep
    name: Todo
`))
	assert.True(t, entity.HasCode(err, entity.ErrCodeInvalidEdition))
}

func TestCreateFromEdition_TakenID(t *testing.T) {
	f := newFixture(t)
	flow := f.flow("Kanban", "Todo")

	_, err := f.ops.Flows.CreateFromEdition(f.ctx, flow.ID, parseEdition(t, `
name: Other
steps:
  - action: add
    name: Open
`))
	assert.True(t, entity.HasCode(err, entity.ErrCodeAlreadyExists))

	steps, err := f.ops.Steps.List(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, steps.Len(), "no step saved for the rejected flow")
}

func TestApplyEdition(t *testing.T) {
	f := newFixture(t)
	flow := f.flow("Kanban", "Todo", "Doing", "Blocked")
	board := f.board("Main", flow)
	task := f.task("write")
	f.attach(task, board, "Doing")

	res, err := f.ops.Flows.ApplyEdition(f.ctx, flow, parseEdition(t, `
name: Team kanban
default: Done
steps:
  - action: add
    name: Backlog
  - action: keep
    name: Todo
  - action: edit
    name: Doing
    newName: In progress
    color: yellow
  - action: remove
    name: Blocked
  - action: add
    name: Done
`))
	require.NoError(t, err)

	updated := res.Flow
	assert.Equal(t, "Team kanban", updated.Name)
	assert.Equal(t, []string{"Backlog", "Todo", "In progress", "Done"}, names(updated.OrderedSteps()))
	def, _ := updated.DefaultStep()
	assert.Equal(t, "Done", def.Name)
	assert.Equal(t, []string{"Backlog", "Done"}, names(res.Added))
	assert.Equal(t, []string{"In progress"}, names(res.Edited))
	assert.Equal(t, []string{"Blocked"}, names(res.Removed))
	assert.Len(t, res.AffectedIDs(), 5)

	// The edited step keeps its id, so the task stays on it.
	assert.Equal(t, "In progress", f.stepOf(task))
	assert.Equal(t, flow.Order[1], updated.Order[2])

	blocked, ok, err := f.ops.Steps.Get(f.ctx, flow.Order[2])
	require.NoError(t, err)
	assert.False(t, ok, "removed step %v is deleted", blocked)

	reloaded := f.reloadBoard(board.ID)
	assert.Equal(t, updated.Order, reloaded.Flow.Order)
}

func TestApplyEdition_DefaultKeptOrCleared(t *testing.T) {
	f := newFixture(t)
	flow := f.flow("Kanban", "Todo", "Done")

	res, err := f.ops.Flows.ApplyEdition(f.ctx, flow, parseEdition(t, `
name: Kanban
steps:
  - action: keep
    name: Done
  - action: keep
    name: Todo
`))
	require.NoError(t, err)
	def, ok := res.Flow.DefaultStep()
	require.True(t, ok)
	assert.Equal(t, "Todo", def.Name)
	assert.Equal(t, []string{"Done", "Todo"}, names(res.Flow.OrderedSteps()))

	res, err = f.ops.Flows.ApplyEdition(f.ctx, res.Flow, parseEdition(t, `
name: Kanban
steps:
  - action: keep
    name: Done
  - action: remove
    name: Todo
`))
	require.NoError(t, err)
	assert.Empty(t, res.Flow.DefaultStepID)
}

func TestApplyEdition_RejectedBeforeAnyWrite(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code entity.ErrorCode
	}{
		{
			name: "default is removed",
			doc: `
name: Kanban
default: Doing
steps:
  - action: add
    name: New
  - action: keep
    name: Todo
  - action: remove
    name: Doing
`,
			code: entity.ErrCodeInvalidEdition,
		},
		{
			name: "unknown step",
			doc: `
name: Kanban
steps:
  - action: add
    name: New
  - action: keep
    name: Todo
  - action: keep
    name: Doing
  - action: keep
    name: Review
`,
			code: entity.ErrCodeInvalidEdition,
		},
		{
			name: "step not mentioned",
			doc: `
name: Kanban
steps:
  - action: add
    name: New
  - action: keep
    name: Todo
`,
			code: entity.ErrCodeInvalidEdition,
		},
		{
			name: "removed step still has tasks",
			doc: `
name: Kanban
steps:
  - action: add
    name: New
  - action: edit
    name: Todo
    newName: Renamed
  - action: remove
    name: Doing
`,
			code: entity.ErrCodeStepInUse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			flow := f.flow("Kanban", "Todo", "Doing")
			board := f.board("Main", flow)
			task := f.task("write")
			f.attach(task, board, "Doing")

			stepsBefore, err := f.ops.Steps.List(f.ctx)
			require.NoError(t, err)

			_, err = f.ops.Flows.ApplyEdition(f.ctx, flow, decodeEdition(t, tt.doc))
			require.Error(t, err)
			assert.Equal(t, tt.code, entity.CodeOf(err))

			stepsAfter, err := f.ops.Steps.List(f.ctx)
			require.NoError(t, err)
			assert.Equal(t, names(stepsBefore.Values()), names(stepsAfter.Values()))
			stored, err := f.ops.Flows.GetOrFail(f.ctx, flow.ID)
			require.NoError(t, err)
			assert.Equal(t, flow.Order, stored.Order)
			assert.Equal(t, "Doing", f.stepOf(task))
		})
	}
}

func TestApplyEdition_StepInUseCount(t *testing.T) {
	f := newFixture(t)
	flow := f.flow("Kanban", "Todo", "Doing")
	one := f.board("One", flow)
	two := f.board("Two", flow)
	f.attach(f.task("a"), one, "Doing")
	f.attach(f.task("b"), two, "Doing")
	f.attach(f.task("c"), two, "Todo")

	_, err := f.ops.Flows.ApplyEdition(f.ctx, flow, parseEdition(t, `
name: Kanban
steps:
  - action: keep
    name: Todo
  - action: remove
    name: Doing
`))
	var e *entity.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, entity.ErrCodeStepInUse, e.Code)
	assert.Equal(t, 2, e.Count)
}

func TestFlowBoardsAndSteps(t *testing.T) {
	f := newFixture(t)
	flow := f.flow("Kanban", "Todo", "Done")
	other := f.flow("Other", "X")
	a := f.board("A", flow)
	f.board("B", other)
	c := f.board("C", flow)

	boards, err := f.ops.Flows.Boards(f.ctx, flow)
	require.NoError(t, err)
	assert.Equal(t, []entity.ID{a.ID, c.ID}, boards.Keys())

	assert.Equal(t, []string{"Todo", "Done"}, names(f.ops.Flows.Steps(flow).Values()))
}

func TestRenameFlow(t *testing.T) {
	f := newFixture(t)
	flow := f.flow("Kanban", "Todo")

	name := "Board flow"
	renamed, err := f.ops.Flows.Rename(f.ctx, flow, &name, nil)
	require.NoError(t, err)
	assert.Equal(t, "Board flow", renamed.Name)
	assert.Equal(t, flow.Order, renamed.Order)
	assert.False(t, renamed.UpdatedAt.IsZero())

	empty := ""
	_, err = f.ops.Flows.Rename(f.ctx, flow, &empty, nil)
	assert.True(t, entity.HasCode(err, entity.ErrCodeInvalidInput))
}

func TestStepFilters(t *testing.T) {
	f := newFixture(t)
	flow := f.flow("Kanban", "Todo", "Done")
	f.flow("Other", "Todo")

	all, err := f.ops.Steps.GetCollectionWithFilters(f.ctx, StepFilters{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Len())

	inFlow, err := f.ops.Steps.GetCollectionWithFilters(f.ctx, StepFilters{Flow: flow})
	require.NoError(t, err)
	assert.Equal(t, []string{"Todo", "Done"}, names(inFlow.Values()))

	_, err = f.ops.Steps.GetOrFailWithFilters(f.ctx, "todo", StepFilters{})
	assert.True(t, entity.IsNotUnique(err))

	step, err := f.ops.Steps.GetOrFailWithFilters(f.ctx, "todo", StepFilters{Flow: flow})
	require.NoError(t, err)
	assert.Equal(t, flow.Order[0], step.ID)
}
