package edition

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/todo-manager/internal/entity"
)

const kanban = `
name: Kanban
description: team board
default: Todo
steps:
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
    color: green
`

func TestParse_Valid(t *testing.T) {
	ed, err := Parse([]byte(kanban))
	require.NoError(t, err)

	assert.Equal(t, "Kanban", ed.Name)
	require.NotNil(t, ed.Description)
	assert.Equal(t, "team board", *ed.Description)
	assert.Equal(t, "Todo", ed.Default)
	require.Len(t, ed.Steps, 4)

	assert.Equal(t, ActionEdit, ed.Steps[1].Action)
	assert.Equal(t, "In progress", ed.Steps[1].ResultName())
	require.NotNil(t, ed.Steps[1].Color)
	assert.Equal(t, entity.ColorYellow, *ed.Steps[1].Color)
	assert.Nil(t, ed.Steps[1].Description)

	assert.False(t, ed.Steps[2].Survives())
	assert.Equal(t, "Done", ed.Steps[3].ResultName())
}

func TestParse_SchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ``},
		{"not yaml", "name: [oops"},
		{"missing name", "steps: []"},
		{"unknown action", "name: F\nsteps:\n  - action: rename\n    name: A\n"},
		{"unknown color", "name: F\nsteps:\n  - action: add\n    name: A\n    color: purple\n"},
		{"unknown field", "name: F\nowner: me\nsteps: []\n"},
		{"empty step name", "name: F\nsteps:\n  - action: add\n    name: \"\"\n"},
		{"steps not a list", "name: F\nsteps: Todo\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, entity.HasCode(err, entity.ErrCodeInvalidEdition), "got %v", err)
		})
	}
}

func TestValidate(t *testing.T) {
	color := entity.Color("purple")
	tests := []struct {
		name  string
		ed    FlowEdition
		codes []string
	}{
		{
			name: "valid",
			ed: FlowEdition{Name: "F", Default: "A", Steps: []StepEdition{
				{Action: ActionAdd, Name: "A"},
				{Action: ActionRemove, Name: "B"},
			}},
		},
		{
			name:  "empty name",
			ed:    FlowEdition{Name: " "},
			codes: []string{ErrFlowNameEmpty},
		},
		{
			name: "duplicate resulting names",
			ed: FlowEdition{Name: "F", Steps: []StepEdition{
				{Action: ActionKeep, Name: "A"},
				{Action: ActionEdit, Name: "B", NewName: "A"},
			}},
			codes: []string{ErrDuplicateStepName},
		},
		{
			name: "rename frees the old name",
			ed: FlowEdition{Name: "F", Steps: []StepEdition{
				{Action: ActionEdit, Name: "A", NewName: "B"},
				{Action: ActionAdd, Name: "A"},
			}},
		},
		{
			name: "default removed",
			ed: FlowEdition{Name: "F", Default: "B", Steps: []StepEdition{
				{Action: ActionKeep, Name: "A"},
				{Action: ActionRemove, Name: "B"},
			}},
			codes: []string{ErrInvalidDefault},
		},
		{
			name: "default removed and re-added",
			ed: FlowEdition{Name: "F", Default: "B", Steps: []StepEdition{
				{Action: ActionRemove, Name: "B"},
				{Action: ActionAdd, Name: "B"},
			}},
		},
		{
			name: "default unknown",
			ed: FlowEdition{Name: "F", Default: "Z", Steps: []StepEdition{
				{Action: ActionKeep, Name: "A"},
			}},
			codes: []string{ErrInvalidDefault},
		},
		{
			name: "step mentioned twice",
			ed: FlowEdition{Name: "F", Steps: []StepEdition{
				{Action: ActionKeep, Name: "A"},
				{Action: ActionRemove, Name: "A"},
			}},
			codes: []string{ErrStepMentionedTwice},
		},
		{
			name: "newName outside edit and bad color",
			ed: FlowEdition{Name: "F", Steps: []StepEdition{
				{Action: ActionKeep, Name: "A", NewName: "B", Color: &color},
			}},
			codes: []string{ErrNewNameNotAllowed, ErrInvalidColor},
		},
		{
			name: "invalid action and empty step",
			ed: FlowEdition{Name: "F", Steps: []StepEdition{
				{Action: "move", Name: "A"},
				{Action: ActionAdd},
			}},
			codes: []string{ErrInvalidAction, ErrStepNameEmpty},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(&tt.ed)
			var codes []string
			for _, e := range errs {
				codes = append(codes, e.Code)
			}
			assert.Equal(t, tt.codes, codes)
		})
	}
}

func TestCheck_FoldsErrors(t *testing.T) {
	err := Check(&FlowEdition{Name: "", Default: "X"})
	require.Error(t, err)
	assert.Equal(t, entity.ErrCodeInvalidEdition, entity.CodeOf(err))
	assert.Contains(t, err.Error(), ErrFlowNameEmpty)
	assert.Contains(t, err.Error(), ErrInvalidDefault)

	assert.NoError(t, Check(&FlowEdition{Name: "ok"}))
}

func TestFromFlow_RoundTrip(t *testing.T) {
	todo := &entity.FlowStep{Base: entity.Base{ID: "s1", Name: "Todo"}, Color: entity.ColorRed}
	done := &entity.FlowStep{Base: entity.Base{ID: "s2", Name: "Done"}}
	flow := &entity.Flow{
		Base:          entity.Base{ID: "f1", Name: "Simple", Description: "two steps"},
		Steps:         entity.NewCollection(done, todo),
		Order:         []entity.ID{"s1", "s2"},
		DefaultStepID: "s2",
	}

	ed := FromFlow(flow)
	assert.Equal(t, "Done", ed.Default)
	require.Len(t, ed.Steps, 2)
	assert.Equal(t, StepEdition{Action: ActionKeep, Name: "Todo"}, ed.Steps[0])

	data, err := Marshal(ed)
	require.NoError(t, err)
	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, ed, parsed)
}

func TestFromStepNames(t *testing.T) {
	ed := FromStepNames(" Simple ", []string{"Todo", "Done"}, "Todo")
	assert.Equal(t, "Simple", ed.Name)
	assert.NoError(t, Check(ed))
	assert.Equal(t, ActionAdd, ed.Steps[1].Action)
}

func TestSchemaColorsMatchEntityColors(t *testing.T) {
	line := regexp.MustCompile(`(?s)#Color:(.*?)\n\n`).FindStringSubmatch(schemaCUE)
	require.Len(t, line, 2)
	names := regexp.MustCompile(`"(\w+)"`).FindAllStringSubmatch(line[1], -1)

	var colors []entity.Color
	for _, n := range names {
		colors = append(colors, entity.Color(n[1]))
	}
	assert.Equal(t, entity.Colors, colors)
}
