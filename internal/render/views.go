package render

import (
	"time"

	"github.com/roach88/todo-manager/internal/entity"
)

// Views are the JSON shapes printed with --format json.

type Ref struct {
	ID   entity.ID `json:"id"`
	Name string    `json:"name"`
}

func refOf(e entity.Entity) *Ref {
	if e == nil {
		return nil
	}
	meta := e.Meta()
	return &Ref{ID: meta.ID, Name: meta.Name}
}

type TaskView struct {
	ID          entity.ID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Board       *Ref      `json:"board,omitempty"`
	Step        *Ref      `json:"step,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}

func NewTaskView(row TaskRow) TaskView {
	v := TaskView{
		ID:          row.Task.ID,
		Name:        row.Task.Name,
		Description: row.Task.Description,
		CreatedAt:   row.Task.CreatedAt,
		UpdatedAt:   row.Task.UpdatedAt,
	}
	if row.Board != nil {
		v.Board = refOf(row.Board)
	}
	if row.Step != nil {
		v.Step = refOf(row.Step)
	}
	return v
}

func NewTaskViews(rows []TaskRow) []TaskView {
	views := make([]TaskView, len(rows))
	for i, row := range rows {
		views[i] = NewTaskView(row)
	}
	return views
}

type StepView struct {
	ID          entity.ID    `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Color       entity.Color `json:"color,omitempty"`
}

type FlowView struct {
	ID          entity.ID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	DefaultStep *Ref       `json:"defaultStep,omitempty"`
	Steps       []StepView `json:"steps"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt,omitzero"`
}

func NewFlowView(flow *entity.Flow) FlowView {
	v := FlowView{
		ID:          flow.ID,
		Name:        flow.Name,
		Description: flow.Description,
		Steps:       []StepView{},
		CreatedAt:   flow.CreatedAt,
		UpdatedAt:   flow.UpdatedAt,
	}
	if def, ok := flow.DefaultStep(); ok {
		v.DefaultStep = refOf(def)
	}
	for _, step := range flow.OrderedSteps() {
		v.Steps = append(v.Steps, StepView{ID: step.ID, Name: step.Name, Description: step.Description, Color: step.Color})
	}
	return v
}

func NewFlowViews(flows []*entity.Flow) []FlowView {
	views := make([]FlowView, len(flows))
	for i, flow := range flows {
		views[i] = NewFlowView(flow)
	}
	return views
}

// BoardTaskView is a task on a board and its step, if assigned.
type BoardTaskView struct {
	Task Ref  `json:"task"`
	Step *Ref `json:"step,omitempty"`
}

type BoardView struct {
	ID          entity.ID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Flow        *Ref            `json:"flow,omitempty"`
	Tasks       []BoardTaskView `json:"tasks"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt,omitzero"`
}

func NewBoardView(board *entity.Board) BoardView {
	v := BoardView{
		ID:          board.ID,
		Name:        board.Name,
		Description: board.Description,
		Tasks:       []BoardTaskView{},
		CreatedAt:   board.CreatedAt,
		UpdatedAt:   board.UpdatedAt,
	}
	if board.Flow != nil {
		v.Flow = refOf(board.Flow)
	}
	for _, task := range board.TaskCollection().Values() {
		tv := BoardTaskView{Task: Ref{ID: task.ID, Name: task.Name}}
		if step, ok := board.TaskStep(task.ID); ok {
			tv.Step = refOf(step)
		}
		v.Tasks = append(v.Tasks, tv)
	}
	return v
}

func NewBoardViews(boards []*entity.Board) []BoardView {
	views := make([]BoardView, len(boards))
	for i, board := range boards {
		views[i] = NewBoardView(board)
	}
	return views
}
