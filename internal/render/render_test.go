package render

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/todo-manager/internal/config"
	"github.com/roach88/todo-manager/internal/entity"
	"github.com/roach88/todo-manager/internal/ops"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, 1, 2, hour, minute, 0, 0, time.UTC)
}

type sample struct {
	flow    *entity.Flow
	board   *entity.Board
	steps   []*entity.FlowStep
	tasks   []*entity.Task
	orphans []*entity.Task
}

func newSample() sample {
	todo := &entity.FlowStep{Base: entity.Base{ID: "step-1", Name: "todo", CreatedAt: at(8, 0)}}
	doing := &entity.FlowStep{Base: entity.Base{ID: "step-2", Name: "doing", Description: "In progress", CreatedAt: at(8, 0)}, Color: entity.ColorYellow}
	done := &entity.FlowStep{Base: entity.Base{ID: "step-3", Name: "done", CreatedAt: at(8, 0)}, Color: entity.ColorGreen}
	flow := &entity.Flow{
		Base:          entity.Base{ID: "flow-1", Name: "dev", Description: "Team flow", CreatedAt: at(8, 0)},
		Steps:         entity.NewCollection(todo, doing, done),
		Order:         []entity.ID{todo.ID, doing.ID, done.ID},
		DefaultStepID: todo.ID,
	}

	docs := &entity.Task{Base: entity.Base{ID: "task-1", Name: "Write docs", CreatedAt: at(10, 0)}}
	bug := &entity.Task{Base: entity.Base{ID: "task-2", Name: "Fix bug", Description: "Reproduce first.", CreatedAt: at(10, 5), UpdatedAt: at(11, 30)}}
	plan := &entity.Task{Base: entity.Base{ID: "task-3", Name: "Plan release", CreatedAt: at(12, 0)}}

	board := &entity.Board{
		Base:      entity.Base{ID: "board-1", Name: "Sprint", CreatedAt: at(9, 0)},
		Flow:      flow,
		Tasks:     entity.NewCollection(docs, bug),
		TaskSteps: map[entity.ID]entity.ID{docs.ID: todo.ID, bug.ID: done.ID},
	}
	return sample{
		flow:    flow,
		board:   board,
		steps:   []*entity.FlowStep{todo, doing, done},
		tasks:   []*entity.Task{docs, bug},
		orphans: []*entity.Task{plan},
	}
}

func (s sample) groups() []TaskGroup {
	return GroupRows([]TaskRow{
		{Task: s.tasks[0], Board: s.board, Step: s.steps[0]},
		{Task: s.tasks[1], Board: s.board, Step: s.steps[2]},
		{Task: s.orphans[0]},
	})
}

func plain() *Renderer {
	return New(Options{Location: time.UTC})
}

func golden(t *testing.T, name, got string) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(got))
}

func TestTasks_GroupedByBoard(t *testing.T) {
	golden(t, "tasks", plain().Tasks(newSample().groups()))
}

func TestTasks_Empty(t *testing.T) {
	assert.Equal(t, "", plain().Tasks(nil))
}

func TestTasks_ColorKeepsAlignment(t *testing.T) {
	r := New(Options{AllowColor: true, Location: time.UTC})
	out := r.Tasks(newSample().groups())

	assert.Contains(t, out, "\x1b[32mdone\x1b[0m Fix bug      2024-01-02 11:30")
	assert.Contains(t, out, "task-1 todo Write docs")
	assert.Equal(t, plain().Tasks(newSample().groups()), sgrPattern.ReplaceAllString(out, ""))
}

func TestTaskDetail(t *testing.T) {
	s := newSample()
	golden(t, "task_detail", plain().TaskDetail(TaskRow{Task: s.tasks[1], Board: s.board, Step: s.steps[2]}))
}

func TestTaskDetail_Orphan(t *testing.T) {
	out := plain().TaskDetail(TaskRow{Task: newSample().orphans[0]})
	assert.Contains(t, out, "Board:   -\n")
	assert.Contains(t, out, "Step:    -\n")
	assert.Contains(t, out, "Updated: -")
}

func TestBoards(t *testing.T) {
	s := newSample()
	assert.Equal(t, "board-1 dev 2 Sprint 2024-01-02 09:00", plain().Boards([]*entity.Board{s.board}))
}

func TestBoardDetail(t *testing.T) {
	golden(t, "board_detail", plain().BoardDetail(newSample().board))
}

func TestFlows(t *testing.T) {
	s := newSample()
	assert.Equal(t, "flow-1 dev todo > doing > done 2024-01-02 08:00", plain().Flows([]*entity.Flow{s.flow}))

	empty := &entity.Flow{Base: entity.Base{ID: "flow-2", Name: "empty", CreatedAt: at(8, 0)}}
	assert.Equal(t, "flow-2 empty - 2024-01-02 08:00", plain().Flows([]*entity.Flow{empty}))
}

func TestFlowDetail(t *testing.T) {
	golden(t, "flow_detail", plain().FlowDetail(newSample().flow))
}

func TestConfiguration(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.Path = "/data/tm"
	cfg.View.AllowColor = false
	cfg.Files = []string{"/home/u/.config/todo-manager.yml"}
	golden(t, "configuration", plain().Configuration(cfg))

	cfg.Files = nil
	assert.Contains(t, plain().Configuration(cfg), "No configuration files read.")
}

func TestIDs(t *testing.T) {
	s := newSample()
	assert.Equal(t, "task-1\ntask-2", IDs(s.tasks))
	assert.Equal(t, "", IDs([]*entity.Task{}))
	assert.Equal(t, "a\nb", IDList([]entity.ID{"a", "b"}))
}

func TestDateFormat(t *testing.T) {
	r := New(Options{DateFormat: "02/01", Location: time.UTC})
	assert.Equal(t, "02/01", r.date(at(0, 0)))
	assert.Equal(t, "-", r.date(time.Time{}))
}

func TestViews_JSON(t *testing.T) {
	s := newSample()

	data, err := json.Marshal(NewTaskView(TaskRow{Task: s.orphans[0]}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"task-3","name":"Plan release","createdAt":"2024-01-02T12:00:00Z"}`, string(data))

	bv := NewBoardView(s.board)
	require.Len(t, bv.Tasks, 2)
	assert.Equal(t, &Ref{ID: "flow-1", Name: "dev"}, bv.Flow)
	assert.Equal(t, &Ref{ID: "step-3", Name: "done"}, bv.Tasks[1].Step)

	fv := NewFlowView(s.flow)
	assert.Equal(t, &Ref{ID: "step-1", Name: "todo"}, fv.DefaultStep)
	require.Len(t, fv.Steps, 3)
	assert.Equal(t, entity.ColorYellow, fv.Steps[1].Color)
}

func TestGroupRows_SplitsRuns(t *testing.T) {
	groups := newSample().groups()
	require.Len(t, groups, 2)
	assert.Equal(t, entity.ID("board-1"), groups[0].Board.ID)
	assert.Len(t, groups[0].Rows, 2)
	assert.Nil(t, groups[1].Board)
}

func TestRemoval_FlowCascade(t *testing.T) {
	s := newSample()
	plan := &ops.RemovalPlan{
		Flows:    []*entity.Flow{s.flow},
		Steps:    s.steps,
		Boards:   []*entity.Board{s.board},
		Orphaned: s.tasks,
	}

	want := "── Flows (1) ─────\n" +
		"flow-1  dev\n" +
		"\n" +
		"── Steps (3) ─────\n" +
		"step-1  todo\n" +
		"step-2  doing\n" +
		"step-3  done\n" +
		"\n" +
		"── Boards (1) ────\n" +
		"board-1 Sprint\n" +
		"\n" +
		"── Detached tasks (2) ──\n" +
		"task-1  Write docs\n" +
		"task-2  Fix bug"
	assert.Equal(t, want, plain().Removal(plan))
}

func TestRemoval_TasksOnly(t *testing.T) {
	s := newSample()
	got := plain().Removal(&ops.RemovalPlan{Tasks: s.orphans})
	assert.Equal(t, "── Tasks (1) ──────\ntask-3 Plan release", got)
}
