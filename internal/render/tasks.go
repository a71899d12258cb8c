package render

import (
	"context"
	"strings"

	"github.com/roach88/todo-manager/internal/entity"
	"github.com/roach88/todo-manager/internal/ops"
)

// TaskRow is a task with its position. Board and Step are nil for orphans.
type TaskRow struct {
	Task  *entity.Task
	Board *entity.Board
	Step  *entity.FlowStep
}

// TaskGroup is a run of rows on the same board.
type TaskGroup struct {
	Board *entity.Board
	Rows  []TaskRow
}

// TaskRows sorts tasks and looks up the board and step of each.
func TaskRows(ctx context.Context, tasks *ops.TaskOperators, list []*entity.Task) ([]TaskRow, error) {
	sorted, err := tasks.Sort(ctx, list)
	if err != nil {
		return nil, err
	}
	rows := make([]TaskRow, 0, len(sorted))
	for _, task := range sorted {
		row, err := NewTaskRow(ctx, tasks, task)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// NewTaskRow looks up the board and step of a single task.
func NewTaskRow(ctx context.Context, tasks *ops.TaskOperators, task *entity.Task) (TaskRow, error) {
	board, err := tasks.Board(ctx, task)
	if err != nil {
		return TaskRow{}, err
	}
	row := TaskRow{Task: task, Board: board}
	if board != nil {
		row.Step, _ = board.TaskStep(task.ID)
	}
	return row, nil
}

// GroupRows splits sorted rows into runs sharing a board.
func GroupRows(rows []TaskRow) []TaskGroup {
	var groups []TaskGroup
	for _, row := range rows {
		n := len(groups)
		if n == 0 || boardID(groups[n-1].Board) != boardID(row.Board) {
			groups = append(groups, TaskGroup{Board: row.Board})
			n++
		}
		groups[n-1].Rows = append(groups[n-1].Rows, row)
	}
	return groups
}

func boardID(b *entity.Board) entity.ID {
	if b == nil {
		return ""
	}
	return b.ID
}

// Tasks renders groups as one table with a rule above each board.
func (r *Renderer) Tasks(groups []TaskGroup) string {
	t := &table{}
	for _, g := range groups {
		for _, row := range g.Rows {
			t.add(row.Task.ID.String(), r.stepName(row.Step), row.Task.Name, r.date(row.Task.LastTouched()))
		}
	}
	lines := t.lines()
	width := t.width()

	var b strings.Builder
	next := 0
	for i, g := range groups {
		if i > 0 {
			b.WriteByte('\n')
		}
		title := "No board"
		if g.Board != nil {
			title = label(g.Board)
		}
		b.WriteString(rule(title, width))
		b.WriteByte('\n')
		for range g.Rows {
			b.WriteString(lines[next])
			b.WriteByte('\n')
			next++
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// TaskDetail renders one task.
func (r *Renderer) TaskDetail(row TaskRow) string {
	var b strings.Builder
	w := newFields(&b)
	board := noValue
	if row.Board != nil {
		board = label(row.Board)
	}
	r.writeMeta(w, &row.Task.Base,
		[2]string{"Board", board},
		[2]string{"Step", r.stepName(row.Step)},
	)
	_ = w.Flush()
	writeDescription(&b, row.Task.Description)
	return strings.TrimSuffix(b.String(), "\n")
}
