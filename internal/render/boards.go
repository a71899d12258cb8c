package render

import (
	"strconv"
	"strings"

	"github.com/roach88/todo-manager/internal/entity"
)

// Boards renders one line per board: id, flow, task count, name, date.
func (r *Renderer) Boards(boards []*entity.Board) string {
	t := &table{}
	for _, board := range boards {
		flow := noValue
		if board.Flow != nil {
			flow = board.Flow.Name
		}
		t.add(board.ID.String(), flow, strconv.Itoa(board.TaskCollection().Len()), board.Name, r.date(board.LastTouched()))
	}
	return strings.Join(t.lines(), "\n")
}

// BoardDetail renders a board with the number of tasks on each step of its
// flow. Tasks without a step are counted on a "-" line.
func (r *Renderer) BoardDetail(board *entity.Board) string {
	var b strings.Builder
	w := newFields(&b)
	flow := noValue
	if board.Flow != nil {
		flow = label(board.Flow)
	}
	r.writeMeta(w, &board.Base,
		[2]string{"Flow", flow},
		[2]string{"Tasks", strconv.Itoa(board.TaskCollection().Len())},
	)
	_ = w.Flush()
	writeDescription(&b, board.Description)

	counts := make(map[entity.ID]int)
	unassigned := 0
	for _, id := range board.TaskCollection().Keys() {
		if step, ok := board.TaskStep(id); ok {
			counts[step.ID]++
		} else {
			unassigned++
		}
	}

	t := &table{}
	if board.Flow != nil {
		for _, step := range board.Flow.OrderedSteps() {
			t.add(" ", r.stepName(step), strconv.Itoa(counts[step.ID]))
		}
	}
	if unassigned > 0 {
		t.add(" ", noValue, strconv.Itoa(unassigned))
	}
	if len(t.rows) > 0 {
		b.WriteString("\nSteps:\n")
		for _, line := range t.lines() {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}
