package render

import (
	"fmt"
	"strings"

	"github.com/roach88/todo-manager/internal/entity"
	"github.com/roach88/todo-manager/internal/ops"
)

// section is a titled run of rows in a shared table.
type section struct {
	title string
	rows  [][]string
}

func entityRows[E entity.Entity](entities []E) [][]string {
	rows := make([][]string, len(entities))
	for i, e := range entities {
		meta := e.Meta()
		rows[i] = []string{meta.ID.String(), meta.Name}
	}
	return rows
}

// Removal lists everything plan touches, one section per kind: flows,
// steps, boards, deleted tasks, then detached tasks. Empty sections are
// left out.
func (r *Renderer) Removal(plan *ops.RemovalPlan) string {
	steps := make([][]string, len(plan.Steps))
	for i, step := range plan.Steps {
		steps[i] = []string{step.ID.String(), r.colorize(step.Color, step.Name)}
	}
	all := []section{
		{"Flows", entityRows(plan.Flows)},
		{"Steps", steps},
		{"Boards", entityRows(plan.Boards)},
		{"Tasks", entityRows(plan.Tasks)},
		{"Detached tasks", entityRows(plan.Orphaned)},
	}

	t := &table{}
	var sections []section
	for _, s := range all {
		if len(s.rows) == 0 {
			continue
		}
		sections = append(sections, s)
		for _, row := range s.rows {
			t.add(row...)
		}
	}
	lines := t.lines()
	width := t.width()

	var b strings.Builder
	next := 0
	for i, s := range sections {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(rule(fmt.Sprintf("%s (%d)", s.title, len(s.rows)), width))
		b.WriteByte('\n')
		for range s.rows {
			b.WriteString(lines[next])
			b.WriteByte('\n')
			next++
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}
