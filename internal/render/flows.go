package render

import (
	"strings"

	"github.com/roach88/todo-manager/internal/entity"
)

// Flows renders one line per flow: id, name, the ordered steps, date.
func (r *Renderer) Flows(flows []*entity.Flow) string {
	t := &table{}
	for _, flow := range flows {
		t.add(flow.ID.String(), flow.Name, r.stepChain(flow), r.date(flow.LastTouched()))
	}
	return strings.Join(t.lines(), "\n")
}

func (r *Renderer) stepChain(flow *entity.Flow) string {
	steps := flow.OrderedSteps()
	if len(steps) == 0 {
		return noValue
	}
	names := make([]string, len(steps))
	for i, step := range steps {
		names[i] = r.stepName(step)
	}
	return strings.Join(names, " > ")
}

// FlowDetail renders a flow and its steps in order; the default step is
// marked with "*".
func (r *Renderer) FlowDetail(flow *entity.Flow) string {
	var b strings.Builder
	w := newFields(&b)
	def, _ := flow.DefaultStep()
	r.writeMeta(w, &flow.Base, [2]string{"Default", r.stepName(def)})
	_ = w.Flush()
	writeDescription(&b, flow.Description)

	steps := flow.OrderedSteps()
	if len(steps) == 0 {
		return strings.TrimSuffix(b.String(), "\n")
	}
	t := &table{}
	for _, step := range steps {
		marker := " "
		if step.ID == flow.DefaultStepID {
			marker = "*"
		}
		t.add(marker, r.stepName(step), step.ID.String(), step.Description)
	}
	b.WriteString("\nSteps:\n")
	for _, line := range t.lines() {
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}
