// Package render turns entities into terminal text and JSON views.
package render

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/roach88/todo-manager/internal/entity"
)

const (
	// DefaultDateFormat is used when Options.DateFormat is empty.
	DefaultDateFormat = "2006-01-02 15:04"

	ruleChar = "─"
	noValue  = "-"
)

// Options control text rendering.
type Options struct {
	AllowColor bool
	DateFormat string
	// Location for dates; nil means time.Local.
	Location *time.Location
}

// Renderer formats views as text.
type Renderer struct {
	opts Options
}

// New returns a Renderer.
func New(opts Options) *Renderer {
	if opts.DateFormat == "" {
		opts.DateFormat = DefaultDateFormat
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Renderer{opts: opts}
}

func (r *Renderer) date(t time.Time) string {
	if t.IsZero() {
		return noValue
	}
	return t.In(r.opts.Location).Format(r.opts.DateFormat)
}

// colorize wraps s in an SGR sequence when colors are allowed.
func (r *Renderer) colorize(c entity.Color, s string) string {
	code := c.ANSICode()
	if !r.opts.AllowColor || code == 0 {
		return s
	}
	return fmt.Sprintf("\x1b[%dm%s\x1b[0m", code, s)
}

func (r *Renderer) stepName(step *entity.FlowStep) string {
	if step == nil {
		return noValue
	}
	return r.colorize(step.Color, step.Name)
}

// newFields returns a tabwriter for "Key: value" detail lines. Values are
// the last cell and may carry color escapes.
func newFields(b *strings.Builder) *tabwriter.Writer {
	return tabwriter.NewWriter(b, 0, 0, 1, ' ', 0)
}

func field(w *tabwriter.Writer, key, value string) {
	fmt.Fprintf(w, "%s:\t%s\n", key, value)
}

func orDash(s string) string {
	if s == "" {
		return noValue
	}
	return s
}

func label(e entity.Entity) string {
	if e == nil {
		return noValue
	}
	meta := e.Meta()
	return fmt.Sprintf("%s [%s]", meta.Name, meta.ID)
}

// IDs lists one id per line.
func IDs[E entity.Entity](entities []E) string {
	var b strings.Builder
	for _, e := range entities {
		b.WriteString(e.Meta().ID.String())
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// IDList lists ids one per line.
func IDList(ids []entity.ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, "\n")
}

func writeDescription(b *strings.Builder, description string) {
	if description == "" {
		return
	}
	b.WriteString("\n")
	b.WriteString(description)
	b.WriteString("\n")
}

func (r *Renderer) writeMeta(w *tabwriter.Writer, meta *entity.Base, extra ...[2]string) {
	field(w, "ID", orDash(meta.ID.String()))
	field(w, "Name", meta.Name)
	for _, kv := range extra {
		field(w, kv[0], kv[1])
	}
	field(w, "Created", r.date(meta.CreatedAt))
	field(w, "Updated", r.date(meta.UpdatedAt))
}
