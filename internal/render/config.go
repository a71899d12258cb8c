package render

import (
	"strconv"
	"strings"

	"github.com/roach88/todo-manager/internal/config"
)

// Configuration renders the effective configuration and where it came from.
func (r *Renderer) Configuration(cfg *config.Config) string {
	var b strings.Builder
	w := newFields(&b)
	field(w, "storage.type", cfg.Storage.Type)
	field(w, "storage.path", cfg.Storage.Path)
	field(w, "view.allowColor", strconv.FormatBool(cfg.View.AllowColor))
	field(w, "view.dateFormat", cfg.View.DateFormat)
	_ = w.Flush()

	if len(cfg.Files) == 0 {
		b.WriteString("\nNo configuration files read.")
		return b.String()
	}
	b.WriteString("\nFiles:\n")
	for _, f := range cfg.Files {
		b.WriteString("  ")
		b.WriteString(f)
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}
