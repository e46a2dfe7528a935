// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"taskman/internal/render"
	"taskman/internal/task"
)

// Formatter writes task rows to one writer. Colors are used only when the
// writer is a terminal.
type Formatter struct {
	w      io.Writer
	locale render.Locale

	done     lipgloss.Style
	muted    lipgloss.Style
	priority map[task.Priority]lipgloss.Style
}

// NewFormatter creates a Formatter for w.
func NewFormatter(w io.Writer, locale render.Locale) *Formatter {
	r := lipgloss.NewRenderer(w)
	return &Formatter{
		w:      w,
		locale: locale,
		done:   r.NewStyle().Strikethrough(true).Faint(true),
		muted:  r.NewStyle().Faint(true),
		priority: map[task.Priority]lipgloss.Style{
			task.PriorityLow:    r.NewStyle().Foreground(lipgloss.Color("2")),
			task.PriorityMedium: r.NewStyle().Foreground(lipgloss.Color("3")),
			task.PriorityHigh:   r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		},
	}
}

// Task formats one task line.
// Format: "{N:>4}  [ ] {TITLE}  {Priority}  {due}\n", then the description
// indented on its own line when present.
func (f *Formatter) Task(num int, t task.Task) {
	check := "[ ]"
	title := normalizeTitle(t.Title)
	if t.IsCompleted() {
		check = "[x]"
		title = f.done.Render(title)
	}
	prio := f.priority[t.Priority].Render(task.Capitalize(string(t.Priority)))
	due := f.muted.Render(f.locale.FormatDueDate(t))

	fmt.Fprintf(f.w, "%4d  %s %s  %s  %s\n", num, check, title, prio, due)
	if t.Description != "" {
		fmt.Fprintf(f.w, "            %s\n", f.muted.Render(normalizeTitle(t.Description)))
	}
}

// normalizeTitle keeps a title on one line.
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	return strings.ReplaceAll(title, "\n", " ")
}
