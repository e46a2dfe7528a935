package render

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"taskman/internal/task"
)

// Fixed markup.
const (
	NoTasks       = "No tasks found."
	NoTasksHTML   = `<div class="no-tasks">` + NoTasks + `</div>`
	NoDescription = "No description"
)

// ListOptions controls how a task list is rendered.
type ListOptions struct {
	Locale Locale

	// Filter is carried through the row links so actions keep the selection.
	Filter task.Filter
}

// TaskList renders the filtered tasks, or the empty notice.
func TaskList(tasks []task.Task, opts ListOptions) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, TaskListHTML(tasks, opts))
		return err
	})
}

// TaskListHTML is TaskList as a string.
func TaskListHTML(tasks []task.Task, opts ListOptions) string {
	if len(tasks) == 0 {
		return NoTasksHTML
	}
	var b strings.Builder
	for _, t := range tasks {
		writeTaskItem(&b, t, opts)
	}
	return b.String()
}

func writeTaskItem(b *strings.Builder, t task.Task, opts ListOptions) {
	class := "task-item"
	checked := ""
	if t.IsCompleted() {
		class += " completed"
		checked = " checked"
	}

	description := EscapeHTML(t.Description)
	if description == "" {
		description = NoDescription
	}

	id := EscapeHTML(t.ID)
	base := "/tasks/" + url.PathEscape(t.ID)
	query := FilterQuery(opts.Filter)

	fmt.Fprintf(b, `<div class="%s" data-id="%s" data-status="%s" data-priority="%s">`+"\n",
		class, id, EscapeHTML(string(t.Status)), EscapeHTML(string(t.Priority)))
	b.WriteString(`  <div class="task-header">` + "\n")
	fmt.Fprintf(b, `    <form class="task-toggle" method="post" action="%s">`+"\n", EscapeHTML(withQuery(base+"/status", query)))
	fmt.Fprintf(b, `      <input type="checkbox" class="task-checkbox" name="completed" aria-label="Completed"%s onchange="this.form.submit()">`+"\n", checked)
	b.WriteString(`    </form>` + "\n")
	fmt.Fprintf(b, `    <h3 class="task-title">%s</h3>`+"\n", EscapeHTML(t.Title))
	b.WriteString(`    <div class="task-actions">` + "\n")
	fmt.Fprintf(b, `      <a class="btn-edit" href="%s">Edit</a>`+"\n", EscapeHTML(withQuery("/", editQuery(t.ID, query))))
	fmt.Fprintf(b, `      <a class="btn-delete" href="%s">Delete</a>`+"\n", EscapeHTML(withQuery(base+"/delete", query)))
	b.WriteString(`    </div>` + "\n")
	b.WriteString(`  </div>` + "\n")
	b.WriteString(`  <div class="task-body">` + "\n")
	fmt.Fprintf(b, `    <p class="task-description">%s</p>`+"\n", description)
	b.WriteString(`    <div class="task-meta">` + "\n")
	fmt.Fprintf(b, `      <span class="task-due-date">%s</span>`+"\n", EscapeHTML(opts.Locale.FormatDueDate(t)))
	fmt.Fprintf(b, `      <span class="task-priority %s">%s</span>`+"\n",
		EscapeHTML(string(t.Priority)), EscapeHTML(task.Capitalize(string(t.Priority))))
	b.WriteString(`    </div>` + "\n")
	b.WriteString(`  </div>` + "\n")
	b.WriteString(`</div>` + "\n")
}

// FilterQuery encodes the non-default filter selections as a query string.
func FilterQuery(f task.Filter) url.Values {
	q := url.Values{}
	if f.IsAll() {
		return q
	}
	if f.Status != "" && f.Status != task.All {
		q.Set("status", f.Status)
	}
	if f.Priority != "" && f.Priority != task.All {
		q.Set("priority", f.Priority)
	}
	return q
}

func editQuery(id string, q url.Values) url.Values {
	out := url.Values{}
	for k, v := range q {
		out[k] = v
	}
	out.Set("edit", id)
	return out
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
