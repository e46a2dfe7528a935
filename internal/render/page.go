package render

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/text/language"

	"taskman/internal/controller"
	"taskman/internal/task"
)

// Title is the page heading.
const Title = "Task Manager"

// PageData is everything the task page shows.
type PageData struct {
	Tasks  []task.Task
	Filter task.Filter
	Form   controller.Form
	Locale Locale

	// Flash is an alert raised by the previous action, shown once.
	Flash string
}

// ConfirmData describes a pending deletion.
type ConfirmData struct {
	Task   task.Task
	Filter task.Filter
	Locale Locale
}

// Page renders the whole task page: the form, the filters and the list.
func Page(d PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		writeHead(&b, d.Locale)
		if d.Flash != "" {
			fmt.Fprintf(&b, `<div class="alert" role="alert">%s</div>`+"\n", EscapeHTML(d.Flash))
		}
		writeForm(&b, d.Form, d.Filter)
		writeFilters(&b, d.Filter)
		b.WriteString(`<div id="task-list">` + "\n")
		b.WriteString(TaskListHTML(d.Tasks, ListOptions{Locale: d.Locale, Filter: d.Filter}))
		b.WriteString("\n</div>\n")
		writeFoot(&b)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// ConfirmPage asks the user to confirm a deletion.
func ConfirmPage(d ConfirmData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		query := FilterQuery(d.Filter)
		writeHead(&b, d.Locale)
		b.WriteString(`<div class="confirm">` + "\n")
		fmt.Fprintf(&b, `<p>%s</p>`+"\n", EscapeHTML(controller.MsgConfirmDelete))
		fmt.Fprintf(&b, `<p class="task-title">%s</p>`+"\n", EscapeHTML(d.Task.Title))
		fmt.Fprintf(&b, `<form method="post" action="%s">`+"\n",
			EscapeHTML(withQuery("/tasks/"+url.PathEscape(d.Task.ID)+"/delete", query)))
		b.WriteString(`<input type="hidden" name="confirm" value="yes">` + "\n")
		b.WriteString(`<button type="submit" class="btn-delete">Delete</button>` + "\n")
		fmt.Fprintf(&b, `<a class="btn-cancel" href="%s">Cancel</a>`+"\n", EscapeHTML(withQuery("/", query)))
		b.WriteString("</form>\n</div>\n")
		writeFoot(&b)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeHead(b *strings.Builder, loc Locale) {
	lang := "en"
	if tag := loc.Tag(); tag != language.Und {
		lang = tag.String()
	}
	b.WriteString("<!DOCTYPE html>\n")
	fmt.Fprintf(b, `<html lang="%s">`+"\n", EscapeHTML(lang))
	b.WriteString("<head>\n")
	b.WriteString(`<meta charset="utf-8">` + "\n")
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
	fmt.Fprintf(b, "<title>%s</title>\n", Title)
	b.WriteString("<style>\n" + stylesheet + "</style>\n")
	b.WriteString("</head>\n<body>\n")
	b.WriteString(`<div class="container">` + "\n")
	fmt.Fprintf(b, "<h1>%s</h1>\n", Title)
}

func writeFoot(b *strings.Builder) {
	b.WriteString("</div>\n</body>\n</html>\n")
}

func writeForm(b *strings.Builder, f controller.Form, filter task.Filter) {
	query := FilterQuery(filter)
	fmt.Fprintf(b, `<form id="add-task-form" method="post" action="%s">`+"\n", EscapeHTML(withQuery("/tasks", query)))
	fmt.Fprintf(b, `<input type="hidden" name="editing_id" value="%s">`+"\n", EscapeHTML(f.EditingID))
	b.WriteString(`<label for="title">Title</label>` + "\n")
	fmt.Fprintf(b, `<input type="text" id="title" name="title" value="%s"%s>`+"\n", EscapeHTML(f.Title), autofocus(f))
	b.WriteString(`<label for="description">Description</label>` + "\n")
	fmt.Fprintf(b, `<textarea id="description" name="description">%s</textarea>`+"\n", EscapeHTML(f.Description))
	b.WriteString(`<label for="due-date">Due date</label>` + "\n")
	fmt.Fprintf(b, `<input type="date" id="due-date" name="due_date" value="%s">`+"\n", EscapeHTML(f.DueDate))
	b.WriteString(`<label for="priority">Priority</label>` + "\n")
	b.WriteString(`<select id="priority" name="priority">` + "\n")
	for _, p := range task.Priorities {
		writeOption(b, string(p), task.Capitalize(string(p)), f.Priority == string(p))
	}
	b.WriteString("</select>\n")
	fmt.Fprintf(b, `<button type="submit" id="submit-btn">%s</button>`+"\n", EscapeHTML(f.SubmitLabel))
	if f.Editing() {
		fmt.Fprintf(b, `<a class="btn-cancel" href="%s">Cancel</a>`+"\n", EscapeHTML(withQuery("/", query)))
	}
	b.WriteString("</form>\n")
}

func writeFilters(b *strings.Builder, f task.Filter) {
	b.WriteString(`<form id="filters" method="get" action="/">` + "\n")
	b.WriteString(`<select id="filter-status" name="status" onchange="this.form.submit()">` + "\n")
	writeOption(b, task.All, "All statuses", isAll(f.Status))
	for _, s := range task.Statuses {
		writeOption(b, string(s), task.Capitalize(string(s)), f.Status == string(s))
	}
	b.WriteString("</select>\n")
	b.WriteString(`<select id="filter-priority" name="priority" onchange="this.form.submit()">` + "\n")
	writeOption(b, task.All, "All priorities", isAll(f.Priority))
	for _, p := range task.Priorities {
		writeOption(b, string(p), task.Capitalize(string(p)), f.Priority == string(p))
	}
	b.WriteString("</select>\n")
	b.WriteString(`<noscript><button type="submit">Apply</button></noscript>` + "\n")
	b.WriteString("</form>\n")
}

func writeOption(b *strings.Builder, value, label string, selected bool) {
	sel := ""
	if selected {
		sel = " selected"
	}
	fmt.Fprintf(b, `<option value="%s"%s>%s</option>`+"\n", EscapeHTML(value), sel, EscapeHTML(label))
}

func autofocus(f controller.Form) string {
	if f.Editing() {
		return " autofocus"
	}
	return ""
}

func isAll(v string) bool {
	return v == "" || v == task.All
}

const stylesheet = `body{font-family:system-ui,sans-serif;background:#f5f5f5;margin:0}
.container{max-width:720px;margin:2rem auto;padding:0 1rem}
form#add-task-form{display:grid;gap:.4rem;background:#fff;padding:1rem;border-radius:6px}
form#filters{margin:1rem 0;display:flex;gap:.5rem}
.alert{background:#fdecea;color:#611a15;padding:.6rem 1rem;border-radius:6px;margin-bottom:1rem}
.task-item{background:#fff;border-radius:6px;padding:.8rem 1rem;margin-bottom:.6rem}
.task-item.completed .task-title{text-decoration:line-through;color:#888}
.task-header{display:flex;align-items:center;gap:.6rem}
.task-title{flex:1;margin:0;font-size:1.05rem}
.task-meta{display:flex;justify-content:space-between;font-size:.85rem;color:#555}
.task-priority.low{color:#2e7d32}
.task-priority.medium{color:#ef6c00}
.task-priority.high{color:#c62828}
.no-tasks{text-align:center;color:#777;padding:2rem}
`
