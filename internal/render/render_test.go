package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"taskman/internal/controller"
	"taskman/internal/task"
	"taskman/internal/testutil"
)

func renderComponent(t *testing.T, render func(ctx context.Context, b *bytes.Buffer) error) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, render(context.Background(), &buf))
	return buf.String()
}

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"plain", "plain"},
		{`<script>&"'`, "&lt;script&gt;&amp;&quot;&#039;"},
		{"&amp;", "&amp;amp;"},
		{"a < b > c", "a &lt; b &gt; c"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EscapeHTML(tt.in), "EscapeHTML(%q)", tt.in)
	}
}

func TestTaskList_Empty(t *testing.T) {
	got := TaskListHTML(nil, ListOptions{})
	testutil.GoldenString(t, "empty_list", got)
}

func TestTaskList_CompletedRow(t *testing.T) {
	due := "2024-03-05"
	tasks := []task.Task{{
		ID:       "t1",
		Title:    `<script>alert("x")</script> & 'co'`,
		DueDate:  &due,
		Priority: task.PriorityHigh,
		Status:   task.StatusCompleted,
	}}
	got := TaskListHTML(tasks, ListOptions{Locale: ParseLocale("en-US")})
	testutil.GoldenString(t, "completed_row", got)
}

func TestTaskList_InjectedTextStaysInert(t *testing.T) {
	evil := `<script>&"'`
	tasks := []task.Task{{
		ID:          "x",
		Title:       evil,
		Description: evil,
		Priority:    task.PriorityLow,
		Status:      task.StatusPending,
	}}
	got := TaskListHTML(tasks, ListOptions{})

	assert.NotContains(t, got, "<script>")
	assert.Contains(t, got, `<h3 class="task-title">&lt;script&gt;&amp;&quot;&#039;</h3>`)
	assert.Contains(t, got, `<p class="task-description">&lt;script&gt;&amp;&quot;&#039;</p>`)
}

func TestTaskList_PendingRow(t *testing.T) {
	tasks := []task.Task{{
		ID:          "p1",
		Title:       "Buy milk",
		Description: "two litres",
		Priority:    task.PriorityLow,
		Status:      task.StatusPending,
	}}
	got := TaskListHTML(tasks, ListOptions{Filter: task.Filter{Status: "pending", Priority: task.All}})

	assert.Contains(t, got, `<div class="task-item" data-id="p1" data-status="pending" data-priority="low">`)
	assert.NotContains(t, got, " checked")
	assert.Contains(t, got, "two litres")
	assert.Contains(t, got, NoDueDate)
	assert.Contains(t, got, `<span class="task-priority low">Low</span>`)
	assert.Contains(t, got, `href="/?edit=p1&amp;status=pending"`)
	assert.Contains(t, got, `action="/tasks/p1/status?status=pending"`)
}

func TestTaskList_Component(t *testing.T) {
	got := renderComponent(t, func(ctx context.Context, b *bytes.Buffer) error {
		return TaskList(nil, ListOptions{}).Render(ctx, b)
	})
	assert.Equal(t, NoTasksHTML, got)
}

func TestLocale_FormatDueDate(t *testing.T) {
	due := "2024-03-05T10:00:00Z"
	withDue := task.Task{DueDate: &due}

	tests := []struct {
		locale string
		want   string
	}{
		{"", "2024-03-05"},
		{"C", "2024-03-05"},
		{"en-US", "3/5/2024"},
		{"en_US.UTF-8", "3/5/2024"},
		{"de-DE", "5.3.2024"},
		{"ja", "2024/3/5"},
	}
	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLocale(tt.locale).FormatDueDate(withDue))
		})
	}

	assert.Equal(t, NoDueDate, ParseLocale("en-US").FormatDueDate(task.Task{}))

	bad := "someday"
	assert.Equal(t, "someday", Locale{}.FormatDueDate(task.Task{DueDate: &bad}))
}

func TestLocaleFromAcceptLanguage(t *testing.T) {
	fallback := ParseLocale("en-US")

	got := LocaleFromAcceptLanguage("de-DE,de;q=0.9,en;q=0.5", fallback)
	assert.Equal(t, "2.1.2006", got.Layout())

	got = LocaleFromAcceptLanguage("", fallback)
	assert.Equal(t, fallback, got)
}

func TestLocaleFromEnv(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_TIME", "")
	t.Setenv("LANG", "de_DE.UTF-8")
	assert.Equal(t, language.MustParse("de-DE"), LocaleFromEnv().Tag())
}

func TestPage_CreateMode(t *testing.T) {
	got := renderComponent(t, func(ctx context.Context, b *bytes.Buffer) error {
		return Page(PageData{
			Form:   controller.BlankForm(),
			Filter: task.Filter{Status: task.All, Priority: task.All},
		}).Render(ctx, b)
	})

	assert.True(t, strings.HasPrefix(got, "<!DOCTYPE html>\n"))
	assert.Contains(t, got, `<html lang="en">`)
	assert.Contains(t, got, `<button type="submit" id="submit-btn">Add Task</button>`)
	assert.Contains(t, got, `<input type="hidden" name="editing_id" value="">`)
	assert.Contains(t, got, `<option value="medium" selected>Medium</option>`)
	assert.Contains(t, got, `<option value="all" selected>All statuses</option>`)
	assert.Contains(t, got, NoTasksHTML)
	assert.NotContains(t, got, `class="alert"`)
	assert.NotContains(t, got, "btn-cancel")
}

func TestPage_EditModeAndFlash(t *testing.T) {
	due := "2024-05-01"
	form := controller.EditForm(task.Task{
		ID:          "e1",
		Title:       `Fix "bug"`,
		Description: "a & b",
		DueDate:     &due,
		Priority:    task.PriorityHigh,
	})
	got := renderComponent(t, func(ctx context.Context, b *bytes.Buffer) error {
		return Page(PageData{
			Form:   form,
			Filter: task.Filter{Status: task.All, Priority: "high"},
			Flash:  controller.MsgNotFound,
		}).Render(ctx, b)
	})

	assert.Contains(t, got, `<div class="alert" role="alert">Task not found</div>`)
	assert.Contains(t, got, `<input type="hidden" name="editing_id" value="e1">`)
	assert.Contains(t, got, `value="Fix &quot;bug&quot;" autofocus`)
	assert.Contains(t, got, `<textarea id="description" name="description">a &amp; b</textarea>`)
	assert.Contains(t, got, `name="due_date" value="2024-05-01"`)
	assert.Contains(t, got, `Update Task</button>`)
	assert.Contains(t, got, `<a class="btn-cancel" href="/?priority=high">Cancel</a>`)
	assert.Contains(t, got, `action="/tasks?priority=high"`)
}

func TestConfirmPage(t *testing.T) {
	got := renderComponent(t, func(ctx context.Context, b *bytes.Buffer) error {
		return ConfirmPage(ConfirmData{
			Task:   task.Task{ID: "d1", Title: "<b>old</b>"},
			Filter: task.Filter{Status: "completed", Priority: task.All},
		}).Render(ctx, b)
	})

	assert.Contains(t, got, controller.MsgConfirmDelete)
	assert.Contains(t, got, "&lt;b&gt;old&lt;/b&gt;")
	assert.Contains(t, got, `action="/tasks/d1/delete?status=completed"`)
	assert.Contains(t, got, `<input type="hidden" name="confirm" value="yes">`)
	assert.Contains(t, got, `href="/?status=completed">Cancel</a>`)
}

func TestFilterQuery(t *testing.T) {
	assert.Empty(t, FilterQuery(task.Filter{}))
	assert.Empty(t, FilterQuery(task.Filter{Status: task.All, Priority: task.All}))
	assert.Equal(t, "priority=high", FilterQuery(task.Filter{Status: task.All, Priority: "high"}).Encode())
	assert.Equal(t, "priority=low&status=pending", FilterQuery(task.Filter{Status: "pending", Priority: "low"}).Encode())
}
