// Package export writes the task collection in portable formats.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/jung-kurt/gofpdf"
	"gopkg.in/yaml.v3"

	"taskman/internal/render"
	"taskman/internal/store"
	"taskman/internal/task"
)

// Formats lists the supported format names.
var Formats = []string{"json", "yaml", "toml", "csv", "pdf"}

// ErrUnknownFormat is returned for a format outside Formats.
var ErrUnknownFormat = errors.New("unknown export format")

// Record is one exported task. An absent due date is left out.
type Record struct {
	ID          string `json:"id" yaml:"id" toml:"id"`
	Title       string `json:"title" yaml:"title" toml:"title"`
	Description string `json:"description" yaml:"description,omitempty" toml:"description,omitempty"`
	DueDate     string `json:"due_date,omitempty" yaml:"due_date,omitempty" toml:"due_date,omitempty"`
	Priority    string `json:"priority" yaml:"priority" toml:"priority"`
	Status      string `json:"status" yaml:"status" toml:"status"`
}

// document is the TOML root; TOML has no top-level arrays.
type document struct {
	Tasks []Record `toml:"tasks"`
}

// Exporter reads from a store and encodes what it reads.
type Exporter struct {
	st     store.Store
	locale render.Locale
}

// NewExporter creates an Exporter. locale is used for PDF dates.
func NewExporter(st store.Store, locale render.Locale) *Exporter {
	return &Exporter{st: st, locale: locale}
}

// Export encodes the tasks matching f in the named format.
func (e *Exporter) Export(ctx context.Context, format string, f task.Filter) ([]byte, error) {
	all, err := e.st.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	tasks := f.Apply(all)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "":
		return json.MarshalIndent(records(tasks), "", "  ")
	case "yaml", "yml":
		return yaml.Marshal(records(tasks))
	case "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(document{Tasks: records(tasks)}); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "csv":
		return encodeCSV(tasks)
	case "pdf":
		return e.encodePDF(tasks, f)
	default:
		return nil, fmt.Errorf("%w: %s (want one of %s)", ErrUnknownFormat, format, strings.Join(Formats, ", "))
	}
}

func records(tasks []task.Task) []Record {
	out := make([]Record, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, Record{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			DueDate:     t.DueDateOnly(),
			Priority:    string(t.Priority),
			Status:      string(t.Status),
		})
	}
	return out
}

func encodeCSV(tasks []task.Task) ([]byte, error) {
	var b bytes.Buffer
	if err := writeCSV(&b, tasks); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func writeCSV(dst io.Writer, tasks []task.Task) error {
	w := csv.NewWriter(dst)
	if err := w.Write([]string{"id", "title", "description", "due_date", "priority", "status"}); err != nil {
		return err
	}
	for _, r := range records(tasks) {
		if err := w.Write([]string{r.ID, r.Title, r.Description, r.DueDate, r.Priority, r.Status}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (e *Exporter) encodePDF(tasks []task.Task, f task.Filter) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(render.Title, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, render.Title)
	pdf.Ln(12)

	pdf.SetFont("Arial", "I", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s  Priority: %s  Tasks: %d", f.Status, f.Priority, len(tasks)))
	pdf.Ln(8)

	if len(tasks) == 0 {
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(0, 6, render.NoTasks)
	}
	for _, t := range tasks {
		check := "[ ]"
		if t.IsCompleted() {
			check = "[x]"
		}
		pdf.SetFont("Arial", "B", 11)
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("%s %s", check, t.Title)), "0", "L", false)

		pdf.SetFont("Arial", "", 9)
		description := t.Description
		if description == "" {
			description = render.NoDescription
		}
		pdf.MultiCell(0, 5, tr(description), "0", "L", false)
		meta := fmt.Sprintf("%s  |  %s", e.locale.FormatDueDate(t), task.Capitalize(string(t.Priority)))
		pdf.MultiCell(0, 5, tr(meta), "0", "L", false)
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
