package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"taskman/internal/exitcode"
	"taskman/internal/store"
	"taskman/internal/task"
)

// MinIDPrefix is the shortest id prefix accepted as a task reference.
const MinIDPrefix = 4

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Num int    // 1-based position when the reference is all digits, else 0
	ID  string // the reference as typed: an id, an id prefix or a number
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses a task reference from args.
//
// Parsing rules:
// 1. If first arg is all digits → position in the list, starting at 1,
//    or an id made of digits
// 2. If first arg is at least MinIDPrefix characters → id or id prefix
// 3. Otherwise → error: invalid task reference: <ref>
//
// Extra arguments are rejected.
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return TaskRef{}, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return TaskRef{}, fmt.Errorf("unexpected argument: %s", args[1])
	}

	ref := strings.TrimSpace(args[0])

	if isAllDigits(ref) {
		// Too large for a position; it can still be an id.
		num, _ := strconv.Atoi(ref)
		return TaskRef{Num: num, ID: ref}, nil
	}

	if len(ref) >= MinIDPrefix {
		return TaskRef{ID: ref}, nil
	}

	return TaskRef{}, fmt.Errorf("invalid task reference: %s", ref)
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Resolve finds the task ref names in tasks.
//
// An exact id always wins. A number is then a position counted over the
// whole collection in insertion order, the same numbers list prints. A
// number past the end, or any other reference, is matched as an id prefix.
func (ref TaskRef) Resolve(tasks []task.Task) (task.Task, error) {
	if i := task.Index(tasks, ref.ID); i >= 0 && ref.ID != "" {
		return tasks[i], nil
	}

	numeric := isAllDigits(ref.ID)
	if numeric {
		if ref.Num >= 1 && ref.Num <= len(tasks) {
			return tasks[ref.Num-1], nil
		}
		if len(ref.ID) < MinIDPrefix {
			return task.Task{}, fmt.Errorf("task number out of range: %s", ref.ID)
		}
	}

	var found []task.Task
	for _, t := range tasks {
		if strings.HasPrefix(t.ID, ref.ID) {
			found = append(found, t)
		}
	}
	switch len(found) {
	case 0:
		if numeric {
			return task.Task{}, fmt.Errorf("task number out of range: %s", ref.ID)
		}
		return task.Task{}, fmt.Errorf("task not found: %s", ref.ID)
	case 1:
		return found[0], nil
	default:
		return task.Task{}, fmt.Errorf("ambiguous task reference: %s", ref.ID)
	}
}

// resolveTask parses args and looks the task up in st.
// Errors are printed to errOut; the returned code is non-zero on failure.
func resolveTask(ctx context.Context, st store.Store, args []string, errOut io.Writer) (task.Task, int) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return task.Task{}, exitcode.UserError
	}

	tasks, err := st.GetAll(ctx)
	if err != nil {
		return task.Task{}, exitCode(err, errOut)
	}

	t, err := ref.Resolve(tasks)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return task.Task{}, exitcode.UserError
	}
	return t, exitcode.Success
}
