// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"todo/internal/service"
)

// Untitled is shown in place of an absent or blank title.
const Untitled = "(untitled)"

// DateLayout is used for creation dates in the detail view.
const DateLayout = "2006-01-02 15:04"

// FormatTask formats a task line for the list view.
// Format: "{N:>4}  [x] {TITLE}\n" (4-wide right-aligned number, two spaces,
// completion box, title)
func FormatTask(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  %s %s\n", num, checkbox(task.IsCompleted), Title(task))
}

// FormatTasks formats every task, numbering from 1.
func FormatTasks(w io.Writer, tasks []service.Task) {
	for i, t := range tasks {
		FormatTask(w, i+1, t)
	}
}

// FormatDetail formats the detail view of one task.
func FormatDetail(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "#%d %s\n", num, Title(task))
	if task.Description != nil && strings.TrimSpace(*task.Description) != "" {
		for _, line := range strings.Split(*task.Description, "\n") {
			fmt.Fprintf(w, "    %s\n", strings.TrimRight(line, "\r"))
		}
	}
	fmt.Fprintf(w, "status:  %s\n", StatusText(task.IsCompleted))
	fmt.Fprintf(w, "created: %s\n", task.CreatedAt.Format(DateLayout))
	fmt.Fprintf(w, "id:      %s\n", task.ID)
}

// Title returns the display title of a task.
// - Absent, empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func Title(task service.Task) string {
	if !task.HasTitle() {
		return Untitled
	}
	title := strings.ReplaceAll(*task.Title, "\r", " ")
	return strings.ReplaceAll(title, "\n", " ")
}

// StatusText returns "done" or "open".
func StatusText(completed bool) string {
	if completed {
		return "done"
	}
	return "open"
}

func checkbox(completed bool) string {
	if completed {
		return "[x]"
	}
	return "[ ]"
}
