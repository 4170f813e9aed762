// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"todosync/internal/api"
	"todosync/internal/state"
)

const (
	// ListSeparator is the separator line for list sections.
	ListSeparator = "------------"
)

// FormatTask formats a task line for a named list section.
// Format: "    {N:>4}  [x] {TITLE}\n"
func FormatTask(w io.Writer, num int, task api.Task) {
	fmt.Fprintf(w, "    %4d  %s %s\n", num, checkbox(task.Status), normalizeTitle(task.Title))
}

// FormatTaskDetail prints every field of a task, one per line.
func FormatTaskDetail(w io.Writer, task api.Task) {
	fmt.Fprintf(w, "title:       %s\n", normalizeTitle(task.Title))
	fmt.Fprintf(w, "status:      %s\n", task.Status)
	fmt.Fprintf(w, "priority:    %s\n", PriorityName(task.Priority))
	if task.Description != "" {
		fmt.Fprintf(w, "description: %s\n", task.Description)
	}
	if task.StartDate != "" {
		fmt.Fprintf(w, "start:       %s\n", task.StartDate)
	}
	if task.Deadline != "" {
		fmt.Fprintf(w, "deadline:    %s\n", task.Deadline)
	}
}

// FormatListHeader formats a list section header.
// The letter is the list's reference letter; a non-default filter is shown
// after the title.
func FormatListHeader(w io.Writer, letter rune, list state.ListRecord) {
	title := fmt.Sprintf("%c: %s", letter, normalizeTitle(list.Title))
	if list.Filter != "" && list.Filter != state.FilterAll {
		title += fmt.Sprintf(" [%s]", list.Filter)
	}
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, ListSeparator)
}

// FormatListName formats a list name for the lists command.
func FormatListName(w io.Writer, letter rune, list state.ListRecord) {
	fmt.Fprintf(w, "%c  %s\n", letter, normalizeTitle(list.Title))
}

// PriorityName returns the lowercase name of a priority.
func PriorityName(p api.TaskPriority) string {
	switch p {
	case api.PriorityLow:
		return "low"
	case api.PriorityMiddle:
		return "middle"
	case api.PriorityHigh:
		return "high"
	case api.PriorityUrgent:
		return "urgent"
	case api.PriorityLater:
		return "later"
	default:
		return "unknown"
	}
}

func checkbox(s api.TaskStatus) string {
	if s == api.StatusCompleted {
		return "[x]"
	}
	return "[ ]"
}

// normalizeTitle normalizes a title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
