package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/adanyl0v/go-todo-client/internal/models"
	"github.com/adanyl0v/go-todo-client/internal/tasks"
)

const (
	dateLayout        = "Jan 2, 2006"
	maxDescriptionLen = 40
)

func renderTasks(w io.Writer, list []models.Task) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No tasks found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tPRIORITY\tTITLE\tDESCRIPTION\tCREATED")
	for _, task := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			task.ID,
			checkbox(task.Status),
			task.Priority,
			task.Title,
			truncate(task.Description, maxDescriptionLen),
			formatDate(task.CreatedAt),
		)
	}
	_ = tw.Flush()
}

func renderTask(w io.Writer, task models.Task) {
	fmt.Fprintf(w, "#%d %s %s [%s]\n", task.ID, checkbox(task.Status), task.Title, task.Priority)
	if task.Description != "" {
		fmt.Fprintf(w, "    %s\n", task.Description)
	}
}

func renderStats(w io.Writer, stats tasks.Stats) {
	fmt.Fprintf(w, "Total: %d  Pending: %d  Completed: %d  High priority: %d\n",
		stats.Total, stats.Pending, stats.Completed, stats.HighPending)
}

func renderDraft(w io.Writer, id int64, draft tasks.Draft) {
	fmt.Fprintf(w, "editing #%d\n", id)
	fmt.Fprintf(w, "  title:       %s\n", draft.Title)
	fmt.Fprintf(w, "  description: %s\n", draft.Description)
	fmt.Fprintf(w, "  priority:    %s\n", draft.Priority)
}

func checkbox(status models.Status) string {
	if status == models.StatusCompleted {
		return "[x]"
	}
	return "[ ]"
}

func formatDate(ts models.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Format(dateLayout)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n-3])) + "..."
}
