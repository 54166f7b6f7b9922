package main

import (
	"fmt"
	"strings"
	"time"

	"vidgen/internal/tasks"
)

func renderTaskLine(t tasks.Task, colorize bool) string {
	message := t.Status.String()
	switch {
	case t.Status == tasks.StatusFailed && t.Error != "":
		message += ": " + t.Error
	case t.Status == tasks.StatusCompleted && t.Output != "":
		message += " -> " + t.Output
	}
	if elapsed := tasks.Elapsed(t, time.Now()); elapsed > 0 {
		message += fmt.Sprintf(" (%s)", formatElapsed(elapsed))
	}
	return renderStatusLine(t.ID, taskStatusKind(t.Status), message, colorize)
}

func taskRows(list []tasks.Task, now time.Time) [][]string {
	rows := make([][]string, 0, len(list))
	for _, t := range list {
		rows = append(rows, []string{
			t.ID,
			t.Status.String(),
			formatTimestamp(t.SubmittedAt),
			formatElapsed(tasks.Elapsed(t, now)),
			taskDetail(t),
		})
	}
	return rows
}

var taskHeaders = []string{"ID", "Status", "Submitted", "Elapsed", "Detail"}

var taskAligns = []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft}

func taskDetail(t tasks.Task) string {
	switch {
	case t.Error != "":
		return truncate(t.Error, 60)
	case t.Output != "":
		return t.Output
	default:
		return ""
	}
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04:05")
}

func formatElapsed(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Truncate(time.Second).String()
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
