package tasks

import (
	"strings"
	"time"

	"vidgen/internal/gateway"
	"vidgen/internal/services"
)

// Task is the locally held snapshot of one render job.
type Task struct {
	ID          string     `json:"id"`
	Status      Status     `json:"status"`
	SubmittedAt time.Time  `json:"submitted_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Output      string     `json:"output,omitempty"`
	DownloadURL string     `json:"download_url,omitempty"`
	Error       string     `json:"error,omitempty"`
	// Local marks a task synthesized after a failed submission. The render
	// service never saw it.
	Local bool `json:"local,omitempty"`
}

// Err returns the failure carried by a Failed task, or nil.
func (t Task) Err() error {
	if t.Status != StatusFailed {
		return nil
	}
	message := t.Error
	if strings.TrimSpace(message) == "" {
		message = "render failed without a message"
	}
	if t.Local {
		return services.Wrap(services.ErrTransport, "tasks", "submit", message, nil)
	}
	return services.Wrap(services.ErrRemoteJobFailed, "tasks", t.ID, message, nil)
}

// Elapsed is the running time of t: up to now while it is active, and
// between submission and completion once terminal.
func Elapsed(t Task, now time.Time) time.Duration {
	if t.SubmittedAt.IsZero() {
		return 0
	}
	end := now
	if t.Status.IsTerminal() && t.CompletedAt != nil {
		end = *t.CompletedAt
	}
	if d := end.Sub(t.SubmittedAt); d > 0 {
		return d
	}
	return 0
}

// FromJob converts a render service job into a task snapshot.
func FromJob(job gateway.Job) Task {
	task := Task{
		ID:          strings.TrimSpace(job.ID),
		Status:      ParseStatus(job.Status),
		SubmittedAt: parseTimestamp(job.StartTime),
		Output:      deref(job.OutputFile),
		DownloadURL: deref(job.DownloadURL),
		Error:       deref(job.Error),
	}
	if job.EndTime != nil {
		if end := parseTimestamp(*job.EndTime); !end.IsZero() {
			task.CompletedAt = &end
		}
	}
	return task
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// parseTimestamp accepts RFC 3339 and the naive ISO form the service emits.
// Naive timestamps are read as UTC.
func parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
