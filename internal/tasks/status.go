package tasks

import "strings"

// Status is the lifecycle state of a render job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ParseStatus normalizes a status reported by the render service. Unknown
// values are kept verbatim and treated as non-terminal.
func ParseStatus(raw string) Status {
	return Status(strings.ToLower(strings.TrimSpace(raw)))
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether a job in s may be observed next in to.
func (s Status) CanTransition(to Status) bool {
	if s.IsTerminal() {
		return s == to
	}
	if s == StatusProcessing && to == StatusQueued {
		return false
	}
	return true
}

func (s Status) String() string { return string(s) }
