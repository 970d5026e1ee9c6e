package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrEmptyTitle      = errors.New("task: title cannot be empty")
	ErrInvalidStatus   = errors.New("task: invalid status")
	ErrInvalidPriority = errors.New("task: invalid priority")
)

// Status is the column a task lives in. These are the only statuses any transition produces.
type Status string

// These constants refer to the statuses supported by the app.
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists the status columns in board order.
func Statuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusCompleted}
}

// ParseStatus returns the Status named by s or ErrInvalidStatus.
func ParseStatus(s string) (Status, error) {
	status := Status(strings.TrimSpace(s))
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}

	return status, nil
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// Next rotates pending -> in_progress -> completed -> pending.
func (s Status) Next() Status {
	switch s {
	case StatusPending:
		return StatusInProgress
	case StatusInProgress:
		return StatusCompleted
	default:
		return StatusPending
	}
}

// Label is the human readable form, e.g. "in progress".
func (s Status) Label() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

// UnmarshalJSON rejects unknown statuses. A missing status is treated as pending,
// which is what the backend assigns by default.
func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, string(b))
	}

	if raw == "" {
		*s = StatusPending

		return nil
	}

	status, err := ParseStatus(raw)
	if err != nil {
		return err
	}

	*s = status

	return nil
}

// Priority is informational only; it does not affect ordering.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists the priorities from lowest to highest.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// ParsePriority returns the Priority named by s. An empty string yields PriorityMedium.
func ParsePriority(s string) (Priority, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return PriorityMedium, nil
	}

	priority := Priority(trimmed)
	if !priority.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}

	return priority, nil
}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

func (p *Priority) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*p = PriorityMedium

		return nil
	}

	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPriority, string(b))
	}

	priority, err := ParsePriority(raw)
	if err != nil {
		return err
	}

	*p = priority

	return nil
}

// Task is a single unit of work. ID is assigned by the repository and never changes.
type Task struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	DueDate     Date     `json:"due_date"`
	Priority    Priority `json:"priority"`
}

// UnmarshalJSON fills in the defaults for fields the backend may omit.
func (t *Task) UnmarshalJSON(b []byte) error {
	type plain Task

	decoded := plain{Status: StatusPending, Priority: PriorityMedium}
	if err := json.Unmarshal(b, &decoded); err != nil {
		return err
	}

	*t = Task(decoded)

	return nil
}

// Validate checks the invariants enforced before a task is sent anywhere.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}

	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}

	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}

	return nil
}

// WithStatus returns a copy of t with the given status.
func (t Task) WithStatus(status Status) Task {
	t.Status = status

	return t
}

// Overdue reports whether the task has a due date before today and is not completed.
func (t Task) Overdue(now time.Time) bool {
	if t.DueDate.IsZero() || t.Status == StatusCompleted {
		return false
	}

	return t.DueDate.Before(DateOf(now).Time)
}

// DueOn reports whether the task is due on the calendar day of now.
func (t Task) DueOn(now time.Time) bool {
	return !t.DueDate.IsZero() && t.DueDate.Equal(DateOf(now).Time)
}

// Matches reports whether query is empty or a case-insensitive substring of the
// title or description.
func (t Task) Matches(query string) bool {
	if query == "" {
		return true
	}

	q := strings.ToLower(query)

	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Description), q)
}
