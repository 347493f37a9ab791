package todo

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the textual format of due dates.
const DateLayout = "2006-01-02"

// Sentinel errors. Use errors.Is to classify failures returned by the store.
var (
	// ErrInvalidInput marks bad user input: empty description, malformed
	// due date, unknown priority, unknown export format.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks a lookup of an identifier that is not in the store.
	ErrNotFound = errors.New("not found")
	// ErrCorrupted marks a task file that could not be parsed or validated.
	ErrCorrupted = errors.New("corrupted task file")
)

// Priority is one of the three task priority levels.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultPriority is used when a task is added without one.
const DefaultPriority = PriorityMedium

// Priorities returns the valid priorities, lowest first.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// ParsePriority returns the canonical priority for s, ignoring case. An
// empty string yields DefaultPriority.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(s))
	switch p {
	case "":
		return DefaultPriority, nil
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	}
	return "", &ValidationError{
		Path: "priority",
		Err:  fmt.Errorf("priority must be one of: low, medium, high (got %q)", s),
	}
}

// Timestamp is a point in time stored as an ISO-8601 string.
//
// It is written as RFC 3339 with fractional seconds. When reading, it also
// accepts timestamps without a zone offset, which are taken as local time.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}

const localTimestampLayout = "2006-01-02T15:04:05"

// MarshalText implements encoding.TextMarshaler.
func (ts Timestamp) MarshalText() ([]byte, error) {
	return []byte(ts.Time.Format(time.RFC3339Nano)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (ts *Timestamp) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" {
		ts.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		ts.Time = t
		return nil
	}
	t, err := time.ParseInLocation(localTimestampLayout, s, time.Local)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	ts.Time = t
	return nil
}

// MarshalJSON implements json.Marshaler. It shadows the method promoted
// from time.Time so both directions go through the text form.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	text, err := ts.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler.
func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	return ts.UnmarshalText([]byte(s))
}

// Task is a single to-do item.
type Task struct {
	ID          int        `json:"id" yaml:"id" toml:"id"`
	Description string     `json:"description" yaml:"description" toml:"description"`
	DueDate     *string    `json:"due_date" yaml:"due_date" toml:"due_date,omitempty"`
	Priority    Priority   `json:"priority" yaml:"priority" toml:"priority"`
	Category    *string    `json:"category" yaml:"category" toml:"category,omitempty"`
	Completed   bool       `json:"completed" yaml:"completed" toml:"completed"`
	CreatedAt   *Timestamp `json:"created_at,omitempty" yaml:"created_at,omitempty" toml:"created_at,omitempty"`
	CompletedAt *Timestamp `json:"completed_at,omitempty" yaml:"completed_at,omitempty" toml:"completed_at,omitempty"`
}

// Due returns the due date string, or "" if the task has none.
func (t *Task) Due() string {
	if t.DueDate == nil {
		return ""
	}
	return *t.DueDate
}

// CategoryName returns the category, or "" if the task has none.
func (t *Task) CategoryName() string {
	if t.Category == nil {
		return ""
	}
	return *t.Category
}

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // field or JSON path the error refers to
	Err  error  // underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports ErrInvalidInput so callers can classify without a type switch.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NotFoundError reports a task identifier that is not in the store.
type NotFoundError struct {
	ID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task #%d not found", e.ID)
}

// Is reports ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
