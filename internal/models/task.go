package models

import (
	"time"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Valid reports whether s is one of the known task statuses
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Task is a document of the tasks collection.
// ProjectID and AssignedTo are weak references and are never validated.
type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	ProjectID   *string      `json:"projectId,omitempty"`
	AssignedTo  *string      `json:"assignedTo"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	Deadline    *string      `json:"deadline,omitempty"`
	DueDate     *string      `json:"dueDate"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

func (t Task) LastUpdated() time.Time {
	return t.UpdatedAt
}

// DeadlineTime returns the task deadline, falling back to the due date.
// The second return value is false when neither is set or parseable.
func (t Task) DeadlineTime() (time.Time, bool) {
	for _, v := range []*string{t.Deadline, t.DueDate} {
		if v == nil {
			continue
		}
		if parsed, ok := ParseDate(*v); ok {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// IsOverdue reports whether an unfinished task is past its deadline
func (t Task) IsOverdue(now time.Time) bool {
	if t.Status == TaskStatusCompleted {
		return false
	}
	deadline, ok := t.DeadlineTime()
	if !ok {
		return false
	}
	return deadline.Before(now)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate parses the date formats accepted for deadlines and project dates
func ParseDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
