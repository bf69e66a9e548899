package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestParseDate(t *testing.T) {
	parsed, ok := ParseDate("2024-01-01")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), parsed)

	parsed, ok = ParseDate("2024-03-05T10:30:00Z")
	assert.True(t, ok)
	assert.Equal(t, 10, parsed.Hour())

	_, ok = ParseDate("next tuesday")
	assert.False(t, ok)
}

func TestTaskIsOverdue(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		task Task
		want bool
	}{
		{"past deadline", Task{Status: TaskStatusPending, Deadline: strPtr("2024-05-01")}, true},
		{"future deadline", Task{Status: TaskStatusPending, Deadline: strPtr("2024-07-01")}, false},
		{"completed", Task{Status: TaskStatusCompleted, Deadline: strPtr("2024-05-01")}, false},
		{"due date fallback", Task{Status: TaskStatusInProgress, DueDate: strPtr("2024-05-31T00:00:00Z")}, true},
		{"unparseable", Task{Status: TaskStatusPending, Deadline: strPtr("soon")}, false},
		{"no deadline", Task{Status: TaskStatusPending}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.task.IsOverdue(now))
		})
	}
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, TaskStatusInProgress.Valid())
	assert.False(t, TaskStatus("in progress").Valid())
	assert.True(t, TaskPriorityHigh.Valid())
	assert.False(t, TaskPriority("urgent").Valid())
	assert.True(t, ProjectStatusOnHold.Valid())
	assert.False(t, ProjectStatus("archived").Valid())
	assert.True(t, RoleQA.Valid())
	assert.False(t, UserRole("admin").Valid())
}
