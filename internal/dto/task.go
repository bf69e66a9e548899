package dto

import (
	"github.com/yukikurage/task-dashboard-api/internal/models"
	"github.com/yukikurage/task-dashboard-api/internal/services"
)

// CreateTaskRequest is the body of POST /api/tasks
type CreateTaskRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	ProjectID   *string             `json:"projectId"`
	AssignedTo  *string             `json:"assignedTo"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	Deadline    *string             `json:"deadline"`
	DueDate     *string             `json:"dueDate"`
}

// ToInput converts the request into service input. Empty optional values
// are stored as null.
func (r CreateTaskRequest) ToInput() services.CreateTaskInput {
	return services.CreateTaskInput{
		Title:       r.Title,
		Description: r.Description,
		ProjectID:   nilIfEmpty(r.ProjectID),
		AssignedTo:  nilIfEmpty(r.AssignedTo),
		Status:      r.Status,
		Priority:    r.Priority,
		Deadline:    nilIfEmpty(r.Deadline),
		DueDate:     nilIfEmpty(r.DueDate),
	}
}

func nilIfEmpty(value *string) *string {
	if value == nil || *value == "" {
		return nil
	}
	return value
}

// ToUpdateTaskInput converts a PUT /api/tasks/:id body into service input
func ToUpdateTaskInput(p Patch) (services.UpdateTaskInput, error) {
	var input services.UpdateTaskInput
	var err error

	if input.Title, err = p.RequiredString("title"); err != nil {
		return input, err
	}
	if input.Description, err = p.RequiredString("description"); err != nil {
		return input, err
	}

	status, err := p.RequiredString("status")
	if err != nil {
		return input, err
	}
	if status != nil {
		s := models.TaskStatus(*status)
		input.Status = &s
	}

	priority, err := p.RequiredString("priority")
	if err != nil {
		return input, err
	}
	if priority != nil {
		pr := models.TaskPriority(*priority)
		input.Priority = &pr
	}

	if input.ProjectID, input.ClearProjectID, err = p.Nullable("projectId"); err != nil {
		return input, err
	}
	if input.AssignedTo, input.ClearAssignedTo, err = p.Nullable("assignedTo"); err != nil {
		return input, err
	}
	if input.Deadline, input.ClearDeadline, err = p.Nullable("deadline"); err != nil {
		return input, err
	}
	if input.DueDate, input.ClearDueDate, err = p.Nullable("dueDate"); err != nil {
		return input, err
	}

	return input, nil
}

// GenerateTasksRequest is the body of POST /api/tasks/generate
type GenerateTasksRequest struct {
	Text      string  `json:"text"`
	ProjectID *string `json:"projectId"`
	Persist   bool    `json:"persist"`
}

// GenerateTasksResponse carries the drafts and, when persisted, the tasks
type GenerateTasksResponse struct {
	Drafts []services.GeneratedTask `json:"drafts"`
	Tasks  []models.Task            `json:"tasks,omitempty"`
}
