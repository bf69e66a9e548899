package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/task-dashboard-api/internal/constants"
	apierrors "github.com/yukikurage/task-dashboard-api/internal/errors"
	"github.com/yukikurage/task-dashboard-api/internal/models"
	"github.com/yukikurage/task-dashboard-api/internal/repository"
)

var (
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// TaskGenerator extracts task drafts from free text
type TaskGenerator interface {
	GenerateTasksFromText(ctx context.Context, text string) ([]GeneratedTask, error)
}

// TaskService handles task business logic
type TaskService struct {
	*collection[models.Task]
	aiService TaskGenerator
}

// NewTaskService creates a new TaskService. aiService may be nil.
func NewTaskService(store repository.Store, aiService TaskGenerator, log logrus.FieldLogger) *TaskService {
	return &TaskService{
		collection: newCollection[models.Task](store.Collection(constants.CollectionTasks), "task", log),
		aiService:  aiService,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	ProjectID   *string
	AssignedTo  *string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	Deadline    *string
	DueDate     *string
}

// UpdateTaskInput represents a partial task update. Nil fields are left
// untouched; the Clear flags set the field to null.
type UpdateTaskInput struct {
	Title           *string
	Description     *string
	ProjectID       *string
	ClearProjectID  bool
	AssignedTo      *string
	ClearAssignedTo bool
	Status          *models.TaskStatus
	Priority        *models.TaskPriority
	Deadline        *string
	ClearDeadline   bool
	DueDate         *string
	ClearDueDate    bool
}

// Create validates and stores a new task
func (s *TaskService) Create(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apierrors.NewValidationError("title", "Title is required")
	}

	if input.Status == "" {
		input.Status = models.TaskStatusPending
	}
	if !input.Status.Valid() {
		return nil, invalidValue("status", string(input.Status))
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, invalidValue("priority", string(input.Priority))
	}

	fields := map[string]any{
		"title":                   input.Title,
		"description":             input.Description,
		constants.FieldAssignedTo: nullable(input.AssignedTo),
		constants.FieldStatus:     string(input.Status),
		constants.FieldPriority:   string(input.Priority),
		"dueDate":                 nullable(input.DueDate),
	}
	if input.ProjectID != nil {
		fields[constants.FieldProjectID] = *input.ProjectID
	}
	if input.Deadline != nil {
		fields["deadline"] = *input.Deadline
	}

	return s.insert(ctx, fields)
}

// Update applies a partial update to an existing task
func (s *TaskService) Update(ctx context.Context, id string, input UpdateTaskInput) (*models.Task, error) {
	fields := map[string]any{}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, apierrors.NewValidationError("title", "Title cannot be empty")
		}
		fields["title"] = *input.Title
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, invalidValue("status", string(*input.Status))
		}
		fields[constants.FieldStatus] = string(*input.Status)
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, invalidValue("priority", string(*input.Priority))
		}
		fields[constants.FieldPriority] = string(*input.Priority)
	}
	setOptional(fields, constants.FieldProjectID, input.ProjectID, input.ClearProjectID)
	setOptional(fields, constants.FieldAssignedTo, input.AssignedTo, input.ClearAssignedTo)
	setOptional(fields, "deadline", input.Deadline, input.ClearDeadline)
	setOptional(fields, "dueDate", input.DueDate, input.ClearDueDate)

	return s.patch(ctx, id, fields)
}

// ByStatus returns the tasks with the given status
func (s *TaskService) ByStatus(ctx context.Context, status models.TaskStatus) ([]models.Task, error) {
	return s.QueryByField(ctx, constants.FieldStatus, string(status))
}

// ByProject returns the tasks referencing a project
func (s *TaskService) ByProject(ctx context.Context, projectID string) ([]models.Task, error) {
	return s.QueryByField(ctx, constants.FieldProjectID, projectID)
}

// ByAssignee returns the tasks assigned to a user
func (s *TaskService) ByAssignee(ctx context.Context, userID string) ([]models.Task, error) {
	return s.QueryByField(ctx, constants.FieldAssignedTo, userID)
}

// Overdue returns the unfinished tasks whose deadline is before now
func (s *TaskService) Overdue(ctx context.Context, now time.Time) ([]models.Task, error) {
	tasks, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	overdue := make([]models.Task, 0)
	for _, task := range tasks {
		if task.IsOverdue(now) {
			overdue = append(overdue, task)
		}
	}
	return overdue, nil
}

// GenerateTasksInput represents input for AI task generation
type GenerateTasksInput struct {
	Text      string
	ProjectID *string
	// Persist stores each draft as a pending task
	Persist bool
}

// GenerateTasks uses AI to draft tasks from text and optionally stores them
func (s *TaskService) GenerateTasks(ctx context.Context, input GenerateTasksInput) ([]GeneratedTask, []models.Task, error) {
	if s.aiService == nil {
		return nil, nil, ErrAIServiceNotConfigured
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, nil, apierrors.NewValidationError("text", "Text is required")
	}

	aiTasks, err := s.aiService.GenerateTasksFromText(ctx, input.Text)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(aiTasks) == 0 {
		return nil, nil, ErrAINoTasksGenerated
	}
	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		return nil, nil, fmt.Errorf("AI generated too many tasks (max %d)", constants.MaxAIGeneratedTasks)
	}

	validTasks := make([]GeneratedTask, 0, len(aiTasks))
	cutoff := s.clock().Add(-24 * time.Hour)
	for _, aiTask := range aiTasks {
		if strings.TrimSpace(aiTask.Title) == "" {
			continue
		}
		if aiTask.DueDate != nil && aiTask.DueDate.Before(cutoff) {
			aiTask.DueDate = nil
		}
		if !aiTask.Priority.Valid() {
			aiTask.Priority = models.TaskPriorityMedium
		}
		validTasks = append(validTasks, aiTask)
	}

	if len(validTasks) == 0 {
		return nil, nil, ErrAINoValidTasks
	}
	if !input.Persist {
		return validTasks, nil, nil
	}

	created := make([]models.Task, 0, len(validTasks))
	for _, draft := range validTasks {
		task, err := s.Create(ctx, draft.createInput(input.ProjectID))
		if err != nil {
			return validTasks, created, err
		}
		created = append(created, *task)
	}
	return validTasks, created, nil
}

func setOptional(fields map[string]any, key string, value *string, reset bool) {
	if reset {
		fields[key] = nil
	} else if value != nil {
		fields[key] = *value
	}
}

func invalidValue(field, value string) error {
	return apierrors.NewValidationError(field, fmt.Sprintf("Invalid %s: %q", field, value))
}
