package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/task-dashboard-api/internal/constants"
	apierrors "github.com/yukikurage/task-dashboard-api/internal/errors"
	"github.com/yukikurage/task-dashboard-api/internal/models"
	"github.com/yukikurage/task-dashboard-api/internal/repository"
)

// ProjectService handles project business logic
type ProjectService struct {
	*collection[models.Project]
}

// NewProjectService creates a new ProjectService
func NewProjectService(store repository.Store, log logrus.FieldLogger) *ProjectService {
	return &ProjectService{
		collection: newCollection[models.Project](store.Collection(constants.CollectionProjects), "project", log),
	}
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	Name        string
	Description string
	Status      models.ProjectStatus
	StartDate   *string
	EndDate     *string
}

// UpdateProjectInput represents a partial project update
type UpdateProjectInput struct {
	Name           *string
	Description    *string
	Status         *models.ProjectStatus
	StartDate      *string
	ClearStartDate bool
	EndDate        *string
	ClearEndDate   bool
}

// Create stores a new project. Projects have no required fields.
func (s *ProjectService) Create(ctx context.Context, input CreateProjectInput) (*models.Project, error) {
	if input.Status == "" {
		input.Status = models.ProjectStatusActive
	}
	if !input.Status.Valid() {
		return nil, invalidValue("status", string(input.Status))
	}

	return s.insert(ctx, map[string]any{
		"name":                input.Name,
		"description":         input.Description,
		constants.FieldStatus: string(input.Status),
		"startDate":           nullable(input.StartDate),
		"endDate":             nullable(input.EndDate),
	})
}

// Update applies a partial update to an existing project
func (s *ProjectService) Update(ctx context.Context, id string, input UpdateProjectInput) (*models.Project, error) {
	fields := map[string]any{}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apierrors.NewValidationError("name", "Name cannot be empty")
		}
		fields["name"] = *input.Name
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
	setOptional(fields, "startDate", input.StartDate, input.ClearStartDate)
	setOptional(fields, "endDate", input.EndDate, input.ClearEndDate)

	return s.patch(ctx, id, fields)
}

// ByStatus returns the projects with the given status
func (s *ProjectService) ByStatus(ctx context.Context, status models.ProjectStatus) ([]models.Project, error) {
	return s.QueryByField(ctx, constants.FieldStatus, string(status))
}
