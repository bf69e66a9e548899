package dto

import (
	"github.com/yukikurage/task-dashboard-api/internal/models"
	"github.com/yukikurage/task-dashboard-api/internal/services"
)

// CreateProjectRequest is the body of POST /api/projects
type CreateProjectRequest struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      models.ProjectStatus `json:"status"`
	StartDate   *string              `json:"startDate"`
	EndDate     *string              `json:"endDate"`
}

func (r CreateProjectRequest) ToInput() services.CreateProjectInput {
	return services.CreateProjectInput{
		Name:        r.Name,
		Description: r.Description,
		Status:      r.Status,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
	}
}

func ToUpdateProjectInput(p Patch) (services.UpdateProjectInput, error) {
	var input services.UpdateProjectInput
	var err error

	if input.Name, err = p.RequiredString("name"); err != nil {
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
		s := models.ProjectStatus(*status)
		input.Status = &s
	}

	if input.StartDate, input.ClearStartDate, err = p.Nullable("startDate"); err != nil {
		return input, err
	}
	if input.EndDate, input.ClearEndDate, err = p.Nullable("endDate"); err != nil {
		return input, err
	}

	return input, nil
}
