package dto

import (
	"github.com/yukikurage/task-dashboard-api/internal/models"
	"github.com/yukikurage/task-dashboard-api/internal/services"
)

// CreateUserRequest is the body of POST /api/users
type CreateUserRequest struct {
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Role       models.UserRole `json:"role"`
	Department string          `json:"department"`
}

func (r CreateUserRequest) ToInput() services.CreateUserInput {
	return services.CreateUserInput{
		Name:       r.Name,
		Email:      r.Email,
		Role:       r.Role,
		Department: r.Department,
	}
}

func ToUpdateUserInput(p Patch) (services.UpdateUserInput, error) {
	var input services.UpdateUserInput
	var err error

	if input.Name, err = p.RequiredString("name"); err != nil {
		return input, err
	}
	if input.Email, err = p.RequiredString("email"); err != nil {
		return input, err
	}
	if input.Department, err = p.RequiredString("department"); err != nil {
		return input, err
	}

	role, err := p.RequiredString("role")
	if err != nil {
		return input, err
	}
	if role != nil {
		r := models.UserRole(*role)
		input.Role = &r
	}

	return input, nil
}
