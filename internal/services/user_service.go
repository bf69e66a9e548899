package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/task-dashboard-api/internal/constants"
	apierrors "github.com/yukikurage/task-dashboard-api/internal/errors"
	"github.com/yukikurage/task-dashboard-api/internal/models"
	"github.com/yukikurage/task-dashboard-api/internal/repository"
)

// UserServiceOptions configures a UserService
type UserServiceOptions struct {
	// Collection overrides the users collection name
	Collection string
	// CascadeUnassign clears assignedTo on the tasks of a deleted user
	CascadeUnassign bool
}

// UserService handles user business logic
type UserService struct {
	*collection[models.User]
	tasks   *TaskService
	cascade bool
}

// NewUserService creates a new UserService. tasks is only required when
// CascadeUnassign is enabled.
func NewUserService(store repository.Store, tasks *TaskService, opts UserServiceOptions, log logrus.FieldLogger) *UserService {
	name := opts.Collection
	if name == "" {
		name = constants.CollectionUsers
	}
	return &UserService{
		collection: newCollection[models.User](store.Collection(name), "user", log),
		tasks:      tasks,
		cascade:    opts.CascadeUnassign && tasks != nil,
	}
}

// CreateUserInput represents input for creating a user
type CreateUserInput struct {
	Name       string
	Email      string
	Role       models.UserRole
	Department string
}

// UpdateUserInput represents a partial user update
type UpdateUserInput struct {
	Name       *string
	Email      *string
	Role       *models.UserRole
	Department *string
}

// Create validates and stores a new user
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apierrors.NewValidationError("name", "Name is required")
	}
	if strings.TrimSpace(input.Email) == "" {
		return nil, apierrors.NewValidationError("email", "Email is required")
	}
	if input.Role != "" && !input.Role.Valid() {
		return nil, invalidValue("role", string(input.Role))
	}

	return s.insert(ctx, map[string]any{
		"name":                    input.Name,
		constants.FieldEmail:      input.Email,
		constants.FieldRole:       string(input.Role),
		constants.FieldDepartment: input.Department,
	})
}

// Update applies a partial update to an existing user
func (s *UserService) Update(ctx context.Context, id string, input UpdateUserInput) (*models.User, error) {
	fields := map[string]any{}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apierrors.NewValidationError("name", "Name cannot be empty")
		}
		fields["name"] = *input.Name
	}
	if input.Email != nil {
		if strings.TrimSpace(*input.Email) == "" {
			return nil, apierrors.NewValidationError("email", "Email cannot be empty")
		}
		fields[constants.FieldEmail] = *input.Email
	}
	if input.Role != nil {
		if *input.Role != "" && !input.Role.Valid() {
			return nil, invalidValue("role", string(*input.Role))
		}
		fields[constants.FieldRole] = string(*input.Role)
	}
	if input.Department != nil {
		fields[constants.FieldDepartment] = *input.Department
	}

	return s.patch(ctx, id, fields)
}

// Delete removes a user. Tasks keep their assignedTo reference unless
// cascading is enabled, in which case it is cleared.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.collection.Delete(ctx, id); err != nil {
		return err
	}
	if !s.cascade {
		return nil
	}

	tasks, err := s.tasks.ByAssignee(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find tasks of deleted user: %w", err)
	}
	for _, task := range tasks {
		if _, err := s.tasks.Update(ctx, task.ID, UpdateTaskInput{ClearAssignedTo: true}); err != nil {
			return fmt.Errorf("failed to unassign task %s: %w", task.ID, err)
		}
	}

	s.log.WithField("user_id", id).WithField("tasks", len(tasks)).Info("Unassigned tasks of deleted user")
	return nil
}

// ByRole returns the users with the given role
func (s *UserService) ByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	return s.QueryByField(ctx, constants.FieldRole, string(role))
}

// ByDepartment returns the users of a department
func (s *UserService) ByDepartment(ctx context.Context, department string) ([]models.User, error) {
	return s.QueryByField(ctx, constants.FieldDepartment, department)
}

// ByEmail returns the first user registered with an email address
func (s *UserService) ByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := s.QueryByField(ctx, constants.FieldEmail, email)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, apierrors.NewNotFoundError(s.docs.Name(), email)
	}
	return &users[0], nil
}
