// Package seed loads YAML fixtures into the document store through the
// collection services, so seeded records get the same defaults and
// timestamps as records created over HTTP.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/yukikurage/task-dashboard-api/internal/models"
	"github.com/yukikurage/task-dashboard-api/internal/services"
	"gopkg.in/yaml.v3"
)

// Fixture is the YAML document layout. Tasks reference projects and users
// by their fixture key.
type Fixture struct {
	Projects []ProjectFixture `yaml:"projects"`
	Users    []UserFixture    `yaml:"users"`
	Tasks    []TaskFixture    `yaml:"tasks"`
}

type ProjectFixture struct {
	Key         string               `yaml:"key"`
	Name        string               `yaml:"name"`
	Description string               `yaml:"description"`
	Status      models.ProjectStatus `yaml:"status"`
	StartDate   *string              `yaml:"startDate"`
	EndDate     *string              `yaml:"endDate"`
}

type UserFixture struct {
	Key        string          `yaml:"key"`
	Name       string          `yaml:"name"`
	Email      string          `yaml:"email"`
	Role       models.UserRole `yaml:"role"`
	Department string          `yaml:"department"`
}

type TaskFixture struct {
	Title       string              `yaml:"title"`
	Description string              `yaml:"description"`
	Project     string              `yaml:"project"`
	Assignee    string              `yaml:"assignee"`
	Status      models.TaskStatus   `yaml:"status"`
	Priority    models.TaskPriority `yaml:"priority"`
	Deadline    *string             `yaml:"deadline"`
	DueDate     *string             `yaml:"dueDate"`
}

// Result counts the records created by Apply
type Result struct {
	Projects int
	Users    int
	Tasks    int
}

// Decode parses a YAML fixture
func Decode(r io.Reader) (*Fixture, error) {
	var fixture Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fixture); err != nil {
		if err == io.EOF {
			return &fixture, nil
		}
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	return &fixture, nil
}

// LoadFile reads and parses a YAML fixture file
func LoadFile(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixture: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

type Seeder struct {
	projects *services.ProjectService
	users    *services.UserService
	tasks    *services.TaskService
}

func NewSeeder(projects *services.ProjectService, users *services.UserService, tasks *services.TaskService) *Seeder {
	return &Seeder{projects: projects, users: users, tasks: tasks}
}

// Apply creates projects and users first, then tasks with their key
// references replaced by the new identifiers
func (s *Seeder) Apply(ctx context.Context, fixture *Fixture) (*Result, error) {
	if err := fixture.validateKeys(); err != nil {
		return nil, err
	}

	result := &Result{}
	projectIDs := make(map[string]string, len(fixture.Projects))
	for _, p := range fixture.Projects {
		project, err := s.projects.Create(ctx, services.CreateProjectInput{
			Name:        p.Name,
			Description: p.Description,
			Status:      p.Status,
			StartDate:   p.StartDate,
			EndDate:     p.EndDate,
		})
		if err != nil {
			return result, fmt.Errorf("failed to seed project %q: %w", p.Key, err)
		}
		projectIDs[p.Key] = project.ID
		result.Projects++
	}

	userIDs := make(map[string]string, len(fixture.Users))
	for _, u := range fixture.Users {
		user, err := s.users.Create(ctx, services.CreateUserInput{
			Name:       u.Name,
			Email:      u.Email,
			Role:       u.Role,
			Department: u.Department,
		})
		if err != nil {
			return result, fmt.Errorf("failed to seed user %q: %w", u.Key, err)
		}
		userIDs[u.Key] = user.ID
		result.Users++
	}

	for i, t := range fixture.Tasks {
		input := services.CreateTaskInput{
			Title:       t.Title,
			Description: t.Description,
			Status:      t.Status,
			Priority:    t.Priority,
			Deadline:    t.Deadline,
			DueDate:     t.DueDate,
		}
		if t.Project != "" {
			id := projectIDs[t.Project]
			input.ProjectID = &id
		}
		if t.Assignee != "" {
			id := userIDs[t.Assignee]
			input.AssignedTo = &id
		}

		if _, err := s.tasks.Create(ctx, input); err != nil {
			return result, fmt.Errorf("failed to seed task #%d: %w", i+1, err)
		}
		result.Tasks++
	}

	return result, nil
}

// validateKeys rejects duplicate keys and dangling task references before
// anything is written
func (f *Fixture) validateKeys() error {
	projects := make(map[string]bool, len(f.Projects))
	for _, p := range f.Projects {
		if p.Key == "" {
			return fmt.Errorf("project %q has no key", p.Name)
		}
		if projects[p.Key] {
			return fmt.Errorf("duplicate project key %q", p.Key)
		}
		projects[p.Key] = true
	}

	users := make(map[string]bool, len(f.Users))
	for _, u := range f.Users {
		if u.Key == "" {
			return fmt.Errorf("user %q has no key", u.Name)
		}
		if users[u.Key] {
			return fmt.Errorf("duplicate user key %q", u.Key)
		}
		users[u.Key] = true
	}

	for i, t := range f.Tasks {
		if t.Project != "" && !projects[t.Project] {
			return fmt.Errorf("task #%d references unknown project %q", i+1, t.Project)
		}
		if t.Assignee != "" && !users[t.Assignee] {
			return fmt.Errorf("task #%d references unknown user %q", i+1, t.Assignee)
		}
	}
	return nil
}
