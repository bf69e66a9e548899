package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	apierrors "github.com/yukikurage/task-dashboard-api/internal/errors"
	"github.com/yukikurage/task-dashboard-api/internal/models"
	"github.com/yukikurage/task-dashboard-api/internal/repository"
)

// UserServiceTestSuite covers users and projects, which share the
// collection behavior exercised in TaskServiceTestSuite
type UserServiceTestSuite struct {
	suite.Suite
	store    repository.Store
	tasks    *TaskService
	users    *UserService
	projects *ProjectService
	ctx      context.Context
}

// SetupTest runs before each test
func (suite *UserServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = newTestStore(suite.T())
	suite.tasks = NewTaskService(suite.store, nil, newTestLogger())
	suite.users = NewUserService(suite.store, suite.tasks, UserServiceOptions{}, newTestLogger())
	suite.projects = NewProjectService(suite.store, newTestLogger())
}

// TearDownTest runs after each test
func (suite *UserServiceTestSuite) TearDownTest() {
	suite.Require().NoError(suite.store.Close(suite.ctx))
}

func (suite *UserServiceTestSuite) createUser(name, email string, role models.UserRole, department string) *models.User {
	user, err := suite.users.Create(suite.ctx, CreateUserInput{Name: name, Email: email, Role: role, Department: department})
	suite.Require().NoError(err)
	return user
}

func (suite *UserServiceTestSuite) TestCreateUser_Validation() {
	_, err := suite.users.Create(suite.ctx, CreateUserInput{Email: "a@example.com"})
	assert.True(suite.T(), apierrors.IsValidation(err))

	_, err = suite.users.Create(suite.ctx, CreateUserInput{Name: "Ann"})
	assert.True(suite.T(), apierrors.IsValidation(err))

	_, err = suite.users.Create(suite.ctx, CreateUserInput{Name: "Ann", Email: "a@example.com", Role: "ceo"})
	assert.True(suite.T(), apierrors.IsValidation(err))
}

func (suite *UserServiceTestSuite) TestUserQueries() {
	suite.createUser("Ann", "ann@example.com", models.RoleDeveloper, "Engineering")
	suite.createUser("Bob", "bob@example.com", models.RoleDesigner, "Design")
	suite.createUser("Cat", "cat@example.com", models.RoleDeveloper, "Engineering")

	devs, err := suite.users.ByRole(suite.ctx, models.RoleDeveloper)
	suite.Require().NoError(err)
	assert.Len(suite.T(), devs, 2)

	design, err := suite.users.ByDepartment(suite.ctx, "Design")
	suite.Require().NoError(err)
	suite.Require().Len(design, 1)
	assert.Equal(suite.T(), "Bob", design[0].Name)

	byEmail, err := suite.users.ByEmail(suite.ctx, "cat@example.com")
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "Cat", byEmail.Name)

	_, err = suite.users.ByEmail(suite.ctx, "nobody@example.com")
	assert.True(suite.T(), apierrors.IsNotFound(err))
}

func (suite *UserServiceTestSuite) TestUpdateUser() {
	user := suite.createUser("Ann", "ann@example.com", models.RoleDeveloper, "Engineering")

	manager := models.RoleManager
	updated, err := suite.users.Update(suite.ctx, user.ID, UpdateUserInput{Role: &manager})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.RoleManager, updated.Role)
	assert.Equal(suite.T(), "ann@example.com", updated.Email)
	assert.True(suite.T(), updated.UpdatedAt.After(user.UpdatedAt))

	empty := ""
	_, err = suite.users.Update(suite.ctx, user.ID, UpdateUserInput{Email: &empty})
	assert.True(suite.T(), apierrors.IsValidation(err))
}

func (suite *UserServiceTestSuite) TestDeleteUser_KeepsAssignments() {
	user := suite.createUser("Ann", "ann@example.com", models.RoleDeveloper, "")
	task, err := suite.tasks.Create(suite.ctx, CreateTaskInput{Title: "Mine", AssignedTo: &user.ID})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.users.Delete(suite.ctx, user.ID))

	fetched, err := suite.tasks.GetByID(suite.ctx, task.ID)
	suite.Require().NoError(err)
	suite.Require().NotNil(fetched.AssignedTo)
	assert.Equal(suite.T(), user.ID, *fetched.AssignedTo)

	err = suite.users.Delete(suite.ctx, user.ID)
	assert.True(suite.T(), apierrors.IsNotFound(err))
	assert.EqualError(suite.T(), err, "User not found")
}

func (suite *UserServiceTestSuite) TestDeleteUser_CascadeUnassign() {
	users := NewUserService(suite.store, suite.tasks, UserServiceOptions{CascadeUnassign: true}, newTestLogger())
	user, err := users.Create(suite.ctx, CreateUserInput{Name: "Ann", Email: "ann@example.com"})
	suite.Require().NoError(err)

	mine, err := suite.tasks.Create(suite.ctx, CreateTaskInput{Title: "Mine", AssignedTo: &user.ID})
	suite.Require().NoError(err)
	other, err := suite.tasks.Create(suite.ctx, CreateTaskInput{Title: "Other", AssignedTo: strPtr("someone")})
	suite.Require().NoError(err)

	suite.Require().NoError(users.Delete(suite.ctx, user.ID))

	fetched, err := suite.tasks.GetByID(suite.ctx, mine.ID)
	suite.Require().NoError(err)
	assert.Nil(suite.T(), fetched.AssignedTo)

	fetched, err = suite.tasks.GetByID(suite.ctx, other.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "someone", *fetched.AssignedTo)
}

func (suite *UserServiceTestSuite) TestCustomCollectionName() {
	legacy := NewUserService(suite.store, nil, UserServiceOptions{Collection: "taskManagement"}, newTestLogger())
	_, err := legacy.Create(suite.ctx, CreateUserInput{Name: "Ann", Email: "ann@example.com"})
	suite.Require().NoError(err)

	users, err := suite.users.GetAll(suite.ctx)
	suite.Require().NoError(err)
	assert.Empty(suite.T(), users)

	_, err = legacy.GetByID(suite.ctx, "missing")
	assert.EqualError(suite.T(), err, "User not found")
}

func (suite *UserServiceTestSuite) TestProjectLifecycle() {
	project, err := suite.projects.Create(suite.ctx, CreateProjectInput{Name: "Website", StartDate: strPtr("2024-01-01")})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.ProjectStatusActive, project.Status)
	assert.Nil(suite.T(), project.EndDate)

	unnamed, err := suite.projects.Create(suite.ctx, CreateProjectInput{Description: "no name"})
	suite.Require().NoError(err)
	assert.Empty(suite.T(), unnamed.Name)
	assert.Equal(suite.T(), models.ProjectStatusActive, unnamed.Status)

	blank := " "
	_, err = suite.projects.Update(suite.ctx, project.ID, UpdateProjectInput{Name: &blank})
	assert.True(suite.T(), apierrors.IsValidation(err))
	_, err = suite.projects.Create(suite.ctx, CreateProjectInput{Name: "x", Status: "archived"})
	assert.True(suite.T(), apierrors.IsValidation(err))

	onHold := models.ProjectStatusOnHold
	updated, err := suite.projects.Update(suite.ctx, project.ID, UpdateProjectInput{Status: &onHold, ClearStartDate: true})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.ProjectStatusOnHold, updated.Status)
	assert.Nil(suite.T(), updated.StartDate)

	held, err := suite.projects.ByStatus(suite.ctx, models.ProjectStatusOnHold)
	suite.Require().NoError(err)
	assert.Len(suite.T(), held, 1)

	suite.Require().NoError(suite.projects.Delete(suite.ctx, project.ID))
	_, err = suite.projects.GetByID(suite.ctx, project.ID)
	assert.EqualError(suite.T(), err, "Project not found")
}

func (suite *UserServiceTestSuite) TestDashboardSummary() {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	dashboard := NewDashboardService(suite.projects, suite.tasks, suite.users)
	dashboard.clock = func() time.Time { return now }

	project, err := suite.projects.Create(suite.ctx, CreateProjectInput{Name: "Website"})
	suite.Require().NoError(err)
	_, err = suite.projects.Create(suite.ctx, CreateProjectInput{Name: "Legacy", Status: models.ProjectStatusCompleted})
	suite.Require().NoError(err)
	user := suite.createUser("Ann", "ann@example.com", models.RoleDeveloper, "")

	create := func(input CreateTaskInput) {
		_, err := suite.tasks.Create(suite.ctx, input)
		suite.Require().NoError(err)
	}
	create(CreateTaskInput{Title: "overdue", Deadline: strPtr("2024-04-20"), ProjectID: &project.ID, AssignedTo: &user.ID})
	create(CreateTaskInput{Title: "soon", DueDate: strPtr("2024-05-02"), Status: models.TaskStatusInProgress, AssignedTo: strPtr("gone")})
	create(CreateTaskInput{Title: "done", Deadline: strPtr("2024-04-01"), Status: models.TaskStatusCompleted})
	create(CreateTaskInput{Title: "someday", ProjectID: strPtr("deleted")})
	for i := 0; i < 5; i++ {
		create(CreateTaskInput{Title: "later", Deadline: strPtr("2024-06-01")})
	}

	summary, err := dashboard.Summary(suite.ctx)
	suite.Require().NoError(err)

	assert.Equal(suite.T(), 2, summary.TotalProjects)
	assert.Equal(suite.T(), 1, summary.ActiveProjects)
	assert.Equal(suite.T(), 9, summary.TotalTasks)
	assert.Equal(suite.T(), 7, summary.PendingTasks)
	assert.Equal(suite.T(), 1, summary.InProgressTasks)
	assert.Equal(suite.T(), 1, summary.CompletedTasks)
	assert.Equal(suite.T(), 1, summary.OverdueTasks)
	assert.Equal(suite.T(), 1, summary.TotalUsers)

	upcoming := summary.UpcomingDeadlines
	suite.Require().Len(upcoming, 5)
	assert.Equal(suite.T(), "overdue", upcoming[0].Title)
	assert.Equal(suite.T(), "Website", upcoming[0].ProjectName)
	assert.Equal(suite.T(), "Ann", upcoming[0].AssigneeName)
	assert.Equal(suite.T(), "soon", upcoming[1].Title)
	assert.Equal(suite.T(), "No project", upcoming[1].ProjectName)
	assert.Equal(suite.T(), "Unknown user", upcoming[1].AssigneeName)
	assert.Equal(suite.T(), "later", upcoming[4].Title)
}

func TestResolveNames(t *testing.T) {
	names := map[string]string{"p1": "Website"}

	assert.Equal(t, "Website", ResolveProjectName(strPtr("p1"), names))
	assert.Equal(t, "Unknown project", ResolveProjectName(strPtr("p2"), names))
	assert.Equal(t, "No project", ResolveProjectName(nil, names))
	assert.Equal(t, "Unassigned", ResolveUserName(strPtr(""), names))
	assert.Equal(t, "Unknown user", ResolveUserName(strPtr("u9"), names))
}

// TestUserServiceTestSuite runs the test suite
func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
