package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-dashboard-api/internal/models"
	"github.com/yukikurage/task-dashboard-api/internal/repository"
	"github.com/yukikurage/task-dashboard-api/internal/services"
)

func newSeeder(t *testing.T) (*Seeder, *services.TaskService, *services.UserService) {
	store, err := repository.NewFileStore(t.TempDir())
	require.NoError(t, err)

	log, _ := test.NewNullLogger()
	tasks := services.NewTaskService(store, nil, log)
	users := services.NewUserService(store, tasks, services.UserServiceOptions{}, log)
	projects := services.NewProjectService(store, log)
	return NewSeeder(projects, users, tasks), tasks, users
}

func TestApply(t *testing.T) {
	fixture, err := LoadFile("testdata/seed.yaml")
	require.NoError(t, err)

	seeder, tasks, users := newSeeder(t)
	ctx := context.Background()

	result, err := seeder.Apply(ctx, fixture)
	require.NoError(t, err)
	assert.Equal(t, &Result{Projects: 2, Users: 2, Tasks: 3}, result)

	ann, err := users.ByEmail(ctx, "ann@example.com")
	require.NoError(t, err)

	assigned, err := tasks.ByAssignee(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, "Build landing page", assigned[0].Title)
	assert.Equal(t, models.TaskPriorityHigh, assigned[0].Priority)
	require.NotNil(t, assigned[0].ProjectID)

	pending, err := tasks.ByStatus(ctx, models.TaskStatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestApply_UnknownReference(t *testing.T) {
	fixture, err := Decode(strings.NewReader(`
tasks:
  - title: Orphan
    assignee: ghost
`))
	require.NoError(t, err)

	seeder, tasks, _ := newSeeder(t)
	_, err = seeder.Apply(context.Background(), fixture)
	assert.ErrorContains(t, err, `unknown user "ghost"`)

	all, err := tasks.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestApply_InvalidRecord(t *testing.T) {
	fixture := &Fixture{Tasks: []TaskFixture{{Title: "ok"}, {Title: " "}}}

	seeder, _, _ := newSeeder(t)
	result, err := seeder.Apply(context.Background(), fixture)
	assert.ErrorContains(t, err, "failed to seed task #2")
	assert.Equal(t, 1, result.Tasks)
}

func TestDecode(t *testing.T) {
	_, err := Decode(strings.NewReader("projects:\n  - key: a\n    colour: red\n"))
	assert.Error(t, err)

	fixture, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, fixture.Tasks)

	_, err = LoadFile("testdata/missing.yaml")
	assert.Error(t, err)
}

func TestValidateKeys_Duplicates(t *testing.T) {
	fixture := &Fixture{Users: []UserFixture{{Key: "a", Name: "A"}, {Key: "a", Name: "B"}}}
	assert.ErrorContains(t, fixture.validateKeys(), `duplicate user key "a"`)
}
