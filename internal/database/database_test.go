package database

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-dashboard-api/internal/config"
	"github.com/yukikurage/task-dashboard-api/internal/repository"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestDialector(t *testing.T) {
	cases := []struct {
		driver string
		name   string
	}{
		{config.DriverMemory, "sqlite"},
		{config.DriverSQLite, "sqlite"},
		{config.DriverMySQL, "mysql"},
		{config.DriverPostgres, "postgres"},
	}
	for _, tc := range cases {
		dialector, err := Dialector(&config.Config{StoreDriver: tc.driver})
		require.NoError(t, err, tc.driver)
		assert.Equal(t, tc.name, dialector.Name())
	}

	_, err := Dialector(&config.Config{StoreDriver: config.DriverMongo})
	assert.Error(t, err)
}

func TestOpenStore_Memory(t *testing.T) {
	log, _ := test.NewNullLogger()
	ctx := context.Background()

	store, err := OpenStore(ctx, &config.Config{StoreDriver: config.DriverMemory}, log)
	require.NoError(t, err)
	defer store.Close(ctx)

	tasks := store.Collection("tasks")
	id, err := tasks.Add(ctx, map[string]any{"title": "hello"})
	require.NoError(t, err)

	doc, err := tasks.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "hello", doc.Fields["title"])
}

func TestMigrate_Idempotent(t *testing.T) {
	log, _ := test.NewNullLogger()
	db, err := Connect(&config.Config{StoreDriver: config.DriverMemory}, log)
	require.NoError(t, err)

	require.NoError(t, Migrate(db, log))
	require.NoError(t, Migrate(db, log))
	assert.True(t, db.Migrator().HasIndex(&repository.DocumentRecord{}, "idx_documents_collection_created_at"))
}

func TestOpenStore_File(t *testing.T) {
	log, _ := test.NewNullLogger()
	store, err := OpenStore(context.Background(), &config.Config{StoreDriver: config.DriverFile, DataDir: t.TempDir()}, log)
	require.NoError(t, err)
	assert.IsType(t, &repository.FileStore{}, store)
}

func TestMongoBreaker(t *testing.T) {
	log, hook := test.NewNullLogger()
	cb := NewMongoBreaker(log)

	for i := 0; i < 10; i++ {
		_, err := cb.Execute(func() (any, error) { return nil, repository.ErrNotFound })
		assert.ErrorIs(t, err, repository.ErrNotFound)
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())

	for i := 0; i < 4; i++ {
		_, _ = cb.Execute(func() (any, error) { return nil, errors.New("connection refused") })
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())
	require.NotEmpty(t, hook.AllEntries())
	assert.Equal(t, "open", hook.LastEntry().Data["to"])
}

func TestMigrateMongo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("creates indexes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())
		err := MigrateMongo(context.Background(), mt.DB, []string{"tasks", "projects"})
		assert.NoError(mt, err)
	})

	mt.Run("reports failures", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad index"}))
		err := MigrateMongo(context.Background(), mt.DB, []string{"tasks"})
		assert.ErrorContains(mt, err, "failed to create indexes on tasks")
	})
}
