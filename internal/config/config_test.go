package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("CASCADE_UNASSIGN", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, "users", cfg.UsersCollection)
	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.CascadeUnassign)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("STORE_DRIVER", DriverPostgres)
	t.Setenv("DB_PORT", "")
	t.Setenv("USERS_COLLECTION", "taskManagement")
	t.Setenv("CASCADE_UNASSIGN", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "taskManagement", cfg.UsersCollection)
	assert.True(t, cfg.CascadeUnassign)
}

func TestLoad_EnvFile(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	os.Unsetenv("STORE_DRIVER")
	t.Setenv("PORT", "")
	os.Unsetenv("PORT")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("STORE_DRIVER=file\nPORT=9090\n"), 0o600))

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, DriverFile, cfg.StoreDriver)
	assert.Equal(t, "9090", cfg.Port)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("STORE_DRIVER", "cassandra")
	_, err := Load()
	assert.ErrorContains(t, err, "unknown STORE_DRIVER")

	t.Setenv("STORE_DRIVER", DriverFile)
	t.Setenv("CASCADE_UNASSIGN", "maybe")
	_, err = Load()
	assert.ErrorContains(t, err, "CASCADE_UNASSIGN")
}
