package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMongo    = "mongo"
	DriverFile     = "file"
)

type Config struct {
	StoreDriver     string
	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	SQLitePath      string
	MongoURI        string
	MongoDBName     string
	DataDir         string
	UsersCollection string
	CascadeUnassign bool
	GinMode         string
	Port            string
	LogLevel        string
	LogFile         string
	OpenAIAPIKey    string
}

// Load reads the configuration from the environment, after loading the
// given .env files when they exist
func Load(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	cfg := &Config{
		StoreDriver:     getEnv("STORE_DRIVER", DriverMemory),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", ""),
		DBUser:          getEnv("DB_USER", "taskuser"),
		DBPassword:      getEnv("DB_PASSWORD", "taskpassword"),
		DBName:          getEnv("DB_NAME", "task_dashboard"),
		SQLitePath:      getEnv("SQLITE_PATH", "task_dashboard.db"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "task_dashboard"),
		DataDir:         getEnv("DATA_DIR", "data"),
		UsersCollection: getEnv("USERS_COLLECTION", "users"),
		GinMode:         getEnv("GIN_MODE", "debug"),
		Port:            getEnv("PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFile:         getEnv("LOG_FILE", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
	}

	cascade, err := getEnvBool("CASCADE_UNASSIGN", false)
	if err != nil {
		return nil, err
	}
	cfg.CascadeUnassign = cascade

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the driver and fills the default port for SQL servers
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory, DriverSQLite, DriverMongo, DriverFile:
	case DriverPostgres:
		if c.DBPort == "" {
			c.DBPort = "5432"
		}
	case DriverMySQL:
		if c.DBPort == "" {
			c.DBPort = "3306"
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
