package server

import (
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/task-dashboard-api/internal/config"
	"github.com/yukikurage/task-dashboard-api/internal/repository"
	"github.com/yukikurage/task-dashboard-api/internal/services"
)

// NewServices wires the collection services onto one store
func NewServices(store repository.Store, cfg *config.Config, log logrus.FieldLogger) Services {
	// Initialize AI service
	var aiService services.TaskGenerator
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	tasks := services.NewTaskService(store, aiService, log)
	projects := services.NewProjectService(store, log)
	users := services.NewUserService(store, tasks, services.UserServiceOptions{
		Collection:      cfg.UsersCollection,
		CascadeUnassign: cfg.CascadeUnassign,
	}, log)

	return Services{
		Projects:  projects,
		Tasks:     tasks,
		Users:     users,
		Dashboard: services.NewDashboardService(projects, tasks, users),
	}
}
