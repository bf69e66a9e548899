package server

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/task-dashboard-api/internal/handlers"
	"github.com/yukikurage/task-dashboard-api/internal/middleware"
	"github.com/yukikurage/task-dashboard-api/internal/services"
)

// Services bundles the collection services the API exposes
type Services struct {
	Projects  *services.ProjectService
	Tasks     *services.TaskService
	Users     *services.UserService
	Dashboard *services.DashboardService
}

// NewRouter builds the gin engine with every route under /api
func NewRouter(svc Services, log logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.CORS(), middleware.RequestLogger(log))

	taskHandler := handlers.NewTaskHandler(svc.Tasks, log)
	projectHandler := handlers.NewProjectHandler(svc.Projects)
	userHandler := handlers.NewUserHandler(svc.Users)
	dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard)

	r.GET("/health", handlers.Health)

	api := r.Group("/api")
	{
		api.GET("/health", handlers.Health)
		api.GET("/dashboard", dashboardHandler.GetDashboard)

		tasks := api.Group("/tasks")
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/overdue", taskHandler.ListOverdueTasks)
			tasks.GET("/stream", taskHandler.StreamTasks)
			tasks.POST("/generate", taskHandler.GenerateTasks)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
		}

		projects := api.Group("/projects")
		{
			projects.GET("", projectHandler.ListProjects)
			projects.POST("", projectHandler.CreateProject)
			projects.GET("/:id", projectHandler.GetProject)
			projects.PUT("/:id", projectHandler.UpdateProject)
			projects.DELETE("/:id", projectHandler.DeleteProject)
		}

		users := api.Group("/users")
		{
			users.GET("", userHandler.ListUsers)
			users.POST("", userHandler.CreateUser)
			users.GET("/:id", userHandler.GetUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)
		}
	}

	return r
}
