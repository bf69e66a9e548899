package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/task-dashboard-api/internal/constants"
	"github.com/yukikurage/task-dashboard-api/internal/dto"
	apierrors "github.com/yukikurage/task-dashboard-api/internal/errors"
	"github.com/yukikurage/task-dashboard-api/internal/models"
	"github.com/yukikurage/task-dashboard-api/internal/services"
)

type TaskHandler struct {
	tasks *services.TaskService
	log   logrus.FieldLogger
}

func NewTaskHandler(tasks *services.TaskService, log logrus.FieldLogger) *TaskHandler {
	return &TaskHandler{
		tasks: tasks,
		log:   log,
	}
}

// ListTasks returns all tasks, newest first
// Can filter by status, priority, projectId and assignedTo
func (h *TaskHandler) ListTasks(c *gin.Context) {
	conds := queryFilters(c,
		constants.FieldStatus,
		constants.FieldPriority,
		constants.FieldProjectID,
		constants.FieldAssignedTo,
	)

	var (
		tasks []models.Task
		err   error
	)
	if len(conds) > 0 {
		tasks, err = h.tasks.Where(c.Request.Context(), conds...)
	} else {
		tasks, err = h.tasks.GetAll(c.Request.Context())
	}
	if err != nil {
		apierrors.RespondWithServiceError(c, err, "Failed to fetch tasks")
		return
	}

	apierrors.RespondWithData(c, http.StatusOK, "Tasks retrieved successfully", tasks)
}

// ListOverdueTasks returns unfinished tasks past their deadline
func (h *TaskHandler) ListOverdueTasks(c *gin.Context) {
	tasks, err := h.tasks.Overdue(c.Request.Context(), time.Now())
	if err != nil {
		apierrors.RespondWithServiceError(c, err, "Failed to fetch tasks")
		return
	}

	apierrors.RespondWithData(c, http.StatusOK, "Overdue tasks retrieved successfully", tasks)
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, err := h.tasks.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		apierrors.RespondWithServiceError(c, err, "Failed to fetch task")
		return
	}

	apierrors.RespondWithData(c, http.StatusOK, "Task retrieved successfully", task)
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		apierrors.RespondWithServiceError(c, err, "Failed to create task")
		return
	}

	apierrors.RespondWithData(c, http.StatusCreated, "Task created successfully", task)
}

// UpdateTask merges the provided fields into an existing task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	// Parse raw JSON to detect which fields were sent
	var patch dto.Patch
	if !bindJSON(c, &patch) {
		return
	}

	input, err := dto.ToUpdateTaskInput(patch)
	if err != nil {
		apierrors.RespondWithServiceError(c, err, "Failed to update task")
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		apierrors.RespondWithServiceError(c, err, "Failed to update task")
		return
	}

	apierrors.RespondWithData(c, http.StatusOK, "Task updated successfully", task)
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	if err := h.tasks.Delete(c.Request.Context(), c.Param("id")); err != nil {
		apierrors.RespondWithServiceError(c, err, "Failed to delete task")
		return
	}

	apierrors.RespondWithData(c, http.StatusOK, "Task deleted successfully", nil)
}

// StreamTasks sends a snapshot event with the full task list on connect
// and after every change until the client disconnects
func (h *TaskHandler) StreamTasks(c *gin.Context) {
	ctx := c.Request.Context()

	// Only the latest snapshot matters to a slow client
	updates := make(chan []models.Task, 1)
	sub, err := h.tasks.Subscribe(ctx, func(tasks []models.Task) {
		select {
		case <-updates:
		default:
		}
		updates <- tasks
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err, "Failed to fetch tasks")
		return
	}
	defer sub.Unsubscribe()

	h.log.WithField("client_ip", c.ClientIP()).Debug("Task stream opened")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case tasks := <-updates:
			c.SSEvent("snapshot", tasks)
			return true
		}
	})

	h.log.WithField("client_ip", c.ClientIP()).Debug("Task stream closed")
}

// GenerateTasks uses AI to draft tasks from text
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	var req dto.GenerateTasksRequest
	if !bindJSON(c, &req) {
		return
	}

	drafts, created, err := h.tasks.GenerateTasks(c.Request.Context(), services.GenerateTasksInput{
		Text:      req.Text,
		ProjectID: req.ProjectID,
		Persist:   req.Persist,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAIServiceNotConfigured):
			apierrors.ServiceUnavailable(c, err.Error())
		case errors.Is(err, services.ErrAINoTasksGenerated), errors.Is(err, services.ErrAINoValidTasks):
			apierrors.RespondWithError(c, http.StatusUnprocessableEntity, err.Error(), "")
		default:
			h.log.WithError(err).Error("Task generation failed")
			apierrors.RespondWithServiceError(c, err, "Failed to generate tasks")
		}
		return
	}

	status := http.StatusOK
	if req.Persist {
		status = http.StatusCreated
	}
	apierrors.RespondWithData(c, status, "Tasks generated successfully", dto.GenerateTasksResponse{
		Drafts: drafts,
		Tasks:  created,
	})
}
