package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-dashboard-api/internal/constants"
	"github.com/yukikurage/task-dashboard-api/internal/dto"
	apierrors "github.com/yukikurage/task-dashboard-api/internal/errors"
	"github.com/yukikurage/task-dashboard-api/internal/models"
	"github.com/yukikurage/task-dashboard-api/internal/services"
)

type ProjectHandler struct {
	projects *services.ProjectService
}

func NewProjectHandler(projects *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// ListProjects returns all projects, optionally filtered by status
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	var (
		projects []models.Project
		err      error
	)
	if conds := queryFilters(c, constants.FieldStatus); len(conds) > 0 {
		projects, err = h.projects.Where(c.Request.Context(), conds...)
	} else {
		projects, err = h.projects.GetAll(c.Request.Context())
	}
	if err != nil {
		apierrors.RespondWithServiceError(c, err, "Failed to fetch projects")
		return
	}

	apierrors.RespondWithData(c, http.StatusOK, "Projects retrieved successfully", projects)
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.projects.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		apierrors.RespondWithServiceError(c, err, "Failed to fetch project")
		return
	}

	apierrors.RespondWithData(c, http.StatusOK, "Project retrieved successfully", project)
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req dto.CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projects.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		apierrors.RespondWithServiceError(c, err, "Failed to create project")
		return
	}

	apierrors.RespondWithData(c, http.StatusCreated, "Project created successfully", project)
}

func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	var patch dto.Patch
	if !bindJSON(c, &patch) {
		return
	}

	input, err := dto.ToUpdateProjectInput(patch)
	if err != nil {
		apierrors.RespondWithServiceError(c, err, "Failed to update project")
		return
	}

	project, err := h.projects.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		apierrors.RespondWithServiceError(c, err, "Failed to update project")
		return
	}

	apierrors.RespondWithData(c, http.StatusOK, "Project updated successfully", project)
}

func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	if err := h.projects.Delete(c.Request.Context(), c.Param("id")); err != nil {
		apierrors.RespondWithServiceError(c, err, "Failed to delete project")
		return
	}

	apierrors.RespondWithData(c, http.StatusOK, "Project deleted successfully", nil)
}
