package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/task-dashboard-api/internal/errors"
	"github.com/yukikurage/task-dashboard-api/internal/services"
)

type DashboardHandler struct {
	dashboard *services.DashboardService
}

func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// GetDashboard returns the aggregate counts and upcoming deadlines
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	summary, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		apierrors.RespondWithServiceError(c, err, "Failed to build dashboard")
		return
	}

	apierrors.RespondWithData(c, http.StatusOK, "Dashboard retrieved successfully", summary)
}

// Health reports that the API is running
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Task Dashboard API is running",
	})
}
