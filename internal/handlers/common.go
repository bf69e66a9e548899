package handlers

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/task-dashboard-api/internal/errors"
	"github.com/yukikurage/task-dashboard-api/internal/repository"
)

// queryFilters turns the allowed query parameters into equality conditions
func queryFilters(c *gin.Context, keys ...string) []repository.Condition {
	var conds []repository.Condition
	for _, key := range keys {
		if value, ok := c.GetQuery(key); ok && value != "" {
			conds = append(conds, repository.Condition{Field: key, Value: value})
		}
	}
	return conds
}

// bindJSON decodes the request body and writes a 400 on failure
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(err)
		apierrors.BadRequest(c, "Invalid request body")
		return false
	}
	return true
}
