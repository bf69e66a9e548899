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

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// ListUsers returns all users
// Can filter by role, department and email
func (h *UserHandler) ListUsers(c *gin.Context) {
	var (
		users []models.User
		err   error
	)
	conds := queryFilters(c, constants.FieldRole, constants.FieldDepartment, constants.FieldEmail)
	if len(conds) > 0 {
		users, err = h.users.Where(c.Request.Context(), conds...)
	} else {
		users, err = h.users.GetAll(c.Request.Context())
	}
	if err != nil {
		apierrors.RespondWithServiceError(c, err, "Failed to fetch users")
		return
	}

	apierrors.RespondWithData(c, http.StatusOK, "Users retrieved successfully", users)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		apierrors.RespondWithServiceError(c, err, "Failed to fetch user")
		return
	}

	apierrors.RespondWithData(c, http.StatusOK, "User retrieved successfully", user)
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		apierrors.RespondWithServiceError(c, err, "Failed to create user")
		return
	}

	apierrors.RespondWithData(c, http.StatusCreated, "User created successfully", user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	var patch dto.Patch
	if !bindJSON(c, &patch) {
		return
	}

	input, err := dto.ToUpdateUserInput(patch)
	if err != nil {
		apierrors.RespondWithServiceError(c, err, "Failed to update user")
		return
	}

	user, err := h.users.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		apierrors.RespondWithServiceError(c, err, "Failed to update user")
		return
	}

	apierrors.RespondWithData(c, http.StatusOK, "User updated successfully", user)
}

// DeleteUser deletes a user; assigned tasks are unassigned only when
// cascading is enabled
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		apierrors.RespondWithServiceError(c, err, "Failed to delete user")
		return
	}

	apierrors.RespondWithData(c, http.StatusOK, "User deleted successfully", nil)
}
