package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eion/technotes/internal/directory/users"
	"github.com/eion/technotes/internal/zerrors"
)

// UserHandlers provides HTTP handlers for the user directory
type UserHandlers struct {
	users  users.UserManager
	logger *zap.Logger
}

// NewUserHandlers creates new user handlers
func NewUserHandlers(manager users.UserManager, logger *zap.Logger) *UserHandlers {
	return &UserHandlers{users: manager, logger: logger}
}

// RegisterRoutes registers the /users routes. Update and delete carry the id in the body.
func (h *UserHandlers) RegisterRoutes(router gin.IRouter) {
	group := router.Group("/users")
	{
		group.GET("", h.ListUsers)
		group.POST("", h.CreateUser)
		group.PATCH("", h.UpdateUser)
		group.DELETE("", h.DeleteUser)
	}
}

// ListUsers serves GET /users, answering 400 when the directory is empty
func (h *UserHandlers) ListUsers(c *gin.Context) {
	list, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// CreateUser serves POST /users. A duplicate username answers 409.
func (h *UserHandlers) CreateUser(c *gin.Context) {
	var req users.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "All fields are required"})
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("User created", zap.String("user_id", user.ID.String()))
	c.JSON(http.StatusCreated, gin.H{"message": fmt.Sprintf("New user %s created", user.Username)})
}

// UpdateUser serves PATCH /users with the id in the body
func (h *UserHandlers) UpdateUser(c *gin.Context) {
	var req users.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "All fields are required"})
		return
	}

	user, err := h.users.UpdateUser(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("%s updated", user.Username)})
}

// DeleteUser answers 400 when notes still reference the user, and 200 with
// {"message":"User not found"} when the id does not exist.
func (h *UserHandlers) DeleteUser(c *gin.Context) {
	var req users.DeleteUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User ID required"})
		return
	}

	result, err := h.users.DeleteUser(c.Request.Context(), &req)
	if err != nil {
		if zerrors.IsConflict(err) {
			respondErrorWithStatus(c, h.logger, err, http.StatusBadRequest)
			return
		}
		respondError(c, h.logger, err)
		return
	}

	if !result.Deleted {
		c.JSON(http.StatusOK, gin.H{"message": result.Message()})
		return
	}
	c.JSON(http.StatusOK, result.Message())
}
