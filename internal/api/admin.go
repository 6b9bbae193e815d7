package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/botikaph/annotator-backend/internal/middleware"
	"github.com/botikaph/annotator-backend/internal/service"
	"github.com/botikaph/annotator-backend/internal/types"
)

// AdminHandler serves account provisioning for admins.
type AdminHandler struct {
	auth *service.AuthService
}

// NewAdminHandler creates a new AdminHandler instance
func NewAdminHandler(auth *service.AuthService) *AdminHandler {
	return &AdminHandler{auth: auth}
}

// RegisterRoutes registers the admin routes; the group must already be
// behind AuthMiddleware.
func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := router.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.POST("/users", h.CreateUser)
	}
}

// CreateUser provisions an annotator account, optionally with admin rights.
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req types.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.auth.CreateUser(c.Request.Context(), req.Name, req.Email, req.Password, req.IsAdmin)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		logrus.WithError(err).Error("failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, user)
}
