package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"leadflow/internal/interfaces"
	"leadflow/internal/usecases"
)

type AdminHandler struct {
	users     interfaces.UserStore
	dashboard *usecases.DashboardUsecase
	log       *slog.Logger
}

func NewAdminHandler(users interfaces.UserStore, dashboard *usecases.DashboardUsecase, log *slog.Logger) *AdminHandler {
	return &AdminHandler{
		users:     users,
		dashboard: dashboard,
		log:       log.With("component", "http.admin"),
	}
}

// GetStats returns platform-wide totals.
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.dashboard.AdminOverview(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetAllUsers returns every account. Password hashes never serialize.
func (h *AdminHandler) GetAllUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// UpdateUserStatus enables or disables an account.
func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	userID, ok := pathID(c)
	if !ok {
		return
	}

	var payload struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_active is required"})
		return
	}

	// Don't allow disabling self
	currentUserID, _ := c.Get("user_id")
	if uid, isFloat := currentUserID.(float64); isFloat && int(uid) == userID && !*payload.IsActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot disable your own account"})
		return
	}

	if err := h.users.SetActive(c.Request.Context(), userID, *payload.IsActive); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated", "is_active": *payload.IsActive})
}
