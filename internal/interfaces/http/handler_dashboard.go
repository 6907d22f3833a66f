package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetDashboardStats returns the counters behind the dashboard landing page.
func (h *Handler) GetDashboardStats(c *gin.Context) {
	stats, err := h.dashboard.Overview(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetPipelineBoard returns leads grouped by stage for the kanban view.
func (h *Handler) GetPipelineBoard(c *gin.Context) {
	board, err := h.pipeline.Board(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// GetPipelineStages returns the stage order and allowed transitions, so the
// frontend can disable illegal moves without hardcoding the graph.
func (h *Handler) GetPipelineStages(c *gin.Context) {
	c.JSON(http.StatusOK, h.pipeline.Stages())
}
