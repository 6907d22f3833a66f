package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leadflow/internal/entities"
)

type evalCaseRequest struct {
	Name     string                `json:"name" binding:"required,max=100"`
	Kind     string                `json:"kind" binding:"required,oneof=scoring outreach"`
	Input    entities.EvalInput    `json:"input"`
	Criteria entities.EvalCriteria `json:"criteria"`
}

func (h *Handler) ListEvalCases(c *gin.Context) {
	kind := c.Query("kind")
	if kind != "" && kind != entities.EvalKindScoring && kind != entities.EvalKindOutreach {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be scoring or outreach"})
		return
	}
	cases, err := h.evalCases.ListCases(c.Request.Context(), kind)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cases)
}

func (h *Handler) CreateEvalCase(c *gin.Context) {
	var req evalCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Input.Prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "input.prompt is required"})
		return
	}
	if req.Criteria.PassThreshold < 0 || req.Criteria.PassThreshold > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pass_threshold must be between 0 and 100"})
		return
	}
	evalCase := &entities.EvalCase{
		Name:     SanitizeString(req.Name),
		Kind:     req.Kind,
		Input:    req.Input,
		Criteria: req.Criteria,
	}
	if err := h.evalCases.CreateCase(c.Request.Context(), evalCase); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, evalCase)
}

func (h *Handler) GetEvalCase(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	evalCase, err := h.evalCases.GetCase(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, evalCase)
}

func (h *Handler) DeleteEvalCase(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.evalCases.DeleteCase(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// StartEvalRun executes the matching cases and blocks until the run is
// graded; runs are small and bounded, so the caller just waits.
func (h *Handler) StartEvalRun(c *gin.Context) {
	var req struct {
		Kind string `json:"kind" binding:"omitempty,oneof=scoring outreach"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	run, err := h.eval.Run(c.Request.Context(), req.Kind)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, run)
}

func (h *Handler) ListEvalRuns(c *gin.Context) {
	limit := queryInt(c, "limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	runs, err := h.evalCases.ListRuns(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, runs)
}

func (h *Handler) GetEvalRun(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	run, err := h.evalCases.GetRun(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, run)
}
