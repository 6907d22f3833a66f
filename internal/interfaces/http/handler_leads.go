package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"leadflow/internal/entities"
	"leadflow/internal/usecases"
)

type leadRequest struct {
	CompanyID   int    `json:"company_id" binding:"required"`
	FirstName   string `json:"first_name" binding:"max=100"`
	LastName    string `json:"last_name" binding:"max=100"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone" binding:"max=50"`
	Title       string `json:"title" binding:"max=150"`
	LinkedinURL string `json:"linkedin_url" binding:"omitempty,url,max=255"`
	Source      string `json:"source" binding:"max=50"`
	Notes       string `json:"notes" binding:"max=10000"`
}

func (req *leadRequest) toEntity(id int) *entities.Lead {
	return &entities.Lead{
		ID:          id,
		CompanyID:   req.CompanyID,
		FirstName:   SanitizeString(req.FirstName),
		LastName:    SanitizeString(req.LastName),
		Email:       req.Email,
		Phone:       req.Phone,
		Title:       SanitizeString(req.Title),
		LinkedinURL: req.LinkedinURL,
		Source:      req.Source,
		Notes:       SanitizeString(req.Notes),
	}
}

// ListLeads returns leads, optionally narrowed to one stage. Full filtering
// lives under /search.
func (h *Handler) ListLeads(c *gin.Context) {
	stage := c.Query("stage")
	if stage != "" && !ValidStage(stage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown stage"})
		return
	}
	limit, offset := pageParams(c)
	leads, err := h.leads.List(c.Request.Context(), stage, limit, offset)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, leads)
}

// CreateLead inserts a lead; new leads always start in NEW regardless of
// the payload, stage moves go through /transition.
func (h *Handler) CreateLead(c *gin.Context) {
	var req leadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lead := req.toEntity(0)
	if err := h.leads.Create(c.Request.Context(), lead); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, lead)
}

func (h *Handler) GetLead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	lead, err := h.leads.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

func (h *Handler) UpdateLead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req leadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lead := req.toEntity(id)
	if err := h.leads.Update(c.Request.Context(), lead); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

func (h *Handler) DeleteLead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.leads.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) TransitionLead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Stage string `json:"stage" binding:"required"`
		Note  string `json:"note" binding:"max=1000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lead, err := h.pipeline.Transition(c.Request.Context(), id, req.Stage, SanitizeString(req.Note))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

func (h *Handler) ScoreLead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		ProfileID *int `json:"profile_id"`
	}
	// Empty body means "use the default profile".
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	result, err := h.scoring.ScoreLead(c.Request.Context(), id, req.ProfileID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) DraftOutreach(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req usecases.DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	msg, err := h.outreach.DraftMessage(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *Handler) ListInteractions(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	limit := queryInt(c, "limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	interactions, err := h.interactions.ListByLead(c.Request.Context(), id, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, interactions)
}

// CreateInteraction logs manual activity against a lead. System kinds
// (stage_change, score, message_sent, followup_due) are written by the
// services, not through this endpoint.
func (h *Handler) CreateInteraction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Kind       string     `json:"kind" binding:"required,oneof=note call email_open reply meeting"`
		Content    string     `json:"content" binding:"max=10000"`
		OccurredAt *time.Time `json:"occurred_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	interaction := &entities.Interaction{
		LeadID:  id,
		Kind:    req.Kind,
		Content: SanitizeString(req.Content),
	}
	if req.OccurredAt != nil {
		interaction.OccurredAt = *req.OccurredAt
	}
	if err := h.interactions.Create(c.Request.Context(), interaction); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, interaction)
}

func (h *Handler) ListLeadMessages(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	limit := queryInt(c, "limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	messages, err := h.messages.ListByLead(c.Request.Context(), id, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// SendMessage dispatches a drafted message on its channel.
func (h *Handler) SendMessage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	msg, err := h.outreach.SendMessage(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}
