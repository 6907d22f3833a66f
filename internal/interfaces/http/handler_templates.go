package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leadflow/internal/entities"
)

type templateRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Channel string `json:"channel" binding:"required,oneof=email linkedin telegram whatsapp"`
	Subject string `json:"subject" binding:"max=255"`
	Body    string `json:"body" binding:"required,max=10000"`
}

func (h *Handler) ListTemplates(c *gin.Context) {
	channel := c.Query("channel")
	if channel != "" && !ValidChannel(channel) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown channel"})
		return
	}
	templates, err := h.templates.List(c.Request.Context(), channel)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

func (h *Handler) CreateTemplate(c *gin.Context) {
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tmpl := &entities.MessageTemplate{
		Name:    SanitizeString(req.Name),
		Channel: req.Channel,
		Subject: SanitizeString(req.Subject),
		Body:    SanitizeString(req.Body),
	}
	if err := h.templates.Create(c.Request.Context(), tmpl); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, tmpl)
}

func (h *Handler) GetTemplate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	tmpl, err := h.templates.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, tmpl)
}

func (h *Handler) UpdateTemplate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tmpl := &entities.MessageTemplate{
		ID:      id,
		Name:    SanitizeString(req.Name),
		Channel: req.Channel,
		Subject: SanitizeString(req.Subject),
		Body:    SanitizeString(req.Body),
	}
	if err := h.templates.Update(c.Request.Context(), tmpl); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, tmpl)
}

func (h *Handler) DeleteTemplate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.templates.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
