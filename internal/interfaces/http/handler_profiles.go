package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leadflow/internal/entities"
)

type profileRequest struct {
	Name             string                 `json:"name" binding:"required,max=100"`
	Weights          map[string]float64     `json:"weights"`
	Rules            []entities.ScoringRule `json:"rules" binding:"max=50"`
	QualifyThreshold int                    `json:"qualify_threshold" binding:"min=0,max=100"`
	IsDefault        bool                   `json:"is_default"`
}

// validate covers what binding tags cannot express for nested rules.
func (req *profileRequest) validate() string {
	for i, rule := range req.Rules {
		if rule.Field == "" || rule.Value == "" {
			return "rule field and value are required"
		}
		if !ValidRuleOp(rule.Op) {
			return "rule op must be one of contains, not_contains, equals, prefix, suffix"
		}
		if rule.Points < -100 || rule.Points > 100 {
			return "rule points must be between -100 and 100"
		}
		req.Rules[i].Value = SanitizeString(rule.Value)
	}
	for factor, w := range req.Weights {
		if factor == "" || w < 0 {
			return "weights must have named factors and non-negative values"
		}
	}
	return ""
}

func (h *Handler) ListProfiles(c *gin.Context) {
	profiles, err := h.profiles.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}

func (h *Handler) CreateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	profile := &entities.ScoringProfile{
		Name:             SanitizeString(req.Name),
		Weights:          req.Weights,
		Rules:            req.Rules,
		QualifyThreshold: req.QualifyThreshold,
		IsDefault:        req.IsDefault,
	}
	if err := h.profiles.Create(c.Request.Context(), profile); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

func (h *Handler) GetProfile(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	profile, err := h.profiles.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	profile := &entities.ScoringProfile{
		ID:               id,
		Name:             SanitizeString(req.Name),
		Weights:          req.Weights,
		Rules:            req.Rules,
		QualifyThreshold: req.QualifyThreshold,
		IsDefault:        req.IsDefault,
	}
	if err := h.profiles.Update(c.Request.Context(), profile); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) DeleteProfile(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.profiles.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
