package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leadflow/internal/entities"
)

type companyRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Domain      string `json:"domain" binding:"max=255"`
	Industry    string `json:"industry" binding:"max=100"`
	Size        string `json:"size" binding:"max=20"`
	Description string `json:"description" binding:"max=5000"`
}

func (h *Handler) ListCompanies(c *gin.Context) {
	limit, offset := pageParams(c)
	companies, err := h.companies.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, companies)
}

func (h *Handler) CreateCompany(c *gin.Context) {
	var req companyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	company := &entities.Company{
		Name:        SanitizeString(req.Name),
		Domain:      req.Domain,
		Industry:    req.Industry,
		Size:        req.Size,
		Description: SanitizeString(req.Description),
	}
	if err := h.companies.Create(c.Request.Context(), company); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, company)
}

func (h *Handler) GetCompany(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	company, err := h.companies.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (h *Handler) UpdateCompany(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req companyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	company := &entities.Company{
		ID:          id,
		Name:        SanitizeString(req.Name),
		Domain:      req.Domain,
		Industry:    req.Industry,
		Size:        req.Size,
		Description: SanitizeString(req.Description),
	}
	if err := h.companies.Update(c.Request.Context(), company); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (h *Handler) DeleteCompany(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.companies.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// pageParams reads limit/offset with the same bounds the search layer uses.
func pageParams(c *gin.Context) (int, int) {
	limit := queryInt(c, "limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
