package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leadflow/internal/entities"
)

// Search runs a filtered lead or company search. type=leads (default)
// accepts q, stage, industry, min_score, max_score, company_id;
// type=companies accepts q, industry, size. Both paginate with
// limit/offset and return the total match count.
func (h *Handler) Search(c *gin.Context) {
	limit, offset := pageParams(c)

	switch c.DefaultQuery("type", "leads") {
	case "leads":
		filter := entities.LeadFilter{
			Query:    c.Query("q"),
			Stage:    c.Query("stage"),
			Industry: c.Query("industry"),
			Limit:    limit,
			Offset:   offset,
		}
		if filter.Stage != "" && !ValidStage(filter.Stage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown stage"})
			return
		}
		if raw := c.Query("min_score"); raw != "" {
			v := queryInt(c, "min_score", 0)
			filter.MinScore = &v
		}
		if raw := c.Query("max_score"); raw != "" {
			v := queryInt(c, "max_score", 100)
			filter.MaxScore = &v
		}
		if raw := c.Query("company_id"); raw != "" {
			v := queryInt(c, "company_id", 0)
			filter.CompanyID = &v
		}
		hits, total, err := h.search.SearchLeads(c.Request.Context(), filter)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"items":  hits,
			"total":  total,
			"limit":  limit,
			"offset": offset,
		})

	case "companies":
		filter := entities.CompanyFilter{
			Query:    c.Query("q"),
			Industry: c.Query("industry"),
			Size:     c.Query("size"),
			Limit:    limit,
			Offset:   offset,
		}
		companies, total, err := h.search.SearchCompanies(c.Request.Context(), filter)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"items":  companies,
			"total":  total,
			"limit":  limit,
			"offset": offset,
		})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be leads or companies"})
	}
}
