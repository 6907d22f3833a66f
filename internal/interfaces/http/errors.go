package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"leadflow/internal/infrastructure/grok"
	"leadflow/internal/repository"
	"leadflow/internal/resilience"
	"leadflow/internal/usecases"
)

// respondError maps service and storage errors onto status codes. Internal
// failures never leak details to the client; the cause goes to the log.
func respondError(c *gin.Context, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, repository.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, repository.ErrInvalidReference):
		c.JSON(http.StatusBadRequest, gin.H{"error": "referenced record does not exist"})

	case errors.Is(err, usecases.ErrUnknownStage),
		errors.Is(err, usecases.ErrInvalidTransition),
		errors.Is(err, usecases.ErrUnknownChannel),
		errors.Is(err, usecases.ErrChannelMismatch),
		errors.Is(err, usecases.ErrNoDestination),
		errors.Is(err, usecases.ErrNoEvalCases):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, usecases.ErrAlreadySent),
		errors.Is(err, usecases.ErrNotSendable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, usecases.ErrSendThrottled):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})

	case errors.Is(err, resilience.ErrOpen):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "model temporarily unavailable"})

	case isUpstream(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream model error"})

	default:
		log.Error("request failed",
			"error", err,
			"path", c.FullPath(),
			"request_id", c.GetString("request_id"))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func isUpstream(err error) bool {
	var apiErr *grok.APIError
	return errors.Is(err, grok.ErrTimeout) ||
		errors.Is(err, grok.ErrRateLimited) ||
		errors.Is(err, grok.ErrMalformedResponse) ||
		errors.As(err, &apiErr)
}
