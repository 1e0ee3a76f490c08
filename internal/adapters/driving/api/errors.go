package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/logger"
)

// Public error messages. Internal details stay in the log.
const (
	msgNoInput     = "no input provided"
	msgUnavailable = "upstream data temporarily unavailable"
	msgLLM         = "no LLM provider configured"
	msgNotFound    = "not found"
	msgRateLimited = "upstream rate limit reached, try again later"
	msgAuth        = "upstream credentials rejected"
	msgInternal    = "internal error"
	msgNoArticles  = "article service not configured"
	msgNoDrafting  = "drafting service not configured"
	msgNoExport    = "export service not configured"
)

// envelope is the body of every JSON response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, envelope{Error: msg})
}

// statusFor maps a core error to its HTTP status and public message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrEmptyReleaseNotes):
		return http.StatusBadRequest, msgNoInput
	case errors.Is(err, domain.ErrCorpusUnavailable), errors.Is(err, domain.ErrEmbeddingUnavailable):
		return http.StatusServiceUnavailable, msgUnavailable
	case errors.Is(err, domain.ErrLLMUnavailable):
		return http.StatusServiceUnavailable, msgLLM
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, msgRateLimited
	case errors.Is(err, domain.ErrAuthInvalid):
		return http.StatusBadGateway, msgAuth
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, msgNotFound
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnsupportedFormat):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// respondError logs err and writes the mapped response.
func respondError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Warn("[api] %s %s: %v", c.Request.Method, c.FullPath(), err)
	} else {
		logger.Debug("[api] %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	fail(c, status, msg)
}
