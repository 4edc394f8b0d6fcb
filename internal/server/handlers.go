package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ricardonunez-io/logsleuth/internal/analyzer"
	"github.com/rs/zerolog/log"
)

// AnalyzeRequest is the body of POST /api/v1/analyze.
type AnalyzeRequest struct {
	Input string `json:"input" binding:"required"`
}

type StatusResponse struct {
	Service string `json:"service"`
	Report  string `json:"report"`
}

// Health handles GET /health
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Analyze handles POST /api/v1/analyze
func (s *Server) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Input) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "input must not be blank"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.AnalysisTimeout)
	defer cancel()

	result, err := s.analyzer.Analyze(ctx, req.Input)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, result)
	case errors.Is(err, analyzer.ErrIterationBudgetExceeded):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "analysis timed out"})
	default:
		log.Err(err).Str("requestId", c.GetString(requestIDKey)).Msg("Analysis failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Status handles GET /api/v1/status/:service
func (s *Server) Status(c *gin.Context) {
	service := strings.TrimSpace(c.Param("service"))
	c.JSON(http.StatusOK, StatusResponse{
		Service: service,
		Report:  s.status.Fetch(c.Request.Context(), service),
	})
}
