// Package handlers implements the HTTP API endpoints.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/veridoc"
	"github.com/soundprediction/veridoc/pkg/policy"
	"github.com/soundprediction/veridoc/pkg/server/dto"
)

// QueryHandler handles validated retrieval requests
type QueryHandler struct {
	veridoc veridoc.Querier
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(v veridoc.Querier) *QueryHandler {
	return &QueryHandler{
		veridoc: v,
	}
}

// Query handles POST /api/v1/query
func (h *QueryHandler) Query(c *gin.Context) {
	var req dto.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	result, err := h.veridoc.RetrieveAndValidate(c.Request.Context(), req.Query, req.Principal.ToPrincipal(), req.K)
	if err != nil {
		h.writeQueryError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromResult(result))
}

// QueryCompliance handles POST /api/v1/query/compliance
func (h *QueryHandler) QueryCompliance(c *gin.Context) {
	var req dto.ComplianceQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	result, err := h.veridoc.RetrieveAndValidateCompliance(
		c.Request.Context(),
		req.Query,
		req.Principal.ToPrincipal(),
		req.K,
		policy.Framework(req.Framework),
	)
	if err != nil {
		h.writeQueryError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromResult(result))
}

func (h *QueryHandler) writeQueryError(c *gin.Context, err error) {
	if errors.Is(err, veridoc.ErrEmptyQuery) || errors.Is(err, veridoc.ErrInvalidPrincipal) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "query_failed", Message: err.Error()})
}
