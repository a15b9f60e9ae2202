// Package dto defines the request and response shapes of the HTTP API.
package dto

import (
	"errors"
	"strings"

	"github.com/soundprediction/veridoc/pkg/types"
)

// MaxQueryLength bounds accepted query strings.
const MaxQueryLength = 4096

// ErrQueryTooLong is returned for queries over MaxQueryLength.
var ErrQueryTooLong = errors.New("query exceeds maximum length")

// PrincipalRequest identifies the requesting user.
type PrincipalRequest struct {
	Username       string `json:"username" binding:"required"`
	Department     string `json:"department"`
	DepartmentRole string `json:"department_role"`
}

// Validate performs validation on PrincipalRequest
func (p *PrincipalRequest) Validate() error {
	if strings.TrimSpace(p.Username) == "" {
		return errors.New("username cannot be empty")
	}
	return nil
}

// ToPrincipal converts the request to the pipeline's principal type.
func (p *PrincipalRequest) ToPrincipal() types.Principal {
	return types.Principal{
		Username:       p.Username,
		Department:     p.Department,
		DepartmentRole: p.DepartmentRole,
	}
}

// QueryRequest is the body of POST /api/v1/query.
type QueryRequest struct {
	Query     string           `json:"query" binding:"required"`
	Principal PrincipalRequest `json:"principal" binding:"required"`
	K         int              `json:"k"`
}

// Validate performs validation on QueryRequest
func (q *QueryRequest) Validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return errors.New("query cannot be empty")
	}
	if len(q.Query) > MaxQueryLength {
		return ErrQueryTooLong
	}
	if q.K < 0 {
		return errors.New("k cannot be negative")
	}
	return q.Principal.Validate()
}

// ComplianceQueryRequest is the body of POST /api/v1/query/compliance.
type ComplianceQueryRequest struct {
	QueryRequest
	Framework string `json:"framework" binding:"required"`
}

// Validate performs validation on ComplianceQueryRequest
func (q *ComplianceQueryRequest) Validate() error {
	if strings.TrimSpace(q.Framework) == "" {
		return errors.New("framework cannot be empty")
	}
	return q.QueryRequest.Validate()
}

// DocumentResult is one accepted document in a query response.
type DocumentResult struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Domain        string   `json:"domain"`
	MaskedLabels  []string `json:"masked_labels,omitempty"`
	DetectedTerms []string `json:"detected_terms,omitempty"`
}

// QueryResponse is the body of a successful query.
type QueryResponse struct {
	Documents []DocumentResult    `json:"documents"`
	Stats     types.PipelineStats `json:"stats"`
	Message   string              `json:"message,omitempty"`
}

// MessageNoAuthorizedContext is returned when nothing survived validation.
// Callers must treat it as "no authorized material exists for this query",
// never as an empty-corpus error.
const MessageNoAuthorizedContext = "no authorized documents available to answer this query"

// FromResult converts a pipeline result into the API response shape.
func FromResult(result *types.PipelineResult) QueryResponse {
	resp := QueryResponse{
		Documents: make([]DocumentResult, 0, len(result.Accepted)),
		Stats:     result.Stats,
	}
	for _, o := range result.Accepted {
		resp.Documents = append(resp.Documents, DocumentResult{
			ID:            o.Document.ID,
			Title:         o.Document.Title,
			Content:       o.Document.Content,
			Domain:        string(o.Document.Domain),
			MaskedLabels:  o.MaskedLabels,
			DetectedTerms: o.DetectedTerms,
		})
	}
	if result.Stats.Accepted == 0 {
		resp.Message = MessageNoAuthorizedContext
	}
	return resp
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
