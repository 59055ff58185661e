package chi

import "github.com/kailas-cloud/casesearch/internal/domain/document"

// MaxLimit caps the result size a client may request.
const MaxLimit = 50

// Result sources.
const (
	SourceStore   = "store"
	SourceSamples = "samples"
)

// ErrorCode is a machine-readable error class.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest            ErrorCode = "bad_request"
	CodeUnauthorized          ErrorCode = "unauthorized"
	CodeValidationFailed      ErrorCode = "validation_failed"
	CodeRepositoryUnavailable ErrorCode = "repository_unavailable"
	CodeInternalError         ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query string `json:"query"`
	Limit *int   `json:"limit,omitempty"`
}

// SearchResponse is the body of a successful POST /search.
type SearchResponse struct {
	Items   []document.Document `json:"items"`
	Total   int                 `json:"total"`
	Source  string              `json:"source"`
	Warning string              `json:"warning,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version"`
}
