package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches DomainErrors by code, so wrapped instances satisfy
// errors.Is against the sentinel values below.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Domain error codes
const (
	ErrCodeInvalidConfiguration  = "INVALID_CONFIGURATION"
	ErrCodeAuthentication        = "AUTHENTICATION"
	ErrCodeEmbeddingUnavailable  = "EMBEDDING_UNAVAILABLE"
	ErrCodeDimensionMismatch     = "DIMENSION_MISMATCH"
	ErrCodeCollectionNotFound    = "COLLECTION_NOT_FOUND"
	ErrCodeGenerationUnavailable = "GENERATION_UNAVAILABLE"
)

var (
	// ErrInvalidConfiguration signals bad chunking or store parameters.
	// Fatal; the caller must fix its configuration.
	ErrInvalidConfiguration = NewDomainError(ErrCodeInvalidConfiguration, "invalid configuration")

	// ErrAuthentication signals a missing or rejected API key. Never
	// retried; recoverable only by switching to the local fallback.
	ErrAuthentication = NewDomainError(ErrCodeAuthentication, "embedding API authentication failed")

	// ErrEmbeddingUnavailable signals that every embedding provider has
	// been exhausted for a call.
	ErrEmbeddingUnavailable = NewDomainError(ErrCodeEmbeddingUnavailable, "no embedding provider available")

	// ErrDimensionMismatch signals an embedding-space inconsistency.
	// Always fatal; mixing spaces would silently corrupt retrieval.
	ErrDimensionMismatch = NewDomainError(ErrCodeDimensionMismatch, "embedding dimension mismatch")

	// ErrCollectionNotFound signals a query against a collection that
	// has never been created.
	ErrCollectionNotFound = NewDomainError(ErrCodeCollectionNotFound, "collection not found")

	// ErrGenerationUnavailable is propagated unchanged from the
	// generation collaborator.
	ErrGenerationUnavailable = NewDomainError(ErrCodeGenerationUnavailable, "generation service unavailable")
)
