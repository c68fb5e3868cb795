package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeChunking represents document segmentation errors
	ErrorTypeChunking ErrorType = "chunking"
	// ErrorTypeExtraction represents LLM extraction/parse errors
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypeMerge represents chunk-result merge conflicts
	ErrorTypeMerge ErrorType = "merge"
	// ErrorTypeGraph represents graph database errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeService represents unreachable/timed-out external services
	ErrorTypeService ErrorType = "service"
	// ErrorTypeSource represents document source errors
	ErrorTypeSource ErrorType = "source"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeContext represents context cancellation/timeout errors
	ErrorTypeContext ErrorType = "context"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Chunking Errors

// ErrChunkingFailed is returned when input text cannot be segmented
type ErrChunkingFailed struct {
	*BaseError
	TextLength int
}

func NewChunkingFailed(textLength int, reason string) *ErrChunkingFailed {
	return &ErrChunkingFailed{
		BaseError:  NewBaseError(ErrorTypeChunking, fmt.Sprintf("cannot segment text of %d chars: %s", textLength, reason), nil),
		TextLength: textLength,
	}
}

// Extraction Errors

// ErrExtractionParse is returned when one chunk's LLM output is unparseable.
// It is recovered locally: the chunk yields an empty record set.
type ErrExtractionParse struct {
	*BaseError
	ChunkIndex int
}

func NewExtractionParse(chunkIndex int, err error) *ErrExtractionParse {
	return &ErrExtractionParse{
		BaseError:  NewBaseError(ErrorTypeExtraction, fmt.Sprintf("unparseable LLM output for chunk %d", chunkIndex), err),
		ChunkIndex: chunkIndex,
	}
}

// Graph Errors

// ErrGraphConnectionFailed is returned when Neo4j connection fails
type ErrGraphConnectionFailed struct {
	*BaseError
	URI string
}

func NewGraphConnectionFailed(uri string, err error) *ErrGraphConnectionFailed {
	return &ErrGraphConnectionFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("failed to connect to Neo4j: %s", uri), err),
		URI:       uri,
	}
}

// ErrGraphWrite is returned when a single requirement or edge failed to persist.
// Recovered per record and collected into the task's error list.
type ErrGraphWrite struct {
	*BaseError
	RequirementID string
}

func NewGraphWrite(requirementID string, err error) *ErrGraphWrite {
	return &ErrGraphWrite{
		BaseError:     NewBaseError(ErrorTypeGraph, fmt.Sprintf("failed to persist requirement %s", requirementID), err),
		RequirementID: requirementID,
	}
}

// Service Errors

// ErrServiceUnavailable is returned when the LLM or graph store is
// unreachable or timed out. Fatal for the task, retryable by the scheduler.
type ErrServiceUnavailable struct {
	*BaseError
	Service string
}

func NewServiceUnavailable(service string, err error) *ErrServiceUnavailable {
	return &ErrServiceUnavailable{
		BaseError: NewBaseError(ErrorTypeService, fmt.Sprintf("service unavailable: %s", service), err),
		Service:   service,
	}
}

// Source Errors

// ErrSourceNotFound is returned when a document path does not exist
type ErrSourceNotFound struct {
	*BaseError
	Path string
}

func NewSourceNotFound(path string, err error) *ErrSourceNotFound {
	return &ErrSourceNotFound{
		BaseError: NewBaseError(ErrorTypeSource, fmt.Sprintf("document not found: %s", path), err),
		Path:      path,
	}
}

// ErrSourceUnsupported is returned when no reader handles a document format
type ErrSourceUnsupported struct {
	*BaseError
	Extension string
}

func NewSourceUnsupported(extension string) *ErrSourceUnsupported {
	return &ErrSourceUnsupported{
		BaseError: NewBaseError(ErrorTypeSource, fmt.Sprintf("unsupported document format: %s", extension), nil),
		Extension: extension,
	}
}

// Context Errors

// ErrContextCancelled is returned when context is cancelled
type ErrContextCancelled struct {
	*BaseError
	Operation string
}

func NewContextCancelled(operation string, err error) *ErrContextCancelled {
	return &ErrContextCancelled{
		BaseError: NewBaseError(ErrorTypeContext, fmt.Sprintf("context cancelled: %s", operation), err),
		Operation: operation,
	}
}

// Config Errors

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	if err == nil {
		return false
	}
	if baseErr, ok := err.(*BaseError); ok {
		return baseErr.Type == errType
	}
	if typed, ok := err.(interface{ Base() *BaseError }); ok {
		return typed.Base().Type == errType
	}
	if wrapped, ok := err.(interface{ Unwrap() error }); ok {
		return IsErrorType(wrapped.Unwrap(), errType)
	}
	return false
}

// Base exposes the embedded BaseError for typed errors
func (e *BaseError) Base() *BaseError { return e }

// IsRetryable checks if a task-level error should be retried by the scheduler
func IsRetryable(err error) bool {
	// Cancellation is not retryable
	if IsErrorType(err, ErrorTypeContext) {
		return false
	}
	// Unreachable services recover on resubmission
	if IsErrorType(err, ErrorTypeService) {
		return true
	}
	// Graph connection problems are transient
	if IsErrorType(err, ErrorTypeGraph) {
		return true
	}
	return false
}
