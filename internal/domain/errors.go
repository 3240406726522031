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

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
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

// Common domain error codes
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ErrCodeExtraction        = "EXTRACTION_ERROR"
	ErrCodeOCRNoText         = "OCR_NO_TEXT"
	ErrCodeOCRUnavailable    = "OCR_UNAVAILABLE"
	ErrCodeOCRFailed         = "OCR_FAILED"
	ErrCodeIndexing          = "INDEXING_ERROR"
	ErrCodeConnection        = "CONNECTION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrEmptyFile    = NewDomainError(ErrCodeValidation, "file is empty")
	ErrFileTooLarge = NewDomainError(ErrCodeValidation, "file exceeds the maximum allowed size")
)

// Extraction and OCR errors
var (
	ErrUnsupportedFormat = NewDomainError(ErrCodeUnsupportedFormat, "unsupported file format")
	ErrExtractionFailed  = NewDomainError(ErrCodeExtraction, "failed to extract text from document")
	ErrOCRNoTextFound    = NewDomainError(ErrCodeOCRNoText, "no text could be extracted from the image")
	ErrOCRUnavailable    = NewDomainError(ErrCodeOCRUnavailable, "OCR backend is not available")
	ErrOCRFailed         = NewDomainError(ErrCodeOCRFailed, "text recognition failed")
)

// Indexing errors
var (
	ErrIndexingInFlight = NewDomainError(ErrCodeConflict, "document is already being indexed")
	ErrEmbeddingFailed  = NewDomainError(ErrCodeIndexing, "embedding generation failed")
)

// Not found errors
var (
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
	ErrDatabaseNotFound = NewDomainError(ErrCodeNotFound, "knowledge database not found")
	ErrNoActiveDatabase = NewDomainError(ErrCodeNotFound, "no active knowledge database for owner")
)

// Connection errors
var (
	ErrDatabaseUnreachable = NewDomainError(ErrCodeConnection, "knowledge database is unreachable")
)

// Authorization errors
var (
	ErrNotAuthenticated = NewDomainError(ErrCodeUnauthorized, "no authenticated user")
)

// Configuration errors
var (
	ErrDimensionMismatch = NewDomainError(ErrCodeInternalError, "embedding dimension does not match the indexed chunks")
)
