package models

import (
	"errors"
	"fmt"
)

// Error codes used across the pipeline.
const (
	ErrCodeFetchFailed   = "FETCH_FAILED"
	ErrCodeNavigation    = "NAVIGATION_FAILED"
	ErrCodeBrowserCrash  = "BROWSER_CRASH"
	ErrCodeTimeout       = "FETCH_TIMEOUT"
	ErrCodeRateLimited   = "RATE_LIMITED"
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeNoData        = "NO_DATA"
	ErrCodeDecodeFailure = "DECODE_FAILURE"
	ErrCodeValidation    = "VALIDATION_FAILED"
	ErrCodeInternal      = "INTERNAL_ERROR"

	// LLM-related error codes.
	ErrCodeLLMFailure     = "LLM_FAILURE"
	ErrCodeLLMAuthFailure = "LLM_AUTH_FAILURE"
	ErrCodeLLMRateLimited = "LLM_RATE_LIMITED"
)

// ScrapeError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ScrapeError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// IsRateLimited reports whether err carries a rate-limit error code, either
// from the page fetcher or from the LLM provider. The retry controller uses
// this instead of sniffing error strings.
func IsRateLimited(err error) bool {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Code == ErrCodeRateLimited || se.Code == ErrCodeLLMRateLimited
	}
	return false
}
