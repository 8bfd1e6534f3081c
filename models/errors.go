package models

import "fmt"

// Error codes used to tag failures of the scrape pipeline.
const (
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeNavigation   = "NAVIGATION_FAILED"
	ErrCodeTimeout      = "SCRAPE_TIMEOUT"
	ErrCodeExtraction   = "CONTENT_EXTRACTION_FAILED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// Public error messages. Internal causes are logged, never returned.
const (
	MsgURLRequired  = "URL is required"
	MsgScrapeFailed = "Failed to scrape the URL"
	MsgGreetFailed  = "Something went wrong"
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

// PublicMessage is the caller-facing text for the error's code.
func (e *ScrapeError) PublicMessage() string {
	if e.Code == ErrCodeInvalidInput {
		return MsgURLRequired
	}
	return MsgScrapeFailed
}
