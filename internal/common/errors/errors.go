// Package errors maps domain failures to the codes reported over HTTP and to
// the BPMN errors thrown back to the workflow engine.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode is the stable, client-visible error code.
type ErrorCode string

const (
	ErrCodeListingNotFound     ErrorCode = "LISTING_NOT_FOUND"
	ErrCodeInvalidListing      ErrorCode = "INVALID_LISTING"
	ErrCodeForbidden           ErrorCode = "FORBIDDEN"
	ErrCodeInvalidFilterFormat ErrorCode = "INVALID_FILTER_FORMAT"

	ErrCodeSourceUnavailable ErrorCode = "SOURCE_UNAVAILABLE"
	ErrCodeMalformedPayload  ErrorCode = "MALFORMED_PAYLOAD"
	ErrCodeStaleLoad         ErrorCode = "STALE_LOAD"

	ErrCodeSearchQueryFailed ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchIndexFailed ErrorCode = "SEARCH_INDEX_FAILED"

	ErrCodeAlreadyFavorite ErrorCode = "ALREADY_FAVORITE"
	ErrCodeNotFavorite     ErrorCode = "NOT_FAVORITE"
	ErrCodeInvalidUser     ErrorCode = "INVALID_USER"

	ErrCodeInvalidInquiry         ErrorCode = "INVALID_INQUIRY"
	ErrCodeInquiryNotFound        ErrorCode = "INQUIRY_NOT_FOUND"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeEventPublishFailed ErrorCode = "EVENT_PUBLISH_FAILED"
	ErrCodeInvalidEvent       ErrorCode = "INVALID_EVENT"

	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrCodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	ErrCodeTimeout        ErrorCode = "TIMEOUT_ERROR"
	ErrCodeInternal       ErrorCode = "INTERNAL_ERROR"
)

type codeInfo struct {
	status    int
	message   string
	retryable bool
}

var catalog = map[ErrorCode]codeInfo{
	ErrCodeListingNotFound:        {http.StatusNotFound, "Listing not found", false},
	ErrCodeInvalidListing:         {http.StatusBadRequest, "Listing data is invalid", false},
	ErrCodeForbidden:              {http.StatusForbidden, "Not allowed to access this resource", false},
	ErrCodeInvalidFilterFormat:    {http.StatusBadRequest, "Invalid filter format", false},
	ErrCodeSourceUnavailable:      {http.StatusBadGateway, "Listing source unavailable", true},
	ErrCodeMalformedPayload:       {http.StatusBadGateway, "Listing source returned a malformed payload", false},
	ErrCodeStaleLoad:              {http.StatusConflict, "A newer load superseded this one", true},
	ErrCodeSearchQueryFailed:      {http.StatusBadGateway, "Search query failed", true},
	ErrCodeSearchIndexFailed:      {http.StatusBadGateway, "Search indexing failed", true},
	ErrCodeAlreadyFavorite:        {http.StatusConflict, "Listing is already a favorite", false},
	ErrCodeNotFavorite:            {http.StatusNotFound, "Listing is not a favorite", false},
	ErrCodeInvalidUser:            {http.StatusBadRequest, "Invalid user", false},
	ErrCodeInvalidInquiry:         {http.StatusBadRequest, "Inquiry data is invalid", false},
	ErrCodeInquiryNotFound:        {http.StatusNotFound, "Inquiry not found", false},
	ErrCodeNotificationSendFailed: {http.StatusBadGateway, "Notification delivery failed", true},
	ErrCodeEventPublishFailed:     {http.StatusBadGateway, "Event publish failed", true},
	ErrCodeInvalidEvent:           {http.StatusBadRequest, "Invalid event", false},
	ErrCodeInvalidRequest:         {http.StatusBadRequest, "Invalid request", false},
	ErrCodeUnauthorized:           {http.StatusUnauthorized, "Caller identity is missing or invalid", false},
	ErrCodeTimeout:                {http.StatusGatewayTimeout, "Request timed out", true},
	ErrCodeInternal:               {http.StatusInternalServerError, "Unexpected error", false},
}

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// HTTPStatus is the response status for the error's code.
func (e *StandardError) HTTPStatus() int {
	return HTTPStatus(e.Code)
}

// New builds a StandardError for a catalogued code.
func New(code ErrorCode, details string) *StandardError {
	info, ok := catalog[code]
	if !ok {
		info = catalog[ErrCodeInternal]
	}
	return &StandardError{
		Code:      code,
		Message:   info.message,
		Details:   details,
		Retryable: info.retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestError reports a request that failed schema or binding checks.
func NewInvalidRequestError(details string) *StandardError {
	return New(ErrCodeInvalidRequest, details)
}

// FromError classifies any error. Domain sentinels carry their code as the
// error text, so the wrap chain is searched for a catalogued code.
func FromError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var std *StandardError
	if stderrors.As(err, &std) {
		return std
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return New(ErrCodeTimeout, err.Error())
	}
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		code := ErrorCode(e.Error())
		if _, ok := catalog[code]; ok {
			return New(code, err.Error())
		}
	}
	return New(ErrCodeInternal, err.Error())
}

// HTTPStatus maps a code to a response status. Unknown codes are 500.
func HTTPStatus(code ErrorCode) int {
	if info, ok := catalog[code]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// GetRetryCount returns how many times the engine should retry a job failing
// with code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeSourceUnavailable,
		ErrCodeSearchQueryFailed,
		ErrCodeSearchIndexFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeEventPublishFailed:
		return 3

	case ErrCodeTimeout, ErrCodeStaleLoad:
		return 2

	default:
		return 0 // business errors
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	c := string(code)
	switch {
	case strings.Contains(c, "LISTING") || c == string(ErrCodeForbidden):
		return "LISTING"
	case strings.Contains(c, "SOURCE") || strings.Contains(c, "PAYLOAD") || strings.Contains(c, "LOAD"):
		return "SOURCE"
	case strings.Contains(c, "SEARCH"):
		return "SEARCH"
	case strings.Contains(c, "FAVORITE") || strings.Contains(c, "USER"):
		return "FAVORITES"
	case strings.Contains(c, "INQUIRY") || strings.Contains(c, "NOTIFICATION"):
		return "INQUIRY"
	case strings.Contains(c, "EVENT"):
		return "EVENTS"
	case strings.Contains(c, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
