// Package domain provides the request/response shapes and canonical error types
// shared by the story gateway's handlers.
package domain

import (
	"fmt"
	"net/http"
	"strings"
)

// ErrorType represents the category of a gateway error.
type ErrorType string

const (
	// ErrorTypeValidation indicates missing or malformed input.
	ErrorTypeValidation ErrorType = "validation"

	// ErrorTypeUnauthorized indicates a missing or invalid bearer token.
	ErrorTypeUnauthorized ErrorType = "unauthorized"

	// ErrorTypeNotFound indicates a referenced row was not found.
	ErrorTypeNotFound ErrorType = "not_found"

	// ErrorTypeConfiguration indicates a required secret is not configured.
	ErrorTypeConfiguration ErrorType = "configuration"

	// ErrorTypeRateLimited indicates the AI provider answered 429.
	ErrorTypeRateLimited ErrorType = "rate_limited"

	// ErrorTypeCreditsExhausted indicates the AI provider answered 402.
	ErrorTypeCreditsExhausted ErrorType = "credits_exhausted"

	// ErrorTypeQuotaExceeded indicates a research provider ran out of quota or rate budget.
	ErrorTypeQuotaExceeded ErrorType = "quota_exceeded"

	// ErrorTypeExtraction indicates the auxiliary AI step produced no usable result.
	ErrorTypeExtraction ErrorType = "extraction"

	// ErrorTypeUpstreamFailure indicates any other non-success upstream response.
	ErrorTypeUpstreamFailure ErrorType = "upstream_failure"
)

// APIError is the canonical error returned by services and rendered by the
// frontdoor handlers.
type APIError struct {
	// Type is the category of error
	Type ErrorType `json:"classification,omitempty"`

	// Code is the short machine-readable code some clients key on
	// (e.g. "quota_exceeded"). When set it is rendered in the "error" field
	// and Message moves to the "message" field.
	Code string `json:"-"`

	// Message is the human-readable error message
	Message string `json:"-"`

	// StatusCode overrides the default HTTP status for Type
	StatusCode int `json:"-"`

	// UpstreamStatus is the status code returned by the provider, if any
	UpstreamStatus int `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// HTTPStatusCode returns the HTTP status code for this error.
func (e *APIError) HTTPStatusCode() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}

	switch e.Type {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeRateLimited, ErrorTypeQuotaExceeded:
		return http.StatusTooManyRequests
	case ErrorTypeCreditsExhausted:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// NewAPIError creates a new API error.
func NewAPIError(errType ErrorType, message string) *APIError {
	return &APIError{
		Type:    errType,
		Message: message,
	}
}

// WithCode adds a machine-readable code to the error.
func (e *APIError) WithCode(code string) *APIError {
	e.Code = code
	return e
}

// WithStatusCode sets a specific HTTP status code.
func (e *APIError) WithStatusCode(code int) *APIError {
	e.StatusCode = code
	return e
}

// WithUpstreamStatus records the provider's status code.
func (e *APIError) WithUpstreamStatus(code int) *APIError {
	e.UpstreamStatus = code
	return e
}

// Convenience constructors for common errors

// ErrValidation creates a validation error.
func ErrValidation(message string) *APIError {
	return NewAPIError(ErrorTypeValidation, message)
}

// ErrUnauthorized creates an unauthorized error.
func ErrUnauthorized(message string) *APIError {
	return NewAPIError(ErrorTypeUnauthorized, message)
}

// ErrNotFound creates a not found error.
func ErrNotFound(message string) *APIError {
	return NewAPIError(ErrorTypeNotFound, message)
}

// ErrConfiguration creates a configuration error.
func ErrConfiguration(message string) *APIError {
	return NewAPIError(ErrorTypeConfiguration, message)
}

// ErrExtraction creates an extraction error.
func ErrExtraction(message string) *APIError {
	return NewAPIError(ErrorTypeExtraction, message)
}

// ErrUpstream creates an upstream failure.
func ErrUpstream(message string) *APIError {
	return NewAPIError(ErrorTypeUpstreamFailure, message)
}

// User-facing messages for the AI provider family.
const (
	MessageRateLimited      = "Rate limit exceeded. Please try again in a moment."
	MessageCreditsExhausted = "AI usage credits depleted. Please add credits to continue."
)

// ClassifyAI maps a non-success status from a generative-AI provider to an
// APIError: 429 is RateLimited, 402 is CreditsExhausted and everything else is
// an UpstreamFailure.
func ClassifyAI(status int) *APIError {
	switch status {
	case http.StatusTooManyRequests:
		return ErrRateLimited()
	case http.StatusPaymentRequired:
		return ErrCreditsExhausted()
	default:
		return ErrUpstream(fmt.Sprintf("AI API request failed: %d", status)).
			WithUpstreamStatus(status)
	}
}

// ErrRateLimited creates the AI-family rate limit error.
func ErrRateLimited() *APIError {
	return NewAPIError(ErrorTypeRateLimited, MessageRateLimited).
		WithUpstreamStatus(http.StatusTooManyRequests)
}

// ErrCreditsExhausted creates the AI-family credits error.
func ErrCreditsExhausted() *APIError {
	return NewAPIError(ErrorTypeCreditsExhausted, MessageCreditsExhausted).
		WithUpstreamStatus(http.StatusPaymentRequired)
}

// ProviderMessages holds the user-facing texts a research provider uses when
// its quota runs out.
type ProviderMessages struct {
	// Name is the display name, e.g. "Firecrawl"
	Name string
	// CreditsDepleted is shown for HTTP 402
	CreditsDepleted string
	// RateLimited is shown for 429 and keyword matches
	RateLimited string
}

// quotaKeywords are matched case-insensitively against provider error text.
// This is a heuristic; providers do not document these tokens.
var quotaKeywords = []string{"credit", "rate", "quota", "limit"}

// IsQuotaMessage reports whether a provider error message looks like a quota
// or rate-limit complaint.
func IsQuotaMessage(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range quotaKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ClassifyResearch maps a non-success status from a research provider to an
// APIError. 402, 429 and quota-looking messages become QuotaExceeded (429);
// anything else is an UpstreamFailure carrying the provider's message.
func ClassifyResearch(status int, providerMessage string, msgs ProviderMessages) *APIError {
	if status == http.StatusPaymentRequired || status == http.StatusTooManyRequests || IsQuotaMessage(providerMessage) {
		text := msgs.RateLimited
		if status == http.StatusPaymentRequired {
			text = msgs.CreditsDepleted
		}
		return NewAPIError(ErrorTypeQuotaExceeded, text).
			WithCode(string(ErrorTypeQuotaExceeded)).
			WithUpstreamStatus(status)
	}

	if providerMessage == "" {
		providerMessage = msgs.Name + " search failed"
	}
	return ErrUpstream(providerMessage).WithUpstreamStatus(status)
}
