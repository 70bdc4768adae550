// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Error variables for common completion API errors.
var (
	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("API key not configured")

	// ErrAuthFailed indicates authentication failed (invalid or expired API key).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrModelNotFound indicates the requested model does not exist.
	ErrModelNotFound = errors.New("model not found")

	// ErrServerError indicates a 5xx response.
	ErrServerError = errors.New("server error")

	// ErrRequestFailed is any other non-success response.
	ErrRequestFailed = errors.New("request failed")

	// ErrTransport indicates the request never produced a response.
	ErrTransport = errors.New("transport error")

	// ErrMalformed indicates a success status with a body that could not be decoded.
	ErrMalformed = errors.New("malformed response")

	// ErrEmptyResponse indicates a response without any choices.
	ErrEmptyResponse = errors.New("response contained no choices")
)

// APIError is a non-success response from the completion service.
type APIError struct {
	Status  int
	Code    string
	Message string

	// kind is one of the sentinel errors above, used by errors.Is.
	kind error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%v [%s] (HTTP %d): %s", e.kind, e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("%v (HTTP %d): %s", e.kind, e.Status, e.Message)
}

// Unwrap returns the sentinel matching the status code.
func (e *APIError) Unwrap() error {
	return e.kind
}

// handleErrorResponse converts an HTTP error response into an *APIError.
// The body is parsed as an OpenAI error envelope when possible and used
// verbatim otherwise.
func handleErrorResponse(statusCode int, body []byte) error {
	apiErr := &APIError{
		Status: statusCode,
		kind:   kindForStatus(statusCode),
	}

	var envelope openai.ErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil && envelope.Error.Message != "" {
		apiErr.Message = envelope.Error.Message
		apiErr.Code = codeString(envelope.Error.Code)
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(body))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(statusCode)
	}
	return apiErr
}

func kindForStatus(statusCode int) error {
	switch {
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		return ErrAuthFailed
	case statusCode == http.StatusNotFound:
		return ErrModelNotFound
	case statusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case statusCode >= 500:
		return ErrServerError
	default:
		return ErrRequestFailed
	}
}

// codeString normalizes the error code, which services send either as a
// string or a number.
func codeString(code any) string {
	if code == nil {
		return ""
	}
	return fmt.Sprint(code)
}

// isRetryable determines if an error should trigger a retry.
func isRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrServerError) ||
		errors.Is(err, ErrTransport)
}
