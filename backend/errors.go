package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnsuccessful marks a 2xx reply whose envelope carried success=false.
var ErrUnsuccessful = errors.New("backend reported an unsuccessful result")

// APIError is a failed backend call. Message is the server supplied text, if any.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// Unwrap lets errors.Is(err, ErrUnsuccessful) match envelope failures.
func (e *APIError) Unwrap() error {
	if e.Status >= 200 && e.Status <= 299 {
		return ErrUnsuccessful
	}
	return nil
}

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		msg = payload.Message
		if msg == "" {
			msg = payload.Error
		}
	}
	return &APIError{Status: status, Message: strings.TrimSpace(msg)}
}

// UserMessage returns the server's message carried by err, or fallback when
// the failure did not come with one.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// StatusCode returns the backend status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
