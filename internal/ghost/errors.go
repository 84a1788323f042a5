package ghost

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-200 response from the Content API.
type APIError struct {
	Resource   string
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Type != "" {
		return fmt.Sprintf("ghost: %s: %d %s: %s", e.Resource, e.StatusCode, e.Type, msg)
	}
	return fmt.Sprintf("ghost: %s: %d: %s", e.Resource, e.StatusCode, msg)
}

func newAPIError(resource string, status int, body []byte) *APIError {
	apiErr := &APIError{Resource: resource, StatusCode: status}

	var payload struct {
		Errors []struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"errors"`
	}
	if json.Unmarshal(body, &payload) == nil && len(payload.Errors) > 0 {
		apiErr.Message = payload.Errors[0].Message
		apiErr.Type = payload.Errors[0].Type
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(body))
	if len(apiErr.Message) > 200 {
		apiErr.Message = apiErr.Message[:200]
	}
	return apiErr
}
