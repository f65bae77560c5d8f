package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidPayload marks a response whose HTTP status was success but whose
// body does not match the expected structure.
var ErrInvalidPayload = errors.New("response payload is invalid")

// APIError is a non-success HTTP response with a human-readable message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// parseErrorMessage extracts a display message from an error response body:
// the JSON "error" field, else the first string-valued entry under "details",
// else a generic message naming the status.
func parseErrorMessage(status int, body []byte) string {
	var parsed struct {
		Error   string                     `json:"error"`
		Details map[string]json.RawMessage `json:"details"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Error != "" {
			return parsed.Error
		}
		if msg, ok := firstStringDetail(parsed.Details); ok {
			return msg
		}
	}
	return fmt.Sprintf("request failed with status %d", status)
}

// firstStringDetail picks a deterministic first string value out of the
// details map (JSON object order is not preserved by encoding/json).
func firstStringDetail(details map[string]json.RawMessage) (string, bool) {
	keys := make([]string, 0, len(details))
	for key := range details {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		var value string
		if err := json.Unmarshal(details[key], &value); err == nil && value != "" {
			return value, true
		}
	}
	return "", false
}
