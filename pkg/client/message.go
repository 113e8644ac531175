package client

import (
	"bytes"
	"encoding/json"
	"errors"
)

const FallbackMessage string = "An unexpected error occurred"

// Message extracts the most helpful human readable text from err. It prefers
// the message field of a JSON error body, then the raw body, then the error
// text itself, and finally FallbackMessage.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if msg := BodyText(httpErr.Body); msg != "" {
			return msg
		}
	}

	if msg := err.Error(); msg != "" {
		return msg
	}

	return FallbackMessage
}

// BodyText reads a message-only payload. The body may be a JSON object with
// a message field, a JSON string or plain text.
func BodyText(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}

	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
		return payload.Message
	}

	var str string
	if json.Unmarshal(body, &str) == nil && str != "" {
		return str
	}

	return string(body)
}
