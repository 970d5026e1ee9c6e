package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrRequestFailed matches every error returned for a failed round trip.
var ErrRequestFailed = errors.New("api: request failed")

const maxDetailBytes = 4096

// Error describes a failed request. Op is the generic description shown to users
// ("fetch tasks", "create task", ...); StatusCode is 0 when no response was received.
type Error struct {
	Op         string
	StatusCode int
	Detail     string
	Err        error
}

func (e *Error) Error() string {
	msg := "failed to " + e.Op

	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %s", msg, e.Err)
	case e.StatusCode != 0 && e.Detail != "":
		return fmt.Sprintf("%s: status %d: %s", msg, e.StatusCode, e.Detail)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	default:
		return msg
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == ErrRequestFailed
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}

	return 0
}

// readDetail extracts the "detail" field of an error body. Validation errors carry a
// list instead of a string; those are returned as raw JSON.
func readDetail(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxDetailBytes))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}

	if err := json.Unmarshal(raw, &payload); err != nil || len(payload.Detail) == 0 {
		return strings.TrimSpace(string(raw))
	}

	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err == nil {
		return detail
	}

	return string(payload.Detail)
}
