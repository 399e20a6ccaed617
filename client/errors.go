package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoBaseURL is returned by New when no base URL is configured. The
// client refuses to construct rather than issue requests that can only
// fail later.
var ErrNoBaseURL = errors.New("client: base URL is required")

// ErrRetryExhausted is returned by Retry once the retry limit is reached.
var ErrRetryExhausted = errors.New("client: retry limit reached")

// ErrNothingToRetry is returned by Retry when no failed request has been
// recorded.
var ErrNothingToRetry = errors.New("client: no request to retry")

// Error is the normalized shape every request failure is reduced to,
// whatever its origin: transport failures, non-2xx statuses, or malformed
// response bodies. Status is zero when no HTTP response was received.
type Error struct {
	Message string          `json:"message"`
	Status  int             `json:"status,omitempty"`
	Details json.RawMessage `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("client: %s (status %d)", e.Message, e.Status)
	}
	return "client: " + e.Message
}

// errorFromResponse builds an Error from a non-2xx response body. Server
// bodies that carry a recognizable message field contribute it; anything
// else falls back to the status text.
func errorFromResponse(status int, body []byte) *Error {
	e := &Error{
		Message: http.StatusText(status),
		Status:  status,
	}
	if len(body) == 0 {
		return e
	}

	var payload struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Err     string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		switch {
		case payload.Message != "":
			e.Message = payload.Message
		case payload.Detail != "":
			e.Message = payload.Detail
		case payload.Err != "":
			e.Message = payload.Err
		}
	}
	if json.Valid(body) {
		e.Details = json.RawMessage(body)
	}
	return e
}

// errorFromTransport wraps a transport-level failure.
func errorFromTransport(err error) *Error {
	msg := err.Error()
	// url.Error wraps the verb and URL around the cause; keep the cause.
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}
	return &Error{Message: msg}
}

// isCancellation reports whether the failure was a caller-initiated
// cancellation, which is recorded as neither data nor error.
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}
