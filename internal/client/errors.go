// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrCircuitOpen is returned while the circuit breaker rejects calls.
	ErrCircuitOpen = errors.New("backend temporarily unavailable")

	// ErrNoUser is returned by endpoints that need a configured user id.
	ErrNoUser = errors.New("user id is required for this operation")

	// ErrUnknownRequest is returned by Generate for a nil request.
	ErrUnknownRequest = errors.New("unknown generation request")
)

// BackendError is a non-success response: either a non-2xx status or an
// envelope with success=false.
type BackendError struct {
	Endpoint string
	Status   int
	// Message is the backend's error string, verbatim. Empty when the
	// response carried none.
	Message string
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (status %d)", e.Endpoint, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: request failed with status %d", e.Endpoint, e.Status)
}

// Temporary reports whether retrying later may succeed. Client errors (4xx
// other than 429) are final.
func (e *BackendError) Temporary() bool {
	return e.Status == 0 || e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

// UserMessage returns the backend-provided message carried by err, if any.
func UserMessage(err error) (string, bool) {
	var be *BackendError
	if errors.As(err, &be) && be.Message != "" {
		return be.Message, true
	}
	return "", false
}
