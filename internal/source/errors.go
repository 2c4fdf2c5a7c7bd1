package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound means the catalog has no data for the request.
var ErrNotFound = errors.New("not found")

// TransportError is a failed exchange with an upstream catalog.
type TransportError struct {
	// Endpoint is a short label such as "phishnet.setlist".
	Endpoint string
	// StatusCode is zero when no response was received.
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d: %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Temporary reports whether retrying the request may succeed.
func (e *TransportError) Temporary() bool {
	if errors.Is(e.Err, context.Canceled) || errors.Is(e.Err, context.DeadlineExceeded) {
		return false
	}
	switch {
	case e.StatusCode == 0:
		return true
	case e.StatusCode == http.StatusTooManyRequests:
		return true
	case e.StatusCode >= 500:
		return true
	}
	return false
}

func isTemporary(err error) bool {
	var terr *TransportError
	return errors.As(err, &terr) && terr.Temporary()
}
