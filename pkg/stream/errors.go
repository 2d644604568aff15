package stream

import (
	"errors"
	"fmt"
)

var (
	// ErrConnect indicates the streaming request could not be sent.
	ErrConnect = errors.New("stream connect failed")

	// ErrTooManyReadErrors indicates the pump gave up after too many
	// consecutive failed reads from the response body.
	ErrTooManyReadErrors = errors.New("too many consecutive stream read errors")
)

// StatusError is returned by Open when the server answers the streaming
// request with a non-2xx status.
type StatusError struct {
	Code int

	// Body holds the beginning of the response body, if any.
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("stream rejected with status %d", e.Code)
	}
	return fmt.Sprintf("stream rejected with status %d: %s", e.Code, e.Body)
}
