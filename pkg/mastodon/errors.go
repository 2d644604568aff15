package mastodon

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInstance indicates the instance URL could not be parsed or has
	// no scheme and host.
	ErrInvalidInstance = errors.New("invalid instance url")

	// ErrMissingToken indicates the client was built without an access token.
	ErrMissingToken = errors.New("missing access token")
)

// APIError is a non-2xx answer from the REST API.
type APIError struct {
	StatusCode int

	// Message is the "error" field of the response body, or the raw body
	// when it is not the usual JSON error document.
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("mastodon api status %d", e.StatusCode)
	}
	return fmt.Sprintf("mastodon api status %d: %s", e.StatusCode, e.Message)
}
