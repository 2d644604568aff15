package notification

import "errors"

// ErrMalformedPayload indicates the payload is not valid JSON.
var ErrMalformedPayload = errors.New("malformed notification payload")
