package storage

import "errors"

// ErrNilReply is returned by Put when given a nil reply or one without a
// status ID.
var ErrNilReply = errors.New("cannot store reply without status id")

// NotFoundError is returned when no reply exists for a status.
type NotFoundError struct {
	StatusID string
}

func (e NotFoundError) Error() string {
	if e.StatusID == "" {
		return "reply not found"
	}

	return "reply not found for status: " + e.StatusID
}
