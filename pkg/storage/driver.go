// Package storage defines the reply ledger: the record of every mention the
// bot has answered, used to never answer the same status twice.
package storage

import (
	"context"
)

// Driver defines the interface for persisting and retrieving replies in a
// storage backend.
type Driver interface {
	// Put stores a reply. Returns true if the reply was newly inserted, false
	// if a reply to the same status already exists. If it already exists,
	// this is a no-op.
	Put(ctx context.Context, reply *Reply) (bool, error)

	// Get retrieves the reply to the status with the given ID.
	Get(ctx context.Context, statusID string) (*Reply, error)

	// Has checks if the status with the given ID was already answered.
	Has(ctx context.Context, statusID string) (bool, error)

	// List returns all replies, newest first.
	List(ctx context.Context) ([]*Reply, error)

	// Count returns the number of stored replies.
	Count(ctx context.Context) (int, error)

	// Close closes the store and releases any resources.
	Close() error
}
