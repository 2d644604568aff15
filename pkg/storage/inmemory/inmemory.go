// Package inmemory provides a map-backed reply ledger. Its contents are lost
// when the process exits.
package inmemory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/papercomputeco/replybot/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	// mu is a read write sync mutex for locking the mapping of replies
	mu sync.RWMutex

	// replies is keyed by the ID of the answered status
	replies map[string]*storage.Reply
}

// NewDriver creates a new in-memory ledger.
func NewDriver() *Driver {
	return &Driver{
		replies: make(map[string]*storage.Reply),
	}
}

// Put stores a reply. Returns true if the reply was newly inserted, false if
// the status was already answered.
func (s *Driver) Put(_ context.Context, reply *storage.Reply) (bool, error) {
	if err := reply.Validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.replies[reply.StatusID]; ok {
		return false, nil
	}

	stored := *reply
	s.replies[reply.StatusID] = &stored
	return true, nil
}

// Get retrieves the reply to a status.
func (s *Driver) Get(_ context.Context, statusID string) (*storage.Reply, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reply, ok := s.replies[statusID]
	if !ok {
		return nil, storage.NotFoundError{StatusID: statusID}
	}

	out := *reply
	return &out, nil
}

// Has checks if a status was answered.
func (s *Driver) Has(_ context.Context, statusID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.replies[statusID]
	return ok, nil
}

// List returns all replies, newest first.
func (s *Driver) List(_ context.Context) ([]*storage.Reply, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	replies := make([]*storage.Reply, 0, len(s.replies))
	for _, reply := range s.replies {
		out := *reply
		replies = append(replies, &out)
	}

	slices.SortFunc(replies, func(a, b *storage.Reply) int {
		if c := b.RepliedAt.Compare(a.RepliedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.StatusID, a.StatusID)
	})

	return replies, nil
}

// Count returns the number of stored replies.
func (s *Driver) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.replies), nil
}

// Close is a no-op for the in-memory ledger.
func (s *Driver) Close() error {
	return nil
}
