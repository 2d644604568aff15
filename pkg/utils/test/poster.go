package testutils

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/papercomputeco/replybot/pkg/mastodon"
)

// ErrMockPost is returned by MockPoster when FailOn matches.
var ErrMockPost = errors.New("mock post failure")

// MockPoster records posted statuses and hands out sequential IDs.
type MockPoster struct {
	mu     sync.Mutex
	posted []*mastodon.StatusRequest

	// FailOn causes Post to fail for replies to this status ID.
	FailOn string

	// Delay makes each Post take this long, like a slow instance.
	Delay time.Duration
}

func NewMockPoster() *MockPoster {
	return &MockPoster{}
}

func (m *MockPoster) Post(ctx context.Context, status *mastodon.StatusRequest) (*mastodon.Status, error) {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailOn != "" && status.InReplyToID == m.FailOn {
		return nil, ErrMockPost
	}

	m.posted = append(m.posted, status)
	return &mastodon.Status{
		ID:          "posted-" + strconv.Itoa(len(m.posted)),
		InReplyToID: status.InReplyToID,
		Visibility:  status.Visibility,
		Content:     status.Status,
	}, nil
}

// Posted returns a copy of every status posted so far.
func (m *MockPoster) Posted() []*mastodon.StatusRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*mastodon.StatusRequest, len(m.posted))
	copy(out, m.posted)
	return out
}
