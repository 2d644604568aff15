package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/replybot/pkg/eventstream"
)

// MockPublisher records published reply events.
type MockPublisher struct {
	mu     sync.Mutex
	events []*eventstream.ReplyPostedEvent

	// Err is returned by PublishReply when set.
	Err error
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishReply(_ context.Context, event *eventstream.ReplyPostedEvent) error {
	if event == nil {
		return eventstream.ErrNilReplyEvent
	}
	if m.Err != nil {
		return m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

// Events returns a copy of every event published so far.
func (m *MockPublisher) Events() []*eventstream.ReplyPostedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*eventstream.ReplyPostedEvent, len(m.events))
	copy(out, m.events)
	return out
}

func (m *MockPublisher) Close() error {
	return nil
}
