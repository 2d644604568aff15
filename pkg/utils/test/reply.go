package testutils

import (
	"time"

	"github.com/papercomputeco/replybot/pkg/storage"
)

// NewTestReply creates a reply to statusID answered at the given time.
func NewTestReply(statusID string, repliedAt time.Time) *storage.Reply {
	return &storage.Reply{
		StatusID:  statusID,
		ReplyID:   "reply-" + statusID,
		Account:   "alice@example.org",
		Text:      "@alice@example.org hello",
		RepliedAt: repliedAt.UTC().Truncate(time.Millisecond),
	}
}
