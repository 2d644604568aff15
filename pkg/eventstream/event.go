// Package eventstream defines the events the bot emits after it answers a
// mention, and the publishers that carry them.
package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeReplyPosted is emitted after a reply has been posted and
	// recorded in the ledger.
	EventTypeReplyPosted = "replybot.reply.posted"
)

// ReplyPostedEvent is a transport-neutral event payload for a posted reply.
type ReplyPostedEvent struct {
	SchemaVersion int          `json:"schema_version"`
	EventType     string       `json:"event_type"`
	EventID       string       `json:"event_id"`
	EmittedAt     time.Time    `json:"emitted_at"`
	Instance      string       `json:"instance"`
	Mention       MentionMeta  `json:"mention"`
	Reply         ReplyDetails `json:"reply"`
}

// MentionMeta identifies the mention that was answered.
type MentionMeta struct {
	NotificationID string `json:"notification_id,omitempty"`
	StatusID       string `json:"status_id"`
	Account        string `json:"account"`
}

// ReplyDetails describes the status the bot posted.
type ReplyDetails struct {
	StatusID   string `json:"status_id"`
	Text       string `json:"text"`
	Visibility string `json:"visibility"`
}

// NewReplyPostedEvent stamps a new event with a random ID and the current
// time.
func NewReplyPostedEvent(instance string, mention MentionMeta, reply ReplyDetails) *ReplyPostedEvent {
	return &ReplyPostedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeReplyPosted,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Instance:      instance,
		Mention:       mention,
		Reply:         reply,
	}
}
