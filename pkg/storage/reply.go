package storage

import "time"

// Reply records one answered mention.
type Reply struct {
	// StatusID is the ID of the mentioning status, or "notification:<id>" when
	// the mention carried no status. It is the ledger key.
	StatusID string `json:"status_id"`

	// ReplyID is the ID of the status the bot posted in answer.
	ReplyID string `json:"reply_id"`

	// Account is the acct of the mention's author.
	Account string `json:"account"`

	// Text is the posted reply text.
	Text string `json:"text"`

	RepliedAt time.Time `json:"replied_at"`
}

// Validate reports whether r can be stored.
func (r *Reply) Validate() error {
	if r == nil || r.StatusID == "" {
		return ErrNilReply
	}
	return nil
}
