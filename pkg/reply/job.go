// Package reply decides how to answer notifications and runs the dispatch
// loop that feeds reply jobs to the posting workers.
package reply

import "time"

// notificationKeyPrefix marks ledger keys derived from a notification ID.
const notificationKeyPrefix = "notification:"

// Job is one reply to post.
type Job struct {
	// NotificationID is the ID of the mention notification.
	NotificationID string

	// InReplyToID is the ID of the mentioning status. Empty when the
	// notification carried no status; the reply is then posted unthreaded.
	InReplyToID string

	// Account is the acct of the mention's author, without the leading "@".
	Account string

	// Text is the full reply, including the leading mention.
	Text string

	Visibility string

	ReceivedAt time.Time
}

// LedgerKey identifies the mention in the reply ledger: the status ID, or the
// notification ID when there is no status. Empty if both are missing.
func (j *Job) LedgerKey() string {
	switch {
	case j.InReplyToID != "":
		return j.InReplyToID
	case j.NotificationID != "":
		return notificationKeyPrefix + j.NotificationID
	default:
		return ""
	}
}
