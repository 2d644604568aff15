// Package notification decodes streamed notification payloads into a small
// tagged variant. Payloads are classified once, at decode time, so consumers
// switch on the concrete type instead of probing a schema-free map.
package notification

import (
	"encoding/json"
	"time"
)

// Kind identifies the variant of a Notification.
type Kind string

const (
	// KindMention is a notification about a status that mentions the account.
	KindMention Kind = "mention"

	// KindOther is any other well-formed notification (favourite, follow, ...).
	KindOther Kind = "other"

	// KindUnknown is a JSON payload that does not look like a notification.
	KindUnknown Kind = "unknown"
)

// typeMention is the wire value of the "type" field for mentions.
const typeMention = "mention"

// Notification is one decoded application-level event. The concrete type is
// one of *Mention, *Other or *Unknown.
type Notification interface {
	// Kind returns the variant tag.
	Kind() Kind

	// Raw returns the JSON payload the notification was decoded from.
	Raw() json.RawMessage
}

// Account is the author of the status behind a notification.
type Account struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Acct     string `json:"acct"`
	Bot      bool   `json:"bot"`
}

// Status is the status a mention notification refers to.
type Status struct {
	ID         string `json:"id"`
	URL        string `json:"url,omitempty"`
	Visibility string `json:"visibility"`
	Content    string `json:"content"`
}

// Mention is a notification about a status mentioning the watched account.
type Mention struct {
	ID        string
	CreatedAt time.Time
	Account   Account
	Status    Status

	raw json.RawMessage
}

// Kind implements Notification.
func (m *Mention) Kind() Kind { return KindMention }

// Raw implements Notification.
func (m *Mention) Raw() json.RawMessage { return m.raw }

// Other is a well-formed notification of a type this package does not model.
type Other struct {
	// Type is the notification type as sent by the server, e.g. "favourite".
	Type string
	ID   string

	raw json.RawMessage
}

// Kind implements Notification.
func (o *Other) Kind() Kind { return KindOther }

// Raw implements Notification.
func (o *Other) Raw() json.RawMessage { return o.raw }

// Unknown holds a valid JSON payload with no recognizable notification shape.
type Unknown struct {
	raw json.RawMessage
}

// Kind implements Notification.
func (u *Unknown) Kind() Kind { return KindUnknown }

// Raw implements Notification.
func (u *Unknown) Raw() json.RawMessage { return u.raw }
