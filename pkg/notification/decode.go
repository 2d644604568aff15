package notification

import (
	"bytes"
	"encoding/json"
	"time"
)

// envelope is the minimal wire shape used to classify a payload.
type envelope struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	Account   *Account  `json:"account"`
	Status    *Status   `json:"status"`
}

// Decode parses payload and classifies it into a Notification.
// It returns ErrMalformedPayload if payload is not valid JSON; any valid JSON
// value decodes successfully, falling back to *Unknown.
func Decode(payload []byte) (Notification, error) {
	if !json.Valid(payload) {
		return nil, ErrMalformedPayload
	}

	raw := json.RawMessage(bytes.Clone(payload))

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		// Arrays, strings, numbers and null.
		return &Unknown{raw: raw}, nil
	}

	var typ string
	if err := json.Unmarshal(fields["type"], &typ); err != nil || typ == "" {
		return &Unknown{raw: raw}, nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// Known type tag but fields of unexpected shape.
		return &Other{Type: typ, raw: raw}, nil
	}

	if typ == typeMention {
		// A mention whose status is missing is still answered, just not
		// threaded under anything.
		m := &Mention{
			ID:        env.ID,
			CreatedAt: env.CreatedAt,
			raw:       raw,
		}
		if env.Status != nil {
			m.Status = *env.Status
		}
		if env.Account != nil {
			m.Account = *env.Account
		}
		return m, nil
	}

	return &Other{Type: typ, ID: env.ID, raw: raw}, nil
}
