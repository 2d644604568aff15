package reply

import (
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/papercomputeco/replybot/pkg/mastodon"
	"github.com/papercomputeco/replybot/pkg/notification"
)

const (
	// NoResponsesText is sent when no responses are configured.
	NoResponsesText = "No Responses Set"

	// UnknownAccount is used when a mention carries no acct.
	UnknownAccount = "unknown"
)

// ResponderConfig configures a Responder.
type ResponderConfig struct {
	// Responses are the canned answers picked from at random.
	Responses []string

	// Visibility of posted replies. Defaults to public.
	Visibility string

	// SkipBots ignores mentions from accounts flagged as bots.
	SkipBots bool

	// Pick returns a random index in [0, n). Defaults to rand.IntN.
	Pick func(n int) int
}

// Responder turns mentions into reply jobs. Its responses can be replaced
// while it is in use.
type Responder struct {
	mu        sync.RWMutex
	responses []string

	visibility string
	skipBots   bool
	pick       func(n int) int
}

// NewResponder returns a Responder for cfg.
func NewResponder(cfg ResponderConfig) *Responder {
	r := &Responder{
		responses:  slices.Clone(cfg.Responses),
		visibility: cfg.Visibility,
		skipBots:   cfg.SkipBots,
		pick:       cfg.Pick,
	}
	if r.visibility == "" {
		r.visibility = mastodon.VisibilityPublic
	}
	if r.pick == nil {
		r.pick = rand.IntN
	}
	return r
}

// SetResponses atomically replaces the canned responses.
func (r *Responder) SetResponses(responses []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses = slices.Clone(responses)
}

// Responses returns a copy of the current responses.
func (r *Responder) Responses() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.responses)
}

// Decide returns the reply job for n, or false when n needs no answer: it is
// not a mention, or it comes from a bot account and bots are skipped.
func (r *Responder) Decide(n notification.Notification) (*Job, bool) {
	m, ok := n.(*notification.Mention)
	if !ok {
		return nil, false
	}

	if r.skipBots && m.Account.Bot {
		return nil, false
	}

	acct := m.Account.Acct
	if acct == "" {
		acct = UnknownAccount
	}

	return &Job{
		NotificationID: m.ID,
		InReplyToID:    m.Status.ID,
		Account:        acct,
		Text:           "@" + acct + " " + r.choose(),
		Visibility:     r.visibility,
		ReceivedAt:     time.Now().UTC(),
	}, true
}

func (r *Responder) choose() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.responses) == 0 {
		return NoResponsesText
	}
	return r.responses[r.pick(len(r.responses))]
}
