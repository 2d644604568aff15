package mastodon

import "time"

// Visibility values accepted by the statuses endpoint.
const (
	VisibilityPublic   = "public"
	VisibilityUnlisted = "unlisted"
	VisibilityPrivate  = "private"
	VisibilityDirect   = "direct"
)

// ValidVisibility reports whether v is a visibility the server accepts.
func ValidVisibility(v string) bool {
	switch v {
	case VisibilityPublic, VisibilityUnlisted, VisibilityPrivate, VisibilityDirect:
		return true
	default:
		return false
	}
}

// StatusRequest is the body of POST /api/v1/statuses.
type StatusRequest struct {
	Status      string `json:"status"`
	InReplyToID string `json:"in_reply_to_id,omitempty"`
	Visibility  string `json:"visibility,omitempty"`
}

// Status is the subset of a created status the bot cares about.
type Status struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
	InReplyToID string    `json:"in_reply_to_id"`
	Visibility  string    `json:"visibility"`
	Content     string    `json:"content"`
}

// apiErrorBody is the error document returned by the REST API.
type apiErrorBody struct {
	Error string `json:"error"`
}
