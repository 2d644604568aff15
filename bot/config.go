package bot

import (
	"net/http"

	"github.com/papercomputeco/replybot/pkg/config"
)

// Config is the bot configuration.
type Config struct {
	// InstanceURL is the Mastodon instance to watch (e.g., "https://mastodon.social")
	InstanceURL string

	// Token is the access token of the bot account.
	Token string

	// Responses are the canned answers picked from at random.
	Responses []string

	// Visibility of posted replies. Defaults to public.
	Visibility string

	// SkipBots ignores mentions from accounts flagged as bots.
	SkipBots bool

	// Workers is the number of concurrent posters.
	Workers uint

	// QueueSize is the event channel capacity. Zero uses the stream default.
	QueueSize int

	// MaxBufferBytes caps a partial frame. Zero removes the cap.
	MaxBufferBytes int

	// MaxReadErrors is the number of consecutive failed reads tolerated.
	// Zero never gives up.
	MaxReadErrors int

	// APIListen is the status API address. Empty disables the API server.
	APIListen string

	// HTTPClient overrides the client used to post replies.
	HTTPClient *http.Client

	// StreamHTTPClient overrides the client used for the notification stream.
	StreamHTTPClient *http.Client
}

// ConfigFrom builds a bot Config from the persisted configuration.
func ConfigFrom(cfg *config.Config, token string) Config {
	return Config{
		InstanceURL:    cfg.Instance.URL,
		Token:          token,
		Responses:      cfg.Reply.Responses,
		Visibility:     cfg.Reply.Visibility,
		SkipBots:       cfg.Reply.SkipBots,
		Workers:        cfg.Reply.Workers,
		QueueSize:      cfg.Stream.QueueSize,
		MaxBufferBytes: cfg.Stream.MaxBufferBytes,
		MaxReadErrors:  cfg.Stream.MaxReadErrors,
		APIListen:      cfg.API.Listen,
	}
}
