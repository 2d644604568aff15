// Package mastodon is a small client for the parts of the Mastodon API the
// bot needs: the user notification stream and status creation.
package mastodon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/papercomputeco/replybot/pkg/logger"
	"github.com/papercomputeco/replybot/pkg/stream"
	"github.com/papercomputeco/replybot/pkg/utils"
)

const (
	// StreamingPath is the server-sent events endpoint for the authenticated
	// user's notifications.
	StreamingPath = "/api/v1/streaming/user/notification"

	// StatusesPath is the endpoint used to publish a status.
	StatusesPath = "/api/v1/statuses"

	defaultPostTimeout = 30 * time.Second
	maxErrorBody       = 4 * 1024
)

// Client talks to a single Mastodon instance on behalf of one account.
type Client struct {
	instance *url.URL
	token    string

	// streamClient has no timeout since the streaming body stays open.
	streamClient *http.Client
	postClient   *http.Client

	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the client used for REST calls.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.postClient = c
		}
	}
}

// WithStreamHTTPClient sets the client used for the notification stream. It
// must not set a Timeout.
func WithStreamHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.streamClient = c
		}
	}
}

// WithLogger sets the client's logger.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// NewClient returns a Client for the instance at instanceURL, for example
// "https://mastodon.social", authenticated with token.
func NewClient(instanceURL, token string, opts ...Option) (*Client, error) {
	u, err := ParseInstance(instanceURL)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrMissingToken
	}

	c := &Client{
		instance:     u,
		token:        token,
		streamClient: &http.Client{},
		postClient:   &http.Client{Timeout: defaultPostTimeout},
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// ParseInstance validates an instance URL and strips any trailing slash.
func ParseInstance(instanceURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(instanceURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInstance, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidInstance, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidInstance)
	}
	return u, nil
}

// Instance returns the instance base URL.
func (c *Client) Instance() string {
	return c.instance.String()
}

// Host returns the instance host name, used to key stored credentials.
func (c *Client) Host() string {
	return c.instance.Host
}

// Watch opens the user notification stream. Connection failures and non-2xx
// answers are returned here; afterwards the caller owns the *stream.Stream and
// must Close it.
func (c *Client) Watch(ctx context.Context, opts ...stream.Option) (*stream.Stream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(StreamingPath), nil)
	if err != nil {
		return nil, fmt.Errorf("create stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	c.authorize(req)

	c.logger.Info("opening notification stream", "instance", c.Instance())

	opts = append([]stream.Option{
		stream.WithHTTPClient(c.streamClient),
		stream.WithLogger(c.logger),
	}, opts...)

	s, err := stream.Open(ctx, req, opts...)
	if err != nil {
		return nil, fmt.Errorf("watch notifications: %w", err)
	}
	return s, nil
}

// Post publishes a status and returns it as created by the server.
func (c *Client) Post(ctx context.Context, status *StatusRequest) (*Status, error) {
	payload, err := json.Marshal(status)
	if err != nil {
		return nil, fmt.Errorf("marshal status: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(StatusesPath), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create status request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	resp, err := c.postClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send status request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp)
	}

	var created Status
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("decode created status: %w", err)
	}

	c.logger.Debug("status posted",
		"id", created.ID,
		"in_reply_to_id", status.InReplyToID,
		"visibility", created.Visibility,
	)

	return &created, nil
}

func (c *Client) endpoint(path string) string {
	return c.instance.String() + path
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", utils.UserAgent())
}

func newAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	apiErr := &APIError{StatusCode: resp.StatusCode}

	var doc apiErrorBody
	if err := json.Unmarshal(body, &doc); err == nil && doc.Error != "" {
		apiErr.Message = doc.Error
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}
