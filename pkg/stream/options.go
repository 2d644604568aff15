package stream

import (
	"log/slog"
	"net/http"

	"github.com/papercomputeco/replybot/pkg/logger"
)

const (
	// DefaultQueueSize is the capacity of the event channel. It absorbs decode
	// bursts while applying backpressure to the pump quickly.
	DefaultQueueSize = 64

	// DefaultMaxReadErrors is the number of consecutive failed body reads after
	// which the pump stops.
	DefaultMaxReadErrors = 8

	// DefaultMaxBufferSize caps the retained partial frame at 1 MiB.
	DefaultMaxBufferSize = 1024 * 1024

	defaultChunkSize = 4 * 1024
)

// Option configures a Stream.
type Option func(*options)

type options struct {
	queueSize     int
	maxReadErrors int
	maxBufferSize int
	chunkSize     int
	httpClient    *http.Client
	logger        *slog.Logger
}

func newOptions(opts []Option) *options {
	o := &options{
		queueSize:     DefaultQueueSize,
		maxReadErrors: DefaultMaxReadErrors,
		maxBufferSize: DefaultMaxBufferSize,
		chunkSize:     defaultChunkSize,
		httpClient:    http.DefaultClient,
		logger:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithQueueSize sets the event channel capacity. Values below 1 are ignored.
func WithQueueSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.queueSize = n
		}
	}
}

// WithMaxReadErrors sets how many consecutive body read failures are skipped
// before the pump stops with ErrTooManyReadErrors. Zero skips failures
// forever.
func WithMaxReadErrors(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxReadErrors = n
		}
	}
}

// WithMaxBufferSize caps the size of a partial frame in bytes. Zero removes
// the cap.
func WithMaxBufferSize(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxBufferSize = n
		}
	}
}

// WithChunkSize sets the size of the buffer used for each body read.
func WithChunkSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

// WithHTTPClient overrides the client used by Open. The client must not set
// a Timeout, since the response body is read for as long as the stream lives.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithLogger sets the logger used for skipped chunks and dropped frames.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
