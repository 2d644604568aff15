// Package bot wires the notification stream, the dispatch loop, the reply
// worker pool and the optional status API into one running reply bot.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/papercomputeco/replybot/api"
	"github.com/papercomputeco/replybot/bot/worker"
	"github.com/papercomputeco/replybot/pkg/eventstream"
	"github.com/papercomputeco/replybot/pkg/logger"
	"github.com/papercomputeco/replybot/pkg/mastodon"
	"github.com/papercomputeco/replybot/pkg/reply"
	"github.com/papercomputeco/replybot/pkg/storage"
	"github.com/papercomputeco/replybot/pkg/stream"
)

// ErrAlreadyRunning is returned when Run is called more than once.
var ErrAlreadyRunning = errors.New("bot is already running")

// Bot answers every mention arriving on an instance's notification stream.
type Bot struct {
	config     Config
	client     *mastodon.Client
	responder  *reply.Responder
	dispatcher *reply.Dispatcher
	workerPool *worker.Pool
	driver     storage.Driver
	apiServer  *api.Server
	logger     *slog.Logger

	started   atomic.Bool
	startedAt atomic.Pointer[time.Time]
	stream    atomic.Pointer[stream.Stream]
}

// New creates a new Bot.
// The driver and publisher are injected and owned by the caller, which
// closes them after Run returns.
func New(config Config, driver storage.Driver, publisher eventstream.Publisher, l *slog.Logger) (*Bot, error) {
	if driver == nil {
		return nil, errors.New("bot requires a storage driver")
	}
	if l == nil {
		l = logger.Nop()
	}

	opts := []mastodon.Option{mastodon.WithLogger(l)}
	if config.HTTPClient != nil {
		opts = append(opts, mastodon.WithHTTPClient(config.HTTPClient))
	}
	if config.StreamHTTPClient != nil {
		opts = append(opts, mastodon.WithStreamHTTPClient(config.StreamHTTPClient))
	}

	client, err := mastodon.NewClient(config.InstanceURL, config.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create mastodon client: %w", err)
	}

	responder := reply.NewResponder(reply.ResponderConfig{
		Responses:  config.Responses,
		Visibility: config.Visibility,
		SkipBots:   config.SkipBots,
	})

	b := &Bot{
		config:    config,
		client:    client,
		responder: responder,
		driver:    driver,
		logger:    l,
	}

	b.workerPool, err = worker.NewPool(&worker.Config{
		Poster:     client,
		Driver:     driver,
		Publisher:  publisher,
		Instance:   client.Instance(),
		NumWorkers: config.Workers,
		Logger:     l,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create worker pool: %w", err)
	}

	b.dispatcher = reply.NewDispatcher(responder, b.workerPool, l)

	if config.APIListen != "" {
		b.apiServer = api.NewServer(api.Config{ListenAddr: config.APIListen}, driver, b, l)
	}

	return b, nil
}

// Run watches the notification stream and answers mentions until the
// stream ends or ctx is done. Queued replies are posted before it returns.
//
// It returns nil when ctx was cancelled or the server closed the stream,
// and the stream's fatal error otherwise. A rejected connection is
// returned wrapping a *stream.StatusError.
func (b *Bot) Run(ctx context.Context) error {
	if !b.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer b.workerPool.Close()

	now := time.Now().UTC()
	b.startedAt.Store(&now)

	s, err := b.client.Watch(ctx, b.streamOptions()...)
	if err != nil {
		return fmt.Errorf("could not watch notifications: %w", err)
	}
	defer s.Close()
	b.stream.Store(s)

	if b.apiServer != nil {
		ln, err := net.Listen("tcp", b.config.APIListen)
		if err != nil {
			return fmt.Errorf("could not listen for API server: %w", err)
		}

		go func() {
			if err := b.apiServer.Serve(ln); err != nil {
				b.logger.Error("API server stopped", "error", err)
			}
		}()
		defer func() {
			if err := b.apiServer.Shutdown(); err != nil {
				b.logger.Warn("API server shutdown failed", "error", err)
			}
		}()
	}

	b.logger.Info("watching notifications",
		"instance", b.client.Instance(),
		"workers", b.config.Workers,
	)

	queued := b.dispatcher.Run(ctx, s.Events())

	err = s.Close()
	b.logger.Info("notification stream ended",
		"queued", queued,
		"stats", s.Stats(),
	)
	if err != nil {
		return fmt.Errorf("notification stream failed: %w", err)
	}

	return nil
}

// SetResponses replaces the canned answers while the bot runs.
func (b *Bot) SetResponses(responses []string) {
	b.responder.SetResponses(responses)
	b.logger.Info("responses updated", "count", len(responses))
}

// Stats returns a snapshot of every pipeline stage's counters.
func (b *Bot) Stats() api.Stats {
	stats := api.Stats{
		Instance: b.client.Instance(),
		Dispatch: b.dispatcher.Stats(),
		Workers:  b.workerPool.Stats(),
	}
	if t := b.startedAt.Load(); t != nil {
		stats.StartedAt = *t
	}
	if s := b.stream.Load(); s != nil {
		stats.Stream = s.Stats()
	}
	return stats
}

func (b *Bot) streamOptions() []stream.Option {
	opts := []stream.Option{
		stream.WithMaxReadErrors(b.config.MaxReadErrors),
		stream.WithMaxBufferSize(b.config.MaxBufferBytes),
		stream.WithLogger(b.logger),
	}
	if b.config.QueueSize > 0 {
		opts = append(opts, stream.WithQueueSize(b.config.QueueSize))
	}
	return opts
}
