// Package worker provides an asynchronous worker pool that posts replies,
// records them in the reply ledger and announces them on the event stream.
//
// The queue is bounded. Once it is full, Submit waits, so a slow instance
// slows consumption of the notification stream instead of losing mentions.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/papercomputeco/replybot/pkg/eventstream"
	"github.com/papercomputeco/replybot/pkg/eventstream/nop"
	"github.com/papercomputeco/replybot/pkg/logger"
	"github.com/papercomputeco/replybot/pkg/mastodon"
	"github.com/papercomputeco/replybot/pkg/reply"
	"github.com/papercomputeco/replybot/pkg/storage"
)

var (
	defaultNumWorkers   uint = 2
	defaultJobQueueSize uint = 64
	defaultJobTimeout        = time.Minute
)

// Poster publishes a status.
type Poster interface {
	Post(ctx context.Context, status *mastodon.StatusRequest) (*mastodon.Status, error)
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Poster sends replies to the instance.
	Poster Poster

	// Driver is the reply ledger.
	Driver storage.Driver

	// Publisher receives an event for each posted reply. Defaults to a no-op
	// publisher.
	Publisher eventstream.Publisher

	// Instance is the instance URL recorded in published events.
	Instance string

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 64).
	QueueSize uint

	// JobTimeout bounds the handling of one job (defaults to one minute).
	JobTimeout time.Duration

	// Logger is the provided slog logger
	Logger *slog.Logger
}

// Stats is a snapshot of the pool's counters.
type Stats struct {
	Posted     uint64 `json:"posted"`
	Failed     uint64 `json:"failed"`
	Duplicates uint64 `json:"duplicates"`
	Dropped    uint64 `json:"dropped"`
}

// Pool processes reply jobs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan *reply.Job
	wg     sync.WaitGroup
	logger *slog.Logger

	// inflight holds the status IDs currently being answered so that two
	// workers never answer the same status at once.
	inflight sync.Map

	closeOnce sync.Once

	posted     atomic.Uint64
	failed     atomic.Uint64
	duplicates atomic.Uint64
	dropped    atomic.Uint64
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Poster == nil {
		return nil, fmt.Errorf("worker pool requires a poster")
	}
	if c.Driver == nil {
		return nil, fmt.Errorf("worker pool requires a storage driver")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.JobTimeout == 0 {
		c.JobTimeout = defaultJobTimeout
	}

	if c.Publisher == nil {
		c.Publisher = nop.NewPublisher()
	}

	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	wp := &Pool{
		config: c,
		queue:  make(chan *reply.Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Submit hands job to the workers, waiting for room in the queue. It returns
// false only if ctx ends first, in which case the job is dropped. Submit must
// not be called after Close.
func (p *Pool) Submit(ctx context.Context, job *reply.Job) bool {
	select {
	case p.queue <- job:
		p.logger.Debug("reply queued",
			"status_id", job.InReplyToID,
			"account", job.Account,
		)
		return true
	case <-ctx.Done():
		p.dropped.Add(1)
		p.logger.Warn("reply not queued, shutting down",
			"status_id", job.InReplyToID,
			"account", job.Account,
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this once the dispatch loop has returned. Close is safe to call more
// than once.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.queue)
	})
	p.wg.Wait()
}

// Stats returns a snapshot of the pool's counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Posted:     p.posted.Load(),
		Failed:     p.failed.Load(),
		Duplicates: p.duplicates.Load(),
		Dropped:    p.dropped.Load(),
	}
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("worker stopped", "worker_id", id)
}

// processJob answers one mention unless the ledger shows it was already
// answered. Failures are logged and counted; they never stop the pool.
func (p *Pool) processJob(job *reply.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.JobTimeout)
	defer cancel()

	key := job.LedgerKey()
	if key != "" {
		if _, busy := p.inflight.LoadOrStore(key, struct{}{}); busy {
			p.duplicates.Add(1)
			p.logger.Debug("reply already in progress", "key", key)
			return
		}
		defer p.inflight.Delete(key)

		answered, err := p.config.Driver.Has(ctx, key)
		if err != nil {
			p.failed.Add(1)
			p.logger.Error("reply ledger lookup failed",
				"key", key,
				"error", err,
			)
			return
		}
		if answered {
			p.duplicates.Add(1)
			p.logger.Info("mention already answered",
				"key", key,
				"account", job.Account,
			)
			return
		}
	}

	posted, err := p.config.Poster.Post(ctx, &mastodon.StatusRequest{
		Status:      job.Text,
		InReplyToID: job.InReplyToID,
		Visibility:  job.Visibility,
	})
	if err != nil {
		p.failed.Add(1)
		p.logger.Error("posting reply failed",
			"status_id", job.InReplyToID,
			"account", job.Account,
			"error", err,
		)
		return
	}

	p.posted.Add(1)
	p.logger.Info("reply posted",
		"status_id", job.InReplyToID,
		"reply_id", posted.ID,
		"account", job.Account,
	)

	p.record(ctx, key, job, posted)
}

// record stores the posted reply under key and publishes its event. Errors
// are logged but not returned since the reply is already public. A reply
// without a key cannot be recorded and is only published.
func (p *Pool) record(ctx context.Context, key string, job *reply.Job, posted *mastodon.Status) {
	if key == "" {
		p.logger.Warn("reply not recorded, mention has no id", "reply_id", posted.ID)
	} else {
		isNew, err := p.config.Driver.Put(ctx, &storage.Reply{
			StatusID:  key,
			ReplyID:   posted.ID,
			Account:   job.Account,
			Text:      job.Text,
			RepliedAt: time.Now().UTC(),
		})
		if err != nil {
			p.logger.Warn("failed to record reply",
				"key", key,
				"error", err,
			)
		} else if !isNew {
			p.logger.Warn("reply recorded twice", "key", key)
		}
	}

	event := eventstream.NewReplyPostedEvent(
		p.config.Instance,
		eventstream.MentionMeta{
			NotificationID: job.NotificationID,
			StatusID:       job.InReplyToID,
			Account:        job.Account,
		},
		eventstream.ReplyDetails{
			StatusID:   posted.ID,
			Text:       job.Text,
			Visibility: job.Visibility,
		},
	)

	if err := p.config.Publisher.PublishReply(ctx, event); err != nil {
		p.logger.Warn("failed to publish reply event",
			"status_id", job.InReplyToID,
			"event_id", event.EventID,
			"error", err,
		)
	}
}
