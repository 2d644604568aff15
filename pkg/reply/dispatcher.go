package reply

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/papercomputeco/replybot/pkg/logger"
	"github.com/papercomputeco/replybot/pkg/notification"
)

// Submitter accepts reply jobs, waiting while it is full. It returns false
// only when ctx ended before the job was accepted.
type Submitter interface {
	Submit(ctx context.Context, job *Job) bool
}

// DispatchStats is a snapshot of the dispatcher's counters.
type DispatchStats struct {
	Received uint64 `json:"received"`
	Mentions uint64 `json:"mentions"`
	Queued   uint64 `json:"queued"`
	Skipped  uint64 `json:"skipped"`
	Dropped  uint64 `json:"dropped"`
}

// Dispatcher consumes decoded notifications and queues a reply for every
// mention the Responder accepts.
type Dispatcher struct {
	responder *Responder
	queue     Submitter
	logger    *slog.Logger

	received atomic.Uint64
	mentions atomic.Uint64
	queued   atomic.Uint64
	skipped  atomic.Uint64
	dropped  atomic.Uint64
}

// NewDispatcher returns a Dispatcher. A nil logger discards output.
func NewDispatcher(responder *Responder, queue Submitter, l *slog.Logger) *Dispatcher {
	if l == nil {
		l = logger.Nop()
	}
	return &Dispatcher{
		responder: responder,
		queue:     queue,
		logger:    l,
	}
}

// Run handles events one at a time until the channel is closed or ctx is
// done, and returns the number of jobs queued during this call. While the
// queue is full Run stops reading events, so the stream backs up instead of
// losing mentions.
func (d *Dispatcher) Run(ctx context.Context, events <-chan notification.Notification) int {
	queued := 0

	for {
		select {
		case <-ctx.Done():
			return queued
		case n, ok := <-events:
			if !ok {
				return queued
			}
			if d.handle(ctx, n) {
				queued++
			}
		}
	}
}

// handle reports whether a job was queued for n.
func (d *Dispatcher) handle(ctx context.Context, n notification.Notification) bool {
	d.received.Add(1)

	switch v := n.(type) {
	case *notification.Mention:
		d.mentions.Add(1)
		d.logger.Info("mention received",
			"notification_id", v.ID,
			"status_id", v.Status.ID,
			"account", v.Account.Acct,
		)
	case *notification.Other:
		d.logger.Debug("notification ignored", "type", v.Type, "id", v.ID)
	default:
		d.logger.Debug("unrecognised event ignored", "kind", n.Kind())
	}

	job, ok := d.responder.Decide(n)
	if !ok {
		d.skipped.Add(1)
		return false
	}

	if !d.queue.Submit(ctx, job) {
		d.dropped.Add(1)
		d.logger.Warn("mention dropped on shutdown",
			"notification_id", job.NotificationID,
			"status_id", job.InReplyToID,
		)
		return false
	}

	d.queued.Add(1)
	return true
}

// Stats returns a snapshot of the dispatcher's counters.
func (d *Dispatcher) Stats() DispatchStats {
	return DispatchStats{
		Received: d.received.Load(),
		Mentions: d.mentions.Load(),
		Queued:   d.queued.Load(),
		Skipped:  d.skipped.Load(),
		Dropped:  d.dropped.Load(),
	}
}
