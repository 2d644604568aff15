// Package stream runs the pump that turns a long-lived SSE response body into
// decoded notifications.
//
// ┌──────────────┐   ┌───────────────┐   ┌─────────────┐   ┌──────────────┐
// │ body chunks  │──▶│ sse.Assembler │──▶│ sse + notif │──▶│ chan (64)    │
// └──────────────┘   └───────────────┘   │ decoders    │   │ Events()     │
//                                        └─────────────┘   └──────────────┘
//
// The pump runs in its own goroutine owned by a *Stream. The caller consumes
// Events() and may stop the pump at any time with Close; Wait reports why the
// pump ended.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/papercomputeco/replybot/pkg/notification"
	"github.com/papercomputeco/replybot/pkg/sse"
)

// maxErrorBody is how much of a rejected response body is kept in a
// StatusError.
const maxErrorBody = 1024

// Stats is a snapshot of the pump's counters.
type Stats struct {
	// Chunks is the number of non-empty body reads.
	Chunks uint64 `json:"chunks"`

	// Frames is the number of complete frames assembled.
	Frames uint64 `json:"frames"`

	// Delivered is the number of notifications handed to the consumer.
	Delivered uint64 `json:"delivered"`

	// Dropped is the number of frames without data or with a malformed
	// payload.
	Dropped uint64 `json:"dropped"`

	// ReadErrors is the number of failed body reads that were skipped.
	ReadErrors uint64 `json:"read_errors"`
}

// Stream is the caller-owned handle of a running pump.
type Stream struct {
	ctx    context.Context
	cancel context.CancelFunc

	body      io.ReadCloser
	assembler *sse.Assembler
	events    chan notification.Notification
	done      chan struct{}
	err       error

	opts   *options
	logger *slog.Logger

	chunks     atomic.Uint64
	frames     atomic.Uint64
	delivered  atomic.Uint64
	dropped    atomic.Uint64
	readErrors atomic.Uint64
}

// Open sends req and, once the server has answered with a 2xx status, starts
// pumping the response body in the background.
//
// Setup failures are returned synchronously: a transport error wraps
// ErrConnect and a non-2xx answer is a *StatusError. In both cases no
// goroutine is started.
//
// The request is bound to the Stream's lifetime: cancelling ctx or calling
// Close aborts it, which also unblocks a stalled body read.
func Open(ctx context.Context, req *http.Request, opts ...Option) (*Stream, error) {
	o := newOptions(opts)

	ctx, cancel := context.WithCancel(ctx)
	resp, err := o.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		cancel()
		return nil, &StatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(body)),
		}
	}

	o.logger.Debug("stream connected",
		"url", req.URL.Redacted(),
		"status", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"),
	)

	return start(ctx, cancel, resp.Body, o), nil
}

// New starts pumping an already open body. The Stream takes ownership of body
// and closes it when the pump exits.
func New(ctx context.Context, body io.ReadCloser, opts ...Option) *Stream {
	ctx, cancel := context.WithCancel(ctx)
	return start(ctx, cancel, body, newOptions(opts))
}

func start(ctx context.Context, cancel context.CancelFunc, body io.ReadCloser, o *options) *Stream {
	s := &Stream{
		ctx:       ctx,
		cancel:    cancel,
		body:      body,
		assembler: sse.NewAssembler(o.maxBufferSize),
		events:    make(chan notification.Notification, o.queueSize),
		done:      make(chan struct{}),
		opts:      o,
		logger:    o.logger,
	}

	go s.run()

	return s
}

// Events returns the consumption side of the stream. The channel is closed
// once the pump exits.
func (s *Stream) Events() <-chan notification.Notification {
	return s.events
}

// Done is closed once the pump has exited.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the pump exits. It returns nil when the body ended or the
// stream was closed by its consumer, and the fatal error otherwise.
func (s *Stream) Wait() error {
	<-s.done
	return s.err
}

// Close stops the pump without reading any further data and waits for it to
// exit. Close is safe to call more than once.
func (s *Stream) Close() error {
	s.cancel()
	return s.Wait()
}

// Stats returns a snapshot of the pump's counters.
func (s *Stream) Stats() Stats {
	return Stats{
		Chunks:     s.chunks.Load(),
		Frames:     s.frames.Load(),
		Delivered:  s.delivered.Load(),
		Dropped:    s.dropped.Load(),
		ReadErrors: s.readErrors.Load(),
	}
}

// run is the pump goroutine.
func (s *Stream) run() {
	// Closing the body unblocks a pending Read once the stream is cancelled.
	stop := context.AfterFunc(s.ctx, func() { _ = s.body.Close() })

	defer close(s.done)
	defer close(s.events)
	defer s.cancel()
	defer func() {
		if stop() {
			_ = s.body.Close()
		}
	}()

	s.err = s.pump()
	if s.err != nil {
		s.logger.Error("stream pump stopped", "error", s.err)
		return
	}
	s.logger.Debug("stream pump finished", "stats", s.Stats())
}

// pump reads the body chunk by chunk until EOF, cancellation or a fatal error.
func (s *Stream) pump() error {
	buf := make([]byte, s.opts.chunkSize)
	consecutive := 0

	for {
		if s.ctx.Err() != nil {
			return nil
		}

		n, err := s.body.Read(buf)
		if n > 0 {
			consecutive = 0
			s.chunks.Add(1)

			frames, absorbErr := s.assembler.Absorb(buf[:n])
			for _, frame := range frames {
				if !s.dispatch(frame) {
					return nil
				}
			}
			if absorbErr != nil {
				return absorbErr
			}
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			if s.assembler.Buffered() > 0 {
				s.logger.Debug("discarding unterminated frame", "bytes", s.assembler.Buffered())
			}
			return nil
		case s.ctx.Err() != nil:
			// The read failed because the stream was closed.
			return nil
		default:
			s.readErrors.Add(1)
			consecutive++
			s.logger.Warn("skipping failed stream read",
				"error", err,
				"consecutive", consecutive,
			)
			if s.opts.maxReadErrors > 0 && consecutive >= s.opts.maxReadErrors {
				return fmt.Errorf("%w: %w", ErrTooManyReadErrors, err)
			}
		}
	}
}

// dispatch decodes one frame and hands the result to the consumer. It returns
// false when the consumer is gone and the pump must stop.
func (s *Stream) dispatch(frame string) bool {
	s.frames.Add(1)

	ev, ok := sse.ParseFrame(frame)
	if !ok {
		s.dropped.Add(1)
		return true
	}

	n, err := notification.Decode([]byte(ev.Data))
	if err != nil {
		s.dropped.Add(1)
		s.logger.Debug("dropping undecodable event",
			"event", ev.Type,
			"error", err,
		)
		return true
	}

	if s.ctx.Err() != nil {
		return false
	}

	select {
	case s.events <- n:
		s.delivered.Add(1)
		return true
	case <-s.ctx.Done():
		return false
	}
}
