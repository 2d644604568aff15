package stream_test

import (
	"context"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/replybot/pkg/notification"
	"github.com/papercomputeco/replybot/pkg/sse"
	"github.com/papercomputeco/replybot/pkg/stream"
)

var errGlitch = errors.New("connection glitch")

var _ = Describe("Stream", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("decoding", func() {
		It("delivers one event for a single frame", func() {
			s := stream.New(ctx, chunked("data: {\"type\":\"a\"}\n\n"))

			got := drain(s)
			Expect(s.Wait()).To(Succeed())
			Expect(got).To(HaveLen(1))
			Expect(got[0].Raw()).To(MatchJSON(`{"type":"a"}`))
		})

		It("reassembles a frame split mid-payload", func() {
			s := stream.New(ctx, chunked("data: {\"ty", "pe\":\"a\"}\n\n"))

			got := drain(s)
			Expect(got).To(HaveLen(1))
			Expect(got[0].Raw()).To(MatchJSON(`{"type":"a"}`))
		})

		It("drops a frame whose joined data lines are not JSON", func() {
			body := chunked("data: line1\ndata: line2\n\n")
			s := stream.New(ctx, body)

			Expect(drain(s)).To(BeEmpty())
			Expect(s.Stats().Frames).To(BeEquivalentTo(1))
			Expect(s.Stats().Dropped).To(BeEquivalentTo(1))
		})

		It("joins multi-line data before parsing", func() {
			s := stream.New(ctx, chunked("data: {\"type\":\ndata: \"multi\"}\n\n"))

			Expect(types(drain(s))).To(Equal([]string{"multi"}))
		})

		It("ignores comment frames", func() {
			s := stream.New(ctx, chunked(": comment\n\n"))

			Expect(drain(s)).To(BeEmpty())
			Expect(s.Stats().Dropped).To(BeEquivalentTo(1))
		})

		It("delivers two frames from one chunk in order", func() {
			s := stream.New(ctx, chunked("data:{\"a\":1}\n\ndata:{\"a\":2}\n\n"))

			got := drain(s)
			Expect(got).To(HaveLen(2))
			Expect(got[0].Raw()).To(MatchJSON(`{"a":1}`))
			Expect(got[1].Raw()).To(MatchJSON(`{"a":2}`))
		})

		It("keeps going after a malformed frame", func() {
			s := stream.New(ctx, chunked(
				"data: {broken\n\n",
				"data: {\"type\":\"after\"}\n\n",
			))

			Expect(types(drain(s))).To(Equal([]string{"after"}))
		})

		It("discards an unterminated trailing frame at end of stream", func() {
			s := stream.New(ctx, chunked("data: {\"type\":\"a\"}\n\ndata: {\"type\":\"b\"}"))

			Expect(types(drain(s))).To(Equal([]string{"a"}))
			Expect(s.Wait()).To(Succeed())
		})

		It("attempts one decode per complete frame regardless of chunk boundaries", func() {
			input := ": keep-alive\n\n" +
				"event: notification\ndata: {\"type\":\"one\"}\n\n" +
				"data: not json\n\n" +
				"data: {\"type\":\ndata: \"two\"}\n\n" +
				"data: {\"type\":\"three\"}\n\n" +
				"data: {\"type\":\"tail\"}"

			for _, size := range []int{1, 2, 3, 5, 7, 13, 64, len(input)} {
				var chunks []string
				for i := 0; i < len(input); i += size {
					chunks = append(chunks, input[i:min(i+size, len(input))])
				}

				s := stream.New(ctx, chunked(chunks...))
				got := drain(s)
				Expect(s.Wait()).To(Succeed())

				Expect(s.Stats().Frames).To(BeEquivalentTo(5), "chunk size %d", size)
				Expect(s.Stats().Dropped).To(BeEquivalentTo(2), "chunk size %d", size)
				Expect(types(got)).To(Equal([]string{"one", "two", "three"}), "chunk size %d", size)
			}
		})

		It("classifies mentions", func() {
			s := stream.New(ctx, chunked(
				"event: notification\n",
				"data: {\"id\":\"1\",\"type\":\"mention\",\"account\":{\"acct\":\"alice\"},\"status\":{\"id\":\"99\"}}\n\n",
			))

			got := drain(s)
			Expect(got).To(HaveLen(1))
			m, ok := got[0].(*notification.Mention)
			Expect(ok).To(BeTrue())
			Expect(m.Status.ID).To(Equal("99"))
		})
	})

	Describe("read errors", func() {
		It("skips a failed read and keeps reading", func() {
			body := newScriptedBody(
				step{data: "data: {\"type\":\"a\"}\n\n"},
				step{err: errGlitch},
				step{data: "data: {\"type\":\"b\"}\n\n"},
			)
			s := stream.New(ctx, body)

			Expect(types(drain(s))).To(Equal([]string{"a", "b"}))
			Expect(s.Wait()).To(Succeed())
			Expect(s.Stats().ReadErrors).To(BeEquivalentTo(1))
		})

		It("stops after too many consecutive failed reads", func() {
			body := newScriptedBody(
				step{err: errGlitch},
				step{err: errGlitch},
				step{err: errGlitch},
				step{data: "data: {\"type\":\"never\"}\n\n"},
			)
			s := stream.New(ctx, body, stream.WithMaxReadErrors(3))

			Expect(drain(s)).To(BeEmpty())
			err := s.Wait()
			Expect(err).To(MatchError(stream.ErrTooManyReadErrors))
			Expect(err).To(MatchError(errGlitch))
			Expect(body.closed.Load()).To(BeTrue())
		})

		It("resets the consecutive count after a successful read", func() {
			body := newScriptedBody(
				step{err: errGlitch},
				step{data: "data: {\"type\":\"a\"}\n\n"},
				step{err: errGlitch},
				step{data: "data: {\"type\":\"b\"}\n\n"},
			)
			s := stream.New(ctx, body, stream.WithMaxReadErrors(2))

			Expect(types(drain(s))).To(Equal([]string{"a", "b"}))
			Expect(s.Wait()).To(Succeed())
		})

		It("never gives up when the cutoff is disabled", func() {
			steps := make([]step, 0, 21)
			for range 20 {
				steps = append(steps, step{err: errGlitch})
			}
			steps = append(steps, step{data: "data: {\"type\":\"a\"}\n\n"})
			s := stream.New(ctx, newScriptedBody(steps...), stream.WithMaxReadErrors(0))

			Expect(types(drain(s))).To(Equal([]string{"a"}))
			Expect(s.Wait()).To(Succeed())
		})
	})

	Describe("frame size cap", func() {
		It("fails the stream when a partial frame grows too large", func() {
			s := stream.New(ctx,
				chunked("data: {\"type\":\"a\"}\n\ndata: "+strings.Repeat("x", 64)),
				stream.WithMaxBufferSize(32),
			)

			Expect(types(drain(s))).To(Equal([]string{"a"}))
			Expect(s.Wait()).To(MatchError(sse.ErrFrameTooLarge))
		})
	})

	Describe("backpressure and cancellation", func() {
		It("blocks on a full channel without reading further", func() {
			body := &endlessBody{}
			s := stream.New(ctx, body, stream.WithQueueSize(1))
			DeferCleanup(s.Close)

			Eventually(body.reads.Load).Should(BeEquivalentTo(2))
			Consistently(body.reads.Load, 100*time.Millisecond).Should(BeEquivalentTo(2))
		})

		It("stops reading once the consumer closes the stream", func() {
			body := &endlessBody{}
			s := stream.New(ctx, body, stream.WithQueueSize(1))

			Eventually(body.reads.Load).Should(BeEquivalentTo(2))
			Expect(s.Close()).To(Succeed())

			Expect(body.reads.Load()).To(BeEquivalentTo(2))
			Expect(body.closed.Load()).To(BeTrue())
			Expect(drain(s)).To(HaveLen(1))
		})

		It("stops when the parent context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			body := &endlessBody{}
			s := stream.New(cctx, body, stream.WithQueueSize(1))

			Eventually(body.reads.Load).Should(BeEquivalentTo(2))
			cancel()

			Eventually(s.Done()).Should(BeClosed())
			Expect(s.Wait()).To(Succeed())
		})

		It("delivers events while the consumer keeps up", func() {
			body := &endlessBody{}
			s := stream.New(ctx, body, stream.WithQueueSize(1))

			for range 10 {
				Eventually(s.Events()).Should(Receive())
			}
			Expect(s.Close()).To(Succeed())
			Expect(s.Stats().Delivered).To(BeNumerically(">=", 10))
		})

		It("can be closed more than once", func() {
			s := stream.New(ctx, chunked())
			Expect(s.Close()).To(Succeed())
			Expect(s.Close()).To(Succeed())
		})
	})
})
