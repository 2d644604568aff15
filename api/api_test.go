package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/replybot/bot/worker"
	"github.com/papercomputeco/replybot/pkg/logger"
	"github.com/papercomputeco/replybot/pkg/reply"
	"github.com/papercomputeco/replybot/pkg/storage/inmemory"
	"github.com/papercomputeco/replybot/pkg/stream"
	testutils "github.com/papercomputeco/replybot/pkg/utils/test"
)

type fixedStats struct {
	stats Stats
}

func (f fixedStats) Stats() Stats { return f.stats }

func getJSON(server *Server, path string, out any) int {
	req, err := http.NewRequest(http.MethodGet, path, nil)
	Expect(err).NotTo(HaveOccurred())

	resp, err := server.app.Test(req)
	Expect(err).NotTo(HaveOccurred())
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	if out != nil {
		Expect(json.Unmarshal(body, out)).To(Succeed())
	}
	return resp.StatusCode
}

var _ = Describe("Server", func() {
	var (
		server *Server
		driver *inmemory.Driver
		ctx    context.Context
		now    time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Now()
		driver = inmemory.NewDriver()

		stats := fixedStats{stats: Stats{
			Instance: "https://example.social",
			Stream:   stream.Stats{Chunks: 3, Frames: 2, Delivered: 2},
			Dispatch: reply.DispatchStats{Received: 2, Mentions: 1, Queued: 1, Skipped: 1},
			Workers:  worker.Stats{Posted: 1},
		}}
		server = NewServer(Config{ListenAddr: ":0"}, driver, stats, logger.Nop())
	})

	Describe("GET /ping", func() {
		It("returns pong", func() {
			var body string
			Expect(getJSON(server, "/ping", &body)).To(Equal(http.StatusOK))
			Expect(body).To(Equal("pong"))
		})
	})

	Describe("GET /stats", func() {
		It("returns the pipeline counters with the ledger size", func() {
			_, err := driver.Put(ctx, testutils.NewTestReply("s1", now))
			Expect(err).NotTo(HaveOccurred())

			var stats Stats
			Expect(getJSON(server, "/stats", &stats)).To(Equal(http.StatusOK))
			Expect(stats.Instance).To(Equal("https://example.social"))
			Expect(stats.Stream.Delivered).To(Equal(uint64(2)))
			Expect(stats.Dispatch.Skipped).To(Equal(uint64(1)))
			Expect(stats.Workers.Posted).To(Equal(uint64(1)))
			Expect(stats.Replies).To(Equal(1))
		})

		It("works without a stats provider", func() {
			server = NewServer(Config{}, driver, nil, logger.Nop())

			var stats Stats
			Expect(getJSON(server, "/stats", &stats)).To(Equal(http.StatusOK))
			Expect(stats.Replies).To(Equal(0))
		})
	})

	Describe("GET /replies", func() {
		BeforeEach(func() {
			for i, id := range []string{"s1", "s2", "s3"} {
				_, err := driver.Put(ctx, testutils.NewTestReply(id, now.Add(time.Duration(i)*time.Minute)))
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("lists replies newest first", func() {
			var body RepliesResponse
			Expect(getJSON(server, "/replies", &body)).To(Equal(http.StatusOK))
			Expect(body.Count).To(Equal(3))
			Expect(body.Replies[0].StatusID).To(Equal("s3"))
			Expect(body.Replies[2].StatusID).To(Equal("s1"))
		})

		It("honours the limit query parameter", func() {
			var body RepliesResponse
			Expect(getJSON(server, "/replies?limit=2", &body)).To(Equal(http.StatusOK))
			Expect(body.Count).To(Equal(2))
			Expect(body.Replies[0].StatusID).To(Equal("s3"))
		})

		It("rejects a negative limit", func() {
			var body ErrorResponse
			Expect(getJSON(server, "/replies?limit=-1", &body)).To(Equal(http.StatusBadRequest))
			Expect(body.Error).To(ContainSubstring("limit"))
		})
	})

	Describe("GET /replies/:id", func() {
		It("returns a stored reply", func() {
			_, err := driver.Put(ctx, testutils.NewTestReply("s9", now))
			Expect(err).NotTo(HaveOccurred())

			var r map[string]any
			Expect(getJSON(server, "/replies/s9", &r)).To(Equal(http.StatusOK))
			Expect(r["status_id"]).To(Equal("s9"))
		})

		It("returns 404 for an unknown status", func() {
			var body ErrorResponse
			Expect(getJSON(server, "/replies/missing", &body)).To(Equal(http.StatusNotFound))
			Expect(body.Error).To(Equal("reply not found"))
		})
	})
})
