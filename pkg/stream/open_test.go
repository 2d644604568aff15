package stream_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/replybot/pkg/stream"
)

var _ = Describe("Open", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	newRequest := func(url string) *http.Request {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		Expect(err).NotTo(HaveOccurred())
		return req
	}

	It("streams events flushed by the server in separate chunks", func() {
		chunks := []string{
			": connected\n\n",
			"event: notification\ndata: {\"ty",
			"pe\":\"follow\"}\n\nevent: notification\n",
			"data: {\"type\":\"favourite\"}\n\n",
		}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			flusher := w.(http.Flusher)
			for _, c := range chunks {
				fmt.Fprint(w, c)
				flusher.Flush()
			}
		}))
		DeferCleanup(server.Close)

		s, err := stream.Open(ctx, newRequest(server.URL))
		Expect(err).NotTo(HaveOccurred())

		Expect(types(drain(s))).To(Equal([]string{"follow", "favourite"}))
		Expect(s.Wait()).To(Succeed())
	})

	It("returns a StatusError when the server rejects the request", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"The access token is invalid"}`)
		}))
		DeferCleanup(server.Close)

		s, err := stream.Open(ctx, newRequest(server.URL))
		Expect(s).To(BeNil())

		var statusErr *stream.StatusError
		Expect(errors.As(err, &statusErr)).To(BeTrue())
		Expect(statusErr.Code).To(Equal(http.StatusUnauthorized))
		Expect(statusErr.Body).To(ContainSubstring("access token is invalid"))
	})

	It("wraps transport failures in ErrConnect", func() {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		_, err := stream.Open(ctx, newRequest(url))
		Expect(err).To(MatchError(stream.ErrConnect))
	})

	It("aborts a stalled response when closed", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			fmt.Fprint(w, "data: {\"type\":\"first\"}\n\n")
			w.(http.Flusher).Flush()
			<-r.Context().Done()
		}))
		DeferCleanup(server.Close)

		s, err := stream.Open(ctx, newRequest(server.URL))
		Expect(err).NotTo(HaveOccurred())

		Eventually(s.Events()).Should(Receive())

		closed := make(chan error, 1)
		go func() { closed <- s.Close() }()
		Eventually(closed, 2*time.Second).Should(Receive(BeNil()))
	})
})
