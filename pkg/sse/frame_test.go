package sse

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseFrame", func() {
	Context("with data lines", func() {
		It("parses a single data line", func() {
			ev, ok := ParseFrame("data: {\"type\":\"a\"}")
			Expect(ok).To(BeTrue())
			Expect(ev.Data).To(Equal("{\"type\":\"a\"}"))
			Expect(ev.Type).To(BeEmpty())
			Expect(ev.ID).To(BeEmpty())
		})

		It("joins multiple data lines with newline in order", func() {
			ev, ok := ParseFrame("data: line1\ndata: line2")
			Expect(ok).To(BeTrue())
			Expect(ev.Data).To(Equal("line1\nline2"))
		})

		It("handles data field with no space after colon", func() {
			ev, ok := ParseFrame("data:{\"a\":1}")
			Expect(ok).To(BeTrue())
			Expect(ev.Data).To(Equal("{\"a\":1}"))
		})

		It("trims surrounding whitespace from each data value", func() {
			ev, ok := ParseFrame("data:   padded  \r\ndata:\tnext")
			Expect(ok).To(BeTrue())
			Expect(ev.Data).To(Equal("padded\nnext"))
		})

		It("keeps an empty data field as an event", func() {
			ev, ok := ParseFrame("data:")
			Expect(ok).To(BeTrue())
			Expect(ev.Data).To(BeEmpty())
		})

		It("parses event type and id alongside data", func() {
			ev, ok := ParseFrame("event: notification\nid: 42\ndata: {\"id\":\"1\"}")
			Expect(ok).To(BeTrue())
			Expect(ev.Type).To(Equal("notification"))
			Expect(ev.ID).To(Equal("42"))
			Expect(ev.Data).To(Equal("{\"id\":\"1\"}"))
		})

		It("ignores comments and unknown fields between data lines", func() {
			ev, ok := ParseFrame("data: a\n: comment\nretry: 3000\nfoo: bar\ndata: b")
			Expect(ok).To(BeTrue())
			Expect(ev.Data).To(Equal("a\nb"))
		})
	})

	Context("without data lines", func() {
		It("ignores a comment frame", func() {
			ev, ok := ParseFrame(": comment")
			Expect(ok).To(BeFalse())
			Expect(ev).To(BeNil())
		})

		It("ignores an empty frame", func() {
			_, ok := ParseFrame("")
			Expect(ok).To(BeFalse())
		})

		It("ignores an event-only frame", func() {
			_, ok := ParseFrame("event: delete")
			Expect(ok).To(BeFalse())
		})

		It("ignores a bare field name with no colon", func() {
			_, ok := ParseFrame("data")
			Expect(ok).To(BeFalse())
		})
	})
})
