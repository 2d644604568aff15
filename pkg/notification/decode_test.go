package notification_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/replybot/pkg/notification"
)

const mentionPayload = `{
	"id": "34975861",
	"type": "mention",
	"created_at": "2019-11-23T07:49:02.064Z",
	"account": {"id": "971724", "username": "zsc", "acct": "zsc@example.social", "bot": false},
	"status": {"id": "103186126728896492", "visibility": "public", "content": "<p>@bot hi</p>"}
}`

var _ = Describe("Decode", func() {
	Context("with a mention notification", func() {
		It("decodes a *Mention with account and status", func() {
			n, err := notification.Decode([]byte(mentionPayload))
			Expect(err).NotTo(HaveOccurred())
			Expect(n.Kind()).To(Equal(notification.KindMention))

			m, ok := n.(*notification.Mention)
			Expect(ok).To(BeTrue())
			Expect(m.ID).To(Equal("34975861"))
			Expect(m.CreatedAt).To(BeTemporally("==", time.Date(2019, 11, 23, 7, 49, 2, 64_000_000, time.UTC)))
			Expect(m.Account.Acct).To(Equal("zsc@example.social"))
			Expect(m.Account.Bot).To(BeFalse())
			Expect(m.Status.ID).To(Equal("103186126728896492"))
			Expect(m.Status.Visibility).To(Equal("public"))
		})

		It("keeps the raw payload", func() {
			n, err := notification.Decode([]byte(mentionPayload))
			Expect(err).NotTo(HaveOccurred())
			Expect(n.Raw()).To(MatchJSON(mentionPayload))
		})

		It("flags bot accounts", func() {
			n, err := notification.Decode([]byte(`{"type":"mention","account":{"acct":"robot","bot":true},"status":{"id":"1"}}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(n.(*notification.Mention).Account.Bot).To(BeTrue())
		})

		It("keeps a mention whose status is missing", func() {
			n, err := notification.Decode([]byte(`{"id":"9","type":"mention","account":{"acct":"a"}}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(n.Kind()).To(Equal(notification.KindMention))

			m := n.(*notification.Mention)
			Expect(m.ID).To(Equal("9"))
			Expect(m.Account.Acct).To(Equal("a"))
			Expect(m.Status.ID).To(BeEmpty())
		})
	})

	Context("with other notification types", func() {
		It("decodes a *Other carrying the type and id", func() {
			n, err := notification.Decode([]byte(`{"id":"7","type":"favourite","status":{"id":"1"}}`))
			Expect(err).NotTo(HaveOccurred())

			o, ok := n.(*notification.Other)
			Expect(ok).To(BeTrue())
			Expect(o.Type).To(Equal("favourite"))
			Expect(o.ID).To(Equal("7"))
			Expect(o.Kind()).To(Equal(notification.KindOther))
		})

		It("decodes {\"type\":\"a\"}", func() {
			n, err := notification.Decode([]byte(`{"type":"a"}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(n.(*notification.Other).Type).To(Equal("a"))
		})

		It("keeps the type when other fields have unexpected shapes", func() {
			n, err := notification.Decode([]byte(`{"type":"follow","id":12,"account":"nope"}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(n.(*notification.Other).Type).To(Equal("follow"))
		})
	})

	Context("with payloads that are not notifications", func() {
		DescribeTable("decodes *Unknown",
			func(payload string) {
				n, err := notification.Decode([]byte(payload))
				Expect(err).NotTo(HaveOccurred())
				Expect(n.Kind()).To(Equal(notification.KindUnknown))
				Expect(n.Raw()).To(Equal(json.RawMessage(payload)))
			},
			Entry("object without type", `{"a":1}`),
			Entry("non-string type", `{"type":3}`),
			Entry("empty type", `{"type":""}`),
			Entry("array", `[1,2,3]`),
			Entry("string", `"hello"`),
			Entry("number", `42`),
			Entry("null", `null`),
		)
	})

	Context("with malformed payloads", func() {
		DescribeTable("returns ErrMalformedPayload",
			func(payload string) {
				n, err := notification.Decode([]byte(payload))
				Expect(err).To(MatchError(notification.ErrMalformedPayload))
				Expect(n).To(BeNil())
			},
			Entry("two plain lines", "line1\nline2"),
			Entry("truncated object", `{"type":"a"`),
			Entry("empty payload", ""),
			Entry("sentinel", "[DONE]"),
		)
	})

	It("does not alias the caller's buffer", func() {
		buf := []byte(`{"type":"a"}`)
		n, err := notification.Decode(buf)
		Expect(err).NotTo(HaveOccurred())
		buf[2] = 'X'
		Expect(n.Raw()).To(MatchJSON(`{"type":"a"}`))
	})
})
