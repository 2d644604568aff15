package testutils

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/replybot/pkg/storage"
)

// DescribeLedger registers the behaviour every storage.Driver must share.
// driver is called from a BeforeEach and must return an empty ledger.
func DescribeLedger(driver func() storage.Driver) {
	var (
		d   storage.Driver
		ctx context.Context
		now time.Time
	)

	BeforeEach(func() {
		d = driver()
		ctx = context.Background()
		now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	})

	Describe("Put and Get", func() {
		It("stores and retrieves a reply", func() {
			reply := NewTestReply("100", now)

			isNew, err := d.Put(ctx, reply)
			Expect(err).NotTo(HaveOccurred())
			Expect(isNew).To(BeTrue())

			got, err := d.Get(ctx, "100")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.StatusID).To(Equal("100"))
			Expect(got.ReplyID).To(Equal(reply.ReplyID))
			Expect(got.Account).To(Equal(reply.Account))
			Expect(got.Text).To(Equal(reply.Text))
			Expect(got.RepliedAt).To(BeTemporally("==", reply.RepliedAt))
		})

		It("returns false for a status that was already answered", func() {
			_, err := d.Put(ctx, NewTestReply("100", now))
			Expect(err).NotTo(HaveOccurred())

			second := NewTestReply("100", now.Add(time.Minute))
			second.Text = "a different answer"
			isNew, err := d.Put(ctx, second)
			Expect(err).NotTo(HaveOccurred())
			Expect(isNew).To(BeFalse())

			got, err := d.Get(ctx, "100")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Text).NotTo(Equal("a different answer"))
		})

		It("rejects a reply without a status id", func() {
			_, err := d.Put(ctx, &storage.Reply{ReplyID: "1"})
			Expect(err).To(MatchError(storage.ErrNilReply))

			_, err = d.Put(ctx, nil)
			Expect(err).To(MatchError(storage.ErrNilReply))
		})

		It("returns NotFoundError for an unknown status", func() {
			_, err := d.Get(ctx, "missing")
			Expect(err).To(MatchError(storage.NotFoundError{StatusID: "missing"}))
		})
	})

	Describe("Has", func() {
		It("reports answered statuses", func() {
			_, err := d.Put(ctx, NewTestReply("100", now))
			Expect(err).NotTo(HaveOccurred())

			Expect(d.Has(ctx, "100")).To(BeTrue())
			Expect(d.Has(ctx, "200")).To(BeFalse())
		})
	})

	Describe("List and Count", func() {
		It("is empty for a new ledger", func() {
			Expect(d.List(ctx)).To(BeEmpty())
			Expect(d.Count(ctx)).To(Equal(0))
		})

		It("lists replies newest first", func() {
			for i, id := range []string{"1", "3", "2"} {
				_, err := d.Put(ctx, NewTestReply(id, now.Add(time.Duration(i)*time.Minute)))
				Expect(err).NotTo(HaveOccurred())
			}

			replies, err := d.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(replies).To(HaveLen(3))
			Expect(replies[0].StatusID).To(Equal("2"))
			Expect(replies[1].StatusID).To(Equal("3"))
			Expect(replies[2].StatusID).To(Equal("1"))

			Expect(d.Count(ctx)).To(Equal(3))
		})
	})
}
