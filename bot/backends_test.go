package bot_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/replybot/bot"
	"github.com/papercomputeco/replybot/pkg/config"
	"github.com/papercomputeco/replybot/pkg/eventstream/kafka"
	"github.com/papercomputeco/replybot/pkg/eventstream/nop"
	"github.com/papercomputeco/replybot/pkg/logger"
	"github.com/papercomputeco/replybot/pkg/storage/inmemory"
	"github.com/papercomputeco/replybot/pkg/storage/sqlite"
)

var _ = Describe("NewDriver", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("opens an in-memory ledger", func() {
		drv, err := bot.NewDriver(ctx, config.StorageConfig{Provider: config.StorageMemory}, "", logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		Expect(drv).To(BeAssignableToTypeOf(&inmemory.Driver{}))
		Expect(drv.Close()).To(Succeed())
	})

	It("creates the SQLite ledger in the config directory by default", func() {
		dir := GinkgoT().TempDir()

		drv, err := bot.NewDriver(ctx, config.StorageConfig{Provider: config.StorageSQLite}, dir, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(drv.Close)

		Expect(drv).To(BeAssignableToTypeOf(&sqlite.SQLiteDriver{}))
		_, err = os.Stat(filepath.Join(dir, bot.DefaultSQLiteFile))
		Expect(err).NotTo(HaveOccurred())
	})

	It("uses an explicit SQLite target", func() {
		path := filepath.Join(GinkgoT().TempDir(), "ledger.db")

		drv, err := bot.NewDriver(ctx, config.StorageConfig{Provider: config.StorageSQLite, Target: path}, "", logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(drv.Close)

		_, err = os.Stat(path)
		Expect(err).NotTo(HaveOccurred())
	})

	It("requires a DSN for PostgreSQL", func() {
		_, err := bot.NewDriver(ctx, config.StorageConfig{Provider: config.StoragePostgres}, "", logger.Nop())
		Expect(err).To(MatchError(ContainSubstring("DSN")))
	})

	It("requires a URL for Redis", func() {
		_, err := bot.NewDriver(ctx, config.StorageConfig{Provider: config.StorageRedis}, "", logger.Nop())
		Expect(err).To(MatchError(ContainSubstring("Redis URL")))
	})

	It("rejects unknown providers", func() {
		_, err := bot.NewDriver(ctx, config.StorageConfig{Provider: "etcd"}, "", logger.Nop())
		Expect(err).To(MatchError(ContainSubstring("unknown storage provider")))
	})
})

var _ = Describe("NewPublisher", func() {
	It("defaults to the no-op publisher", func() {
		pub, err := bot.NewPublisher(config.EventStreamConfig{}, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		Expect(pub).To(BeAssignableToTypeOf(&nop.Publisher{}))
	})

	It("builds a Kafka publisher from the brokers", func() {
		pub, err := bot.NewPublisher(config.EventStreamConfig{
			Provider: config.EventStreamKafka,
			Brokers:  []string{"localhost:9092"},
			Topic:    "replies",
		}, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		Expect(pub).To(BeAssignableToTypeOf(&kafka.Publisher{}))
		Expect(pub.Close()).To(Succeed())
	})

	It("requires Kafka brokers", func() {
		_, err := bot.NewPublisher(config.EventStreamConfig{Provider: config.EventStreamKafka}, logger.Nop())
		Expect(err).To(MatchError(kafka.ErrNoBrokers))
	})

	It("rejects unknown providers", func() {
		_, err := bot.NewPublisher(config.EventStreamConfig{Provider: "nats"}, logger.Nop())
		Expect(err).To(HaveOccurred())
	})
})
