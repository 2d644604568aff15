package config

import "github.com/papercomputeco/replybot/pkg/stream"

// Reply ledger backends.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

// Reply event publishers.
const (
	EventStreamNop   = "nop"
	EventStreamKafka = "kafka"
)

const (
	defaultVisibility = "public"
	defaultWorkers    = 2

	defaultStorageProvider     = StorageSQLite
	defaultEventStreamProvider = EventStreamNop
	defaultEventStreamTopic    = "replybot.replies"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Reply: ReplyConfig{
			Visibility: defaultVisibility,
			SkipBots:   true,
			Workers:    defaultWorkers,
		},
		Stream: StreamConfig{
			QueueSize:      stream.DefaultQueueSize,
			MaxBufferBytes: stream.DefaultMaxBufferSize,
			MaxReadErrors:  stream.DefaultMaxReadErrors,
		},
		Storage: StorageConfig{
			Provider: defaultStorageProvider,
		},
		EventStream: EventStreamConfig{
			Provider: defaultEventStreamProvider,
			Topic:    defaultEventStreamTopic,
		},
	}
}
