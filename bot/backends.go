package bot

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/papercomputeco/replybot/pkg/config"
	"github.com/papercomputeco/replybot/pkg/eventstream"
	"github.com/papercomputeco/replybot/pkg/eventstream/kafka"
	"github.com/papercomputeco/replybot/pkg/eventstream/nop"
	"github.com/papercomputeco/replybot/pkg/storage"
	"github.com/papercomputeco/replybot/pkg/storage/inmemory"
	"github.com/papercomputeco/replybot/pkg/storage/postgres"
	"github.com/papercomputeco/replybot/pkg/storage/redis"
	"github.com/papercomputeco/replybot/pkg/storage/sqlite"
)

// DefaultSQLiteFile is the ledger file created in the config directory when
// no SQLite target is configured.
const DefaultSQLiteFile = "replies.db"

// NewDriver opens the reply ledger selected by cfg. dir is the .replybot/
// directory used to resolve the default SQLite path; empty means the
// current directory.
func NewDriver(ctx context.Context, cfg config.StorageConfig, dir string, l *slog.Logger) (storage.Driver, error) {
	switch cfg.Provider {
	case config.StorageMemory:
		l.Info("using in-memory reply ledger")
		return inmemory.NewDriver(), nil

	case "", config.StorageSQLite:
		path := cfg.Target
		if path == "" {
			path = filepath.Join(dir, DefaultSQLiteFile)
		}
		drv, err := sqlite.NewSQLiteDriver(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite ledger: %w", err)
		}
		l.Info("using SQLite reply ledger", "path", path)
		return drv, nil

	case config.StoragePostgres:
		if cfg.Target == "" {
			return nil, fmt.Errorf("storage.target must hold a PostgreSQL DSN")
		}
		drv, err := postgres.NewDriver(ctx, cfg.Target)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL ledger: %w", err)
		}
		l.Info("using PostgreSQL reply ledger")
		return drv, nil

	case config.StorageRedis:
		if cfg.Target == "" {
			return nil, fmt.Errorf("storage.target must hold a Redis URL")
		}
		drv, err := redis.NewDriver(ctx, cfg.Target, redis.DefaultKeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("failed to open Redis ledger: %w", err)
		}
		l.Info("using Redis reply ledger")
		return drv, nil

	default:
		return nil, fmt.Errorf("unknown storage provider: %q", cfg.Provider)
	}
}

// NewPublisher returns the reply event publisher selected by cfg.
func NewPublisher(cfg config.EventStreamConfig, l *slog.Logger) (eventstream.Publisher, error) {
	switch cfg.Provider {
	case "", config.EventStreamNop:
		return nop.NewPublisher(), nil

	case config.EventStreamKafka:
		pub, err := kafka.NewPublisher(cfg.Brokers, cfg.Topic)
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
		}
		l.Info("publishing reply events to Kafka",
			"brokers", cfg.Brokers,
			"topic", cfg.Topic,
		)
		return pub, nil

	default:
		return nil, fmt.Errorf("unknown event stream provider: %q", cfg.Provider)
	}
}
