package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent replybot configuration stored as
// config.toml in the .replybot/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Instance    InstanceConfig    `toml:"instance"`
	Reply       ReplyConfig       `toml:"reply"`
	Stream      StreamConfig      `toml:"stream"`
	Storage     StorageConfig     `toml:"storage"`
	EventStream EventStreamConfig `toml:"eventstream"`
	API         APIConfig         `toml:"api"`
}

// InstanceConfig identifies the Mastodon instance to watch. The access token
// is kept in credentials.toml, never here.
type InstanceConfig struct {
	URL string `toml:"url,omitempty"`
}

// ReplyConfig controls how mentions are answered.
type ReplyConfig struct {
	Responses  []string `toml:"responses"`
	Visibility string   `toml:"visibility,omitempty"`
	SkipBots   bool     `toml:"skip_bots"`
	Workers    uint     `toml:"workers,omitempty"`
}

// StreamConfig tunes the notification stream pump.
type StreamConfig struct {
	QueueSize      int `toml:"queue_size"`
	MaxBufferBytes int `toml:"max_buffer_bytes"`

	// MaxReadErrors is the number of consecutive failed reads tolerated.
	// Zero never gives up.
	MaxReadErrors int `toml:"max_read_errors"`
}

// StorageConfig selects the reply ledger backend.
type StorageConfig struct {
	// Provider is one of memory, sqlite, postgres or redis.
	Provider string `toml:"provider,omitempty"`

	// Target is the SQLite path, PostgreSQL DSN or Redis URL. An empty SQLite
	// target resolves to replies.db in the .replybot/ directory.
	Target string `toml:"target,omitempty"`
}

// EventStreamConfig selects where reply events are published.
type EventStreamConfig struct {
	// Provider is one of nop or kafka.
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}

// APIConfig holds status API server settings. An empty Listen disables the
// server.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"instance.url": {
		get: func(c *Config) string { return c.Instance.URL },
		set: func(c *Config, v string) error { c.Instance.URL = v; return nil },
	},
	"reply.responses": {
		get: func(c *Config) string { return formatList(c.Reply.Responses) },
		set: func(c *Config, v string) error {
			list, err := parseList(v)
			if err != nil {
				return fmt.Errorf("invalid value for reply.responses: %w", err)
			}
			c.Reply.Responses = list
			return nil
		},
	},
	"reply.visibility": {
		get: func(c *Config) string { return c.Reply.Visibility },
		set: func(c *Config, v string) error {
			switch v {
			case "public", "unlisted", "private", "direct":
				c.Reply.Visibility = v
				return nil
			default:
				return fmt.Errorf("invalid value for reply.visibility: %q", v)
			}
		},
	},
	"reply.skip_bots": {
		get: func(c *Config) string { return strconv.FormatBool(c.Reply.SkipBots) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for reply.skip_bots: %w", err)
			}
			c.Reply.SkipBots = b
			return nil
		},
	},
	"reply.workers": {
		get: func(c *Config) string { return strconv.FormatUint(uint64(c.Reply.Workers), 10) },
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return fmt.Errorf("invalid value for reply.workers: %w", err)
			}
			c.Reply.Workers = uint(n)
			return nil
		},
	},
	"stream.queue_size": {
		get: func(c *Config) string { return strconv.Itoa(c.Stream.QueueSize) },
		set: intSetter("stream.queue_size", func(c *Config, n int) { c.Stream.QueueSize = n }),
	},
	"stream.max_buffer_bytes": {
		get: func(c *Config) string { return strconv.Itoa(c.Stream.MaxBufferBytes) },
		set: intSetter("stream.max_buffer_bytes", func(c *Config, n int) { c.Stream.MaxBufferBytes = n }),
	},
	"stream.max_read_errors": {
		get: func(c *Config) string { return strconv.Itoa(c.Stream.MaxReadErrors) },
		set: intSetter("stream.max_read_errors", func(c *Config, n int) { c.Stream.MaxReadErrors = n }),
	},
	"storage.provider": {
		get: func(c *Config) string { return c.Storage.Provider },
		set: func(c *Config, v string) error {
			switch v {
			case StorageMemory, StorageSQLite, StoragePostgres, StorageRedis:
				c.Storage.Provider = v
				return nil
			default:
				return fmt.Errorf("invalid value for storage.provider: %q", v)
			}
		},
	},
	"storage.target": {
		get: func(c *Config) string { return c.Storage.Target },
		set: func(c *Config, v string) error { c.Storage.Target = v; return nil },
	},
	"eventstream.provider": {
		get: func(c *Config) string { return c.EventStream.Provider },
		set: func(c *Config, v string) error {
			switch v {
			case EventStreamNop, EventStreamKafka:
				c.EventStream.Provider = v
				return nil
			default:
				return fmt.Errorf("invalid value for eventstream.provider: %q", v)
			}
		},
	},
	"eventstream.brokers": {
		get: func(c *Config) string { return strings.Join(c.EventStream.Brokers, ",") },
		set: func(c *Config, v string) error { c.EventStream.Brokers = splitCSV(v); return nil },
	},
	"eventstream.topic": {
		get: func(c *Config) string { return c.EventStream.Topic },
		set: func(c *Config, v string) error { c.EventStream.Topic = v; return nil },
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
}

func intSetter(key string, apply func(c *Config, n int)) func(c *Config, v string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		if n < 0 {
			return fmt.Errorf("invalid value for %s: must not be negative", key)
		}
		apply(c, n)
		return nil
	}
}

// formatList renders a list as a JSON array.
func formatList(list []string) string {
	if len(list) == 0 {
		return "[]"
	}
	data, _ := json.Marshal(list)
	return string(data)
}

// parseList accepts a JSON array of strings, or a single plain value.
func parseList(v string) ([]string, error) {
	trimmed := strings.TrimSpace(v)
	if !strings.HasPrefix(trimmed, "[") {
		if trimmed == "" {
			return nil, nil
		}
		return []string{v}, nil
	}

	var list []string
	if err := json.Unmarshal([]byte(trimmed), &list); err != nil {
		return nil, err
	}
	return list, nil
}

func splitCSV(v string) []string {
	var out []string
	for part := range strings.SplitSeq(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
