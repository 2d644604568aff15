package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/replybot/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the REPLYBOT_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (REPLYBOT_INSTANCE_URL, REPLYBOT_API_LISTEN, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: REPLYBOT_INSTANCE_URL, REPLYBOT_STORAGE_TARGET, etc.
	v.SetEnvPrefix("REPLYBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Instance
	v.SetDefault("instance.url", d.Instance.URL)

	// Reply
	v.SetDefault("reply.responses", d.Reply.Responses)
	v.SetDefault("reply.visibility", d.Reply.Visibility)
	v.SetDefault("reply.skip_bots", d.Reply.SkipBots)
	v.SetDefault("reply.workers", d.Reply.Workers)

	// Stream
	v.SetDefault("stream.queue_size", d.Stream.QueueSize)
	v.SetDefault("stream.max_buffer_bytes", d.Stream.MaxBufferBytes)
	v.SetDefault("stream.max_read_errors", d.Stream.MaxReadErrors)

	// Storage
	v.SetDefault("storage.provider", d.Storage.Provider)
	v.SetDefault("storage.target", d.Storage.Target)

	// Event stream
	v.SetDefault("eventstream.provider", d.EventStream.Provider)
	v.SetDefault("eventstream.brokers", d.EventStream.Brokers)
	v.SetDefault("eventstream.topic", d.EventStream.Topic)

	// API
	v.SetDefault("api.listen", d.API.Listen)
}

// FromViper materialises the effective configuration after flags,
// environment variables, config.toml and defaults have been merged.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Instance: InstanceConfig{
			URL: v.GetString("instance.url"),
		},
		Reply: ReplyConfig{
			Responses:  v.GetStringSlice("reply.responses"),
			Visibility: v.GetString("reply.visibility"),
			SkipBots:   v.GetBool("reply.skip_bots"),
			Workers:    v.GetUint("reply.workers"),
		},
		Stream: StreamConfig{
			QueueSize:      v.GetInt("stream.queue_size"),
			MaxBufferBytes: v.GetInt("stream.max_buffer_bytes"),
			MaxReadErrors:  v.GetInt("stream.max_read_errors"),
		},
		Storage: StorageConfig{
			Provider: v.GetString("storage.provider"),
			Target:   v.GetString("storage.target"),
		},
		EventStream: EventStreamConfig{
			Provider: v.GetString("eventstream.provider"),
			Brokers:  v.GetStringSlice("eventstream.brokers"),
			Topic:    v.GetString("eventstream.topic"),
		},
		API: APIConfig{
			Listen: v.GetString("api.listen"),
		},
	}
}
