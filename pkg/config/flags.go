package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --instance
// on both "replybot watch" and "replybot post").
type Flag struct {
	// Name is the long flag name (e.g. "instance").
	Name string

	// Shorthand is the one-letter short flag (e.g. "i"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "instance.url").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling the Add*Flag helpers and
// BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagInstance        = "instance"
	FlagVisibility      = "visibility"
	FlagSkipBots        = "skip-bots"
	FlagWorkers         = "workers"
	FlagQueueSize       = "queue-size"
	FlagMaxBufferBytes  = "max-buffer-bytes"
	FlagMaxReadErrors   = "max-read-errors"
	FlagStorageProvider = "storage"
	FlagStorageTarget   = "storage-target"
	FlagEventStreamProv = "eventstream"
	FlagBrokers         = "kafka-brokers"
	FlagTopic           = "kafka-topic"
	FlagAPIListen       = "api-listen"
)

// Flags is the registry shared by every command.
var Flags = FlagSet{
	FlagInstance: {
		Name:        "instance",
		Shorthand:   "i",
		ViperKey:    "instance.url",
		Description: "Mastodon instance URL (e.g. https://mastodon.social)",
	},
	FlagVisibility: {
		Name:        "visibility",
		ViperKey:    "reply.visibility",
		Description: "Visibility of posted replies (public, unlisted, private, direct)",
	},
	FlagSkipBots: {
		Name:        "skip-bots",
		ViperKey:    "reply.skip_bots",
		Description: "Ignore mentions from bot accounts",
	},
	FlagWorkers: {
		Name:        "workers",
		Shorthand:   "w",
		ViperKey:    "reply.workers",
		Description: "Number of workers posting replies",
	},
	FlagQueueSize: {
		Name:        "queue-size",
		ViperKey:    "stream.queue_size",
		Description: "Capacity of the decoded event channel",
	},
	FlagMaxBufferBytes: {
		Name:        "max-buffer-bytes",
		ViperKey:    "stream.max_buffer_bytes",
		Description: "Largest partial frame kept before the stream fails (0 for no limit)",
	},
	FlagMaxReadErrors: {
		Name:        "max-read-errors",
		ViperKey:    "stream.max_read_errors",
		Description: "Consecutive failed reads tolerated before the stream stops (0 for no limit)",
	},
	FlagStorageProvider: {
		Name:        "storage",
		Shorthand:   "s",
		ViperKey:    "storage.provider",
		Description: "Reply ledger backend (memory, sqlite, postgres, redis)",
	},
	FlagStorageTarget: {
		Name:        "storage-target",
		ViperKey:    "storage.target",
		Description: "SQLite path, PostgreSQL DSN or Redis URL for the reply ledger",
	},
	FlagEventStreamProv: {
		Name:        "eventstream",
		ViperKey:    "eventstream.provider",
		Description: "Reply event publisher (nop, kafka)",
	},
	FlagBrokers: {
		Name:        "kafka-brokers",
		ViperKey:    "eventstream.brokers",
		Description: "Kafka broker addresses",
	},
	FlagTopic: {
		Name:        "kafka-topic",
		ViperKey:    "eventstream.topic",
		Description: "Kafka topic for reply events",
	},
	FlagAPIListen: {
		Name:        "api-listen",
		ViperKey:    "api.listen",
		Description: "Address for the status API (empty to disable)",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaults().GetUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddIntFlag registers an int flag on cmd from the given FlagSet.
func AddIntFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *int) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaults().GetInt(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().IntVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().IntVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *bool) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaults().GetBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddStringSliceFlag registers a string slice flag on cmd from the given FlagSet.
func AddStringSliceFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *[]string) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaults().GetStringSlice(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringSliceVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringSliceVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaults returns a viper instance holding only the values of NewDefaultConfig.
func defaults() *viper.Viper {
	v := viper.New()
	setViperDefaults(v)
	return v
}
