// Package watchcmder provides the watch command, which runs the bot.
package watchcmder

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/replybot/bot"
	"github.com/papercomputeco/replybot/pkg/config"
	"github.com/papercomputeco/replybot/pkg/credentials"
	"github.com/papercomputeco/replybot/pkg/logger"
)

// watchFlags are the registry flags the watch command exposes.
var watchFlags = []string{
	config.FlagInstance,
	config.FlagVisibility,
	config.FlagSkipBots,
	config.FlagWorkers,
	config.FlagQueueSize,
	config.FlagMaxBufferBytes,
	config.FlagMaxReadErrors,
	config.FlagStorageProvider,
	config.FlagStorageTarget,
	config.FlagEventStreamProv,
	config.FlagBrokers,
	config.FlagTopic,
	config.FlagAPIListen,
}

type watchCommander struct {
	instance       string
	visibility     string
	skipBots       bool
	workers        uint
	queueSize      int
	maxBufferBytes int
	maxReadErrors  int
	storage        string
	storageTarget  string
	eventstream    string
	brokers        []string
	topic          string
	apiListen      string

	token     string
	logFile   string
	jsonLogs  bool
	debug     bool
	configDir string

	cfg    *config.Config
	logger *slog.Logger
}

const watchLongDesc string = `Watch the notification stream and answer mentions.

Connects to the user notification stream of the bot account and replies to
every mention with a response picked at random from reply.responses. Each
mentioned status is answered at most once: answered statuses are recorded in
the reply ledger (storage.provider).

Settings come from flags, then REPLYBOT_ environment variables, then
config.toml. Changes to reply.responses in config.toml are applied without a
restart.

The command exits when the server closes the stream. It does not reconnect.

Examples:
  replybot watch
  replybot watch --instance https://mastodon.social --visibility unlisted
  replybot watch --storage redis --storage-target redis://localhost:6379/0
  replybot watch --eventstream kafka --kafka-brokers localhost:9092
  replybot watch --api-listen :8081`

const watchShortDesc string = "Watch notifications and answer mentions"

func NewWatchCmd() *cobra.Command {
	cmder := &watchCommander{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: watchShortDesc,
		Long:  watchLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, watchFlags)
			cmder.cfg = config.FromViper(v)

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagInstance, &cmder.instance)
	config.AddStringFlag(cmd, config.Flags, config.FlagVisibility, &cmder.visibility)
	config.AddBoolFlag(cmd, config.Flags, config.FlagSkipBots, &cmder.skipBots)
	config.AddUintFlag(cmd, config.Flags, config.FlagWorkers, &cmder.workers)
	config.AddIntFlag(cmd, config.Flags, config.FlagQueueSize, &cmder.queueSize)
	config.AddIntFlag(cmd, config.Flags, config.FlagMaxBufferBytes, &cmder.maxBufferBytes)
	config.AddIntFlag(cmd, config.Flags, config.FlagMaxReadErrors, &cmder.maxReadErrors)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageProvider, &cmder.storage)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageTarget, &cmder.storageTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventStreamProv, &cmder.eventstream)
	config.AddStringSliceFlag(cmd, config.Flags, config.FlagBrokers, &cmder.brokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagTopic, &cmder.topic)
	config.AddStringFlag(cmd, config.Flags, config.FlagAPIListen, &cmder.apiListen)

	cmd.Flags().StringVar(&cmder.token, "token", "", "Access token (overrides "+credentials.EnvAccessToken+" and stored credentials)")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")
	cmd.Flags().BoolVar(&cmder.jsonLogs, "json", false, "Write JSON logs to stdout")

	return cmd
}

func (c *watchCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var err error
	var closeLog func()
	c.logger, closeLog, err = c.newLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	if c.cfg.Instance.URL == "" {
		return fmt.Errorf("no instance configured: pass --%s or run 'replybot config set instance.url <url>'", config.FlagInstance)
	}

	creds, err := credentials.NewManager(c.configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}
	token, err := creds.ResolveToken(c.token, c.cfg.Instance.URL)
	if err != nil {
		return err
	}

	cfger, err := config.NewConfiger(c.configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	driver, err := bot.NewDriver(ctx, c.cfg.Storage, cfger.GetDir(), c.logger)
	if err != nil {
		return err
	}
	defer driver.Close()

	publisher, err := bot.NewPublisher(c.cfg.EventStream, c.logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	b, err := bot.New(bot.ConfigFrom(c.cfg, token), driver, publisher, c.logger)
	if err != nil {
		return err
	}

	if len(c.cfg.Reply.Responses) == 0 {
		c.logger.Warn("no responses configured, mentions will be answered with a placeholder")
	}

	watcher := config.NewWatcher(cfger, func(cfg *config.Config) {
		b.SetResponses(cfg.Reply.Responses)
	}, c.logger)
	go func() {
		if err := watcher.Run(ctx); err != nil {
			c.logger.Warn("config reload disabled", "error", err)
		}
	}()

	return b.Run(ctx)
}

// newLogger builds the console logger and, with --log-file, fans out to a
// JSON file logger as well.
func (c *watchCommander) newLogger() (*slog.Logger, func(), error) {
	opts := []logger.Option{
		logger.WithDebug(c.debug),
		logger.WithInstance(c.cfg.Instance.URL),
	}
	console := logger.New(append(opts,
		logger.WithPretty(!c.jsonLogs),
		logger.WithJSON(c.jsonLogs),
	)...)

	if c.logFile == "" {
		return console, func() {}, nil
	}

	l, f, err := logger.WithFile(console, c.logFile, opts...)
	if err != nil {
		return nil, nil, err
	}
	return l, func() { _ = f.Close() }, nil
}
