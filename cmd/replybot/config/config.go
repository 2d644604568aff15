// Package configcmder provides the config command for managing persistent
// replybot configuration stored in the .replybot/ directory.
package configcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/replybot/pkg/cliui"
	"github.com/papercomputeco/replybot/pkg/config"
)

const configLongDesc string = `Manage persistent replybot configuration.

Configuration is stored as config.toml in the .replybot/ directory and provides
default values for command flags. CLI flags and REPLYBOT_ environment
variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  instance.url,
  reply.responses, reply.visibility, reply.skip_bots, reply.workers,
  stream.queue_size, stream.max_buffer_bytes, stream.max_read_errors,
  storage.provider, storage.target,
  eventstream.provider, eventstream.brokers, eventstream.topic,
  api.listen

Use subcommands to get, set, or list configuration values:
  replybot config set <key> <value>    Set a configuration value
  replybot config get <key>            Get a configuration value
  replybot config list                 List all configuration values
  replybot config import <file>        Import a legacy config.yaml

Examples:
  replybot config set instance.url https://mastodon.social
  replybot config set reply.responses '["Hello!", "Hi there"]'
  replybot config get reply.visibility
  replybot config list`

const configShortDesc string = "Manage persistent replybot configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newImportCmd())

	return cmd
}

func printTarget(out io.Writer, cfger *config.Configer) {
	fmt.Fprintf(out, "\n  %s %s\n\n",
		cliui.KeyStyle.Render("Config file:"),
		cliui.DimStyle.Render(cfger.GetTarget()),
	)
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}
