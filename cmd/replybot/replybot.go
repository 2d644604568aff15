// Package replybotcmder is the root of the replybot command tree.
package replybotcmder

import (
	"github.com/spf13/cobra"

	authcmder "github.com/papercomputeco/replybot/cmd/replybot/auth"
	configcmder "github.com/papercomputeco/replybot/cmd/replybot/config"
	initcmder "github.com/papercomputeco/replybot/cmd/replybot/init"
	postcmder "github.com/papercomputeco/replybot/cmd/replybot/post"
	repliescmder "github.com/papercomputeco/replybot/cmd/replybot/replies"
	watchcmder "github.com/papercomputeco/replybot/cmd/replybot/watch"
	versioncmder "github.com/papercomputeco/replybot/cmd/version"
)

const replybotLongDesc string = `Replybot answers Mastodon mentions with canned responses.

It subscribes to the notification stream of the bot account and replies to
every mention with a response picked at random.

Getting started:
  replybot init                                  Create a local .replybot/ directory
  replybot config set instance.url https://mastodon.social
  replybot config set reply.responses '["Hello!", "Hi there"]'
  replybot auth set https://mastodon.social      Store the access token
  replybot watch                                 Start answering mentions`

const replybotShortDesc string = "Replybot - Mastodon auto replies"

func NewReplybotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "replybot",
		Short:         replybotShortDesc,
		Long:          replybotLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .replybot/ config directory")

	// Add subcommands
	cmd.AddCommand(watchcmder.NewWatchCmd())
	cmd.AddCommand(postcmder.NewPostCmd())
	cmd.AddCommand(repliescmder.NewRepliesCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
