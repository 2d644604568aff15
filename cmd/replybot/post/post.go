// Package postcmder provides the post command for publishing a single status.
package postcmder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/replybot/bot"
	"github.com/papercomputeco/replybot/pkg/cliui"
	"github.com/papercomputeco/replybot/pkg/config"
	"github.com/papercomputeco/replybot/pkg/credentials"
	"github.com/papercomputeco/replybot/pkg/logger"
	"github.com/papercomputeco/replybot/pkg/mastodon"
	"github.com/papercomputeco/replybot/pkg/storage"
)

var postFlags = []string{
	config.FlagInstance,
	config.FlagVisibility,
	config.FlagStorageProvider,
	config.FlagStorageTarget,
}

type postCommander struct {
	instance      string
	visibility    string
	storage       string
	storageTarget string

	inReplyTo string
	token     string
	configDir string

	cfg *config.Config
}

const postLongDesc string = `Post a status with the bot account.

Useful to check that the instance URL and access token work before running
"replybot watch". With --in-reply-to the status is posted as a reply and
recorded in the reply ledger, so "replybot watch" will not answer that
mention again.

Examples:
  replybot post "Hello from replybot"
  replybot post --in-reply-to 109876543210 "@alice thanks!"
  replybot post --visibility direct "@bob psst"`

const postShortDesc string = "Post a status with the bot account"

func NewPostCmd() *cobra.Command {
	cmder := &postCommander{}

	cmd := &cobra.Command{
		Use:   "post <text>",
		Short: postShortDesc,
		Long:  postLongDesc,
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, postFlags)
			cmder.cfg = config.FromViper(v)

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, strings.Join(args, " "))
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagInstance, &cmder.instance)
	config.AddStringFlag(cmd, config.Flags, config.FlagVisibility, &cmder.visibility)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageProvider, &cmder.storage)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageTarget, &cmder.storageTarget)

	cmd.Flags().StringVar(&cmder.inReplyTo, "in-reply-to", "", "ID of the status to reply to")
	cmd.Flags().StringVar(&cmder.token, "token", "", "Access token (overrides "+credentials.EnvAccessToken+" and stored credentials)")

	return cmd
}

func (c *postCommander) run(cmd *cobra.Command, text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("status text cannot be empty")
	}
	if c.cfg.Instance.URL == "" {
		return fmt.Errorf("no instance configured: pass --%s or run 'replybot config set instance.url <url>'", config.FlagInstance)
	}
	if !mastodon.ValidVisibility(c.cfg.Reply.Visibility) {
		return fmt.Errorf("invalid visibility: %q", c.cfg.Reply.Visibility)
	}

	creds, err := credentials.NewManager(c.configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}
	token, err := creds.ResolveToken(c.token, c.cfg.Instance.URL)
	if err != nil {
		return err
	}

	client, err := mastodon.NewClient(c.cfg.Instance.URL, token)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)

	var posted *mastodon.Status
	err = cliui.Step(out, "Posting to "+client.Host(), func() error {
		var err error
		posted, err = client.Post(ctx, &mastodon.StatusRequest{
			Status:      text,
			InReplyToID: c.inReplyTo,
			Visibility:  c.cfg.Reply.Visibility,
		})
		return err
	})
	if err != nil {
		return err
	}

	if c.inReplyTo != "" {
		if err := c.record(ctx, posted, text); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "\n  %s\n", cliui.KeyValue("id", posted.ID))
	fmt.Fprintf(out, "  %s\n\n", cliui.KeyValue("url", posted.URL))
	return nil
}

// record marks the replied-to status as answered in the reply ledger.
func (c *postCommander) record(ctx context.Context, posted *mastodon.Status, text string) error {
	cfger, err := config.NewConfiger(c.configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	driver, err := bot.NewDriver(ctx, c.cfg.Storage, cfger.GetDir(), logger.Nop())
	if err != nil {
		return err
	}
	defer driver.Close()

	_, err = driver.Put(ctx, &storage.Reply{
		StatusID:  c.inReplyTo,
		ReplyID:   posted.ID,
		Text:      text,
		RepliedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("recording reply: %w", err)
	}

	return nil
}
