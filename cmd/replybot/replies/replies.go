// Package repliescmder provides the replies command for inspecting the reply
// ledger.
package repliescmder

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/replybot/bot"
	"github.com/papercomputeco/replybot/pkg/config"
	"github.com/papercomputeco/replybot/pkg/logger"
	"github.com/papercomputeco/replybot/pkg/utils"
)

const maxTextWidth = 60

var repliesFlags = []string{
	config.FlagStorageProvider,
	config.FlagStorageTarget,
}

type repliesCommander struct {
	storage       string
	storageTarget string
	limit         int
	jsonOut       bool
	configDir     string

	cfg *config.Config
}

const repliesLongDesc string = `List the replies recorded in the reply ledger, newest first.

Examples:
  replybot replies
  replybot replies --limit 10
  replybot replies --json
  replybot replies --storage redis --storage-target redis://localhost:6379/0`

const repliesShortDesc string = "List posted replies"

func NewRepliesCmd() *cobra.Command {
	cmder := &repliesCommander{}

	cmd := &cobra.Command{
		Use:   "replies",
		Short: repliesShortDesc,
		Long:  repliesLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, repliesFlags)
			cmder.cfg = config.FromViper(v)

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagStorageProvider, &cmder.storage)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageTarget, &cmder.storageTarget)
	cmd.Flags().IntVarP(&cmder.limit, "limit", "n", 0, "Show at most this many replies (0 for all)")
	cmd.Flags().BoolVar(&cmder.jsonOut, "json", false, "Print replies as JSON")

	return cmd
}

func (c *repliesCommander) run(cmd *cobra.Command) error {
	if c.limit < 0 {
		return fmt.Errorf("limit must be non-negative, got %d", c.limit)
	}

	cfger, err := config.NewConfiger(c.configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx := cmd.Context()
	driver, err := bot.NewDriver(ctx, c.cfg.Storage, cfger.GetDir(), logger.Nop())
	if err != nil {
		return err
	}
	defer driver.Close()

	replies, err := driver.List(ctx)
	if err != nil {
		return fmt.Errorf("list replies: %w", err)
	}
	if c.limit > 0 && len(replies) > c.limit {
		replies = replies[:c.limit]
	}

	out := cmd.OutOrStdout()

	if c.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(replies)
	}

	if len(replies) == 0 {
		fmt.Fprintln(out, "No replies yet. Start answering mentions with: replybot watch")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REPLIED AT\tSTATUS\tREPLY\tACCOUNT\tTEXT")
	for _, r := range replies {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.RepliedAt.Local().Format(time.DateTime),
			r.StatusID,
			r.ReplyID,
			r.Account,
			utils.Truncate(utils.SingleLine(r.Text), maxTextWidth),
		)
	}
	return w.Flush()
}
