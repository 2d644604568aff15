// Package initcmder provides the init command for initializing a local
// .replybot directory in the current working directory.
package initcmder

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/replybot/pkg/cliui"
	"github.com/papercomputeco/replybot/pkg/config"
	"github.com/papercomputeco/replybot/pkg/dotdir"
)

const initLongDesc string = `Initialize a new .replybot/ directory in the current working directory.

Creates a local .replybot/ directory holding a default config.toml. The local
directory takes precedence over the default ~/.replybot/ directory for
configuration, credentials and the SQLite reply ledger.

This is useful for running several bots from separate directories.

Examples:
  replybot init`

const initShortDesc string = "Initialize a local .replybot/ directory"

func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd)
		},
	}

	return cmd
}

func runInit(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	dir, created, err := dotdir.NewManager().InitLocal()
	if err != nil {
		return err
	}
	if !created {
		fmt.Fprintf(out, "Already initialized: %s\n", dir)
		return nil
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if _, err := os.Stat(cfger.GetTarget()); errors.Is(err, os.ErrNotExist) {
		if err := cfger.SaveConfig(config.NewDefaultConfig()); err != nil {
			return fmt.Errorf("writing default config: %w", err)
		}
	}

	fmt.Fprintf(out, "%s Initialized %s directory: %s\n", cliui.SuccessMark, dotdir.DirName, dir)
	return nil
}
