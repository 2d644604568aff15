package configcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/replybot/pkg/cliui"
	"github.com/papercomputeco/replybot/pkg/config"
	"github.com/papercomputeco/replybot/pkg/credentials"
)

const importLongDesc string = `Import a legacy config.yaml.

Earlier releases read instance_url, api_token and responses from a YAML
file. The instance URL and responses are merged into config.toml and the
token is moved to credentials.toml, which is only readable by you.

Examples:
  replybot config import config.yaml`

const importShortDesc string = "Import a legacy config.yaml"

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: importShortDesc,
		Long:  importLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runImport(cmd, args[0], configDir)
		},
	}

	return cmd
}

func runImport(cmd *cobra.Command, path, configDir string) error {
	legacy, err := config.LoadLegacyConfig(path)
	if err != nil {
		return err
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cfg, err := cfger.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	out := cmd.OutOrStdout()
	printTarget(out, cfger)

	legacy.Apply(cfg)
	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}
	fmt.Fprintf(out, "  %s Imported %s and %d responses\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(cfg.Instance.URL),
		len(cfg.Reply.Responses),
	)

	if legacy.APIToken != "" {
		mgr, err := credentials.NewManager(configDir)
		if err != nil {
			return fmt.Errorf("loading credentials: %w", err)
		}
		if err := mgr.SetToken(cfg.Instance.URL, legacy.APIToken); err != nil {
			return err
		}
		fmt.Fprintf(out, "  %s Stored access token %s\n",
			cliui.SuccessMark,
			cliui.DimStyle.Render("("+mgr.GetTarget()+")"),
		)
	}

	fmt.Fprintln(out)
	return nil
}
