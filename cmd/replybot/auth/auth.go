// Package authcmder provides the auth command for storing instance access
// tokens.
package authcmder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/replybot/pkg/cliui"
	"github.com/papercomputeco/replybot/pkg/credentials"
)

const authLongDesc string = `Store access tokens for Mastodon instances.

Tokens are stored in credentials.toml in the .replybot/ directory, readable
only by you. "replybot watch" and "replybot post" use the token stored for
the configured instance unless --token or REPLYBOT_ACCESS_TOKEN is given.

Create a token under Preferences > Development on your instance, with the
read:notifications and write:statuses scopes.

Examples:
  replybot auth set https://mastodon.social      Prompt for the token
  echo $TOKEN | replybot auth set mastodon.social Pipe the token from stdin
  replybot auth list                             List instances with a token
  replybot auth remove mastodon.social           Remove a stored token`

const authShortDesc string = "Store access tokens for Mastodon instances"

func NewAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: authShortDesc,
		Long:  authLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newRemoveCmd())

	return cmd
}

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <instance>",
		Short: "Store the access token for an instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runSet(cmd, args[0], configDir)
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List instances with a stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runList(cmd, configDir)
		},
	}
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <instance>",
		Short: "Remove the stored token for an instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runRemove(cmd, args[0], configDir)
		},
	}
}

func runSet(cmd *cobra.Command, instance, configDir string) error {
	out := cmd.OutOrStdout()

	token, err := readToken(cmd.InOrStdin(), out, instance)
	if err != nil {
		return err
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("access token cannot be empty")
	}

	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if err := mgr.SetToken(instance, token); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n  %s Stored access token for %s %s\n\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(instance),
		cliui.DimStyle.Render("("+mgr.GetTarget()+")"),
	)
	return nil
}

func runList(cmd *cobra.Command, configDir string) error {
	out := cmd.OutOrStdout()

	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	hosts, err := mgr.ListInstances()
	if err != nil {
		return err
	}

	if len(hosts) == 0 {
		fmt.Fprintf(out, "\n  %s No stored tokens.\n", cliui.DimStyle.Render("●"))
		fmt.Fprintf(out, "  Use 'replybot auth set <instance>' to store one.\n\n")
		return nil
	}

	fmt.Fprintf(out, "\n  %s\n\n", cliui.HeaderStyle.Render("Stored tokens"))
	for _, h := range hosts {
		fmt.Fprintf(out, "  %s  %s\n", cliui.SuccessMark, cliui.KeyStyle.Render(h))
	}
	fmt.Fprintln(out)

	return nil
}

func runRemove(cmd *cobra.Command, instance, configDir string) error {
	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if err := mgr.RemoveToken(instance); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n  %s Removed token for %s.\n\n",
		cliui.SuccessMark, cliui.KeyStyle.Render(instance))

	return nil
}

// readToken reads a token from in. A terminal gets a prompt with hidden
// input; anything else is read up to the first newline.
func readToken(in io.Reader, out io.Writer, instance string) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintf(out, "Enter access token for %s: ", instance)

		tokenBytes, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out) // newline after hidden input
		if err != nil {
			return "", fmt.Errorf("reading access token: %w", err)
		}
		return string(tokenBytes), nil
	}

	scanner := bufio.NewScanner(in)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return "", errors.New("no input received on stdin")
}
