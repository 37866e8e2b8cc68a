package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hireloop/hireloop/internal/google"
)

func newAuthCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize a Google account for sending",
		Long: `Run the OAuth2 consent flow for a Google account and cache the resulting
token. The flow prints an authorization URL; open it in a browser, approve the
requested scopes (send mail, read mail metadata, read Drive files) and paste
the authorization code back here.

Requires GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET in the environment or a
local .env file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if google.HasTokenForAccount(account) {
				fmt.Fprintf(cmd.OutOrStdout(), "Account %q is already authorized. Re-running will replace the cached token.\n\n", account)
			}

			url, err := google.GetAuthURLForAccount(account)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Open the following URL in your browser:\n\n  %s\n\nThen paste the authorization code: ", url)

			reader := bufio.NewReader(os.Stdin)
			code, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read authorization code: %w", err)
			}
			code = strings.TrimSpace(code)
			if code == "" {
				return fmt.Errorf("no authorization code provided")
			}

			if err := google.SaveTokenForAccount(cmd.Context(), account, code); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Token saved for account %q.\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to authorize")

	return cmd
}
