// Package cmd implements the command-line interface for gtplayer.
package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/gtplayer-cli/gtplayer/auth"
	"github.com/gtplayer-cli/gtplayer/icon"
)

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
}

// authCmd manages the optional recommendation API token. Anonymous access
// works fine; a token lifts the server-side rate limits.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the recommendation API token",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store an API token in the system keyring",
	Run: func(cmd *cobra.Command, args []string) {
		var token string
		prompt := &survey.Password{
			Message: "API token:",
		}
		handleErr(survey.AskOne(prompt, &token, survey.WithValidator(survey.Required)))

		handleErr(auth.SetToken(token))
		fmt.Printf("%s Token stored\n", icon.Get(icon.Success))
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the API token from the system keyring",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(auth.DeleteToken())
		fmt.Printf("%s Token removed\n", icon.Get(icon.Success))
	},
}
