package auth

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:     "token",
	Short:   "Print the session bearer token",
	Long:    `Prints the raw bearer token of the current session, for use in scripts.`,
	Example: `  curl -H "Authorization: Bearer $(edugridctl auth token)" http://localhost:3000/api/notice/all`,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := sessionContext(cmd.Context())
		if err != nil {
			return err
		}
		current, err := session.RequireSession()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), current.Token)
		return nil
	},
}
