package auth

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out of the portal",
	Long:  `Clears the stored session. Running it without a session is harmless.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := sessionContext(cmd.Context())
		if err != nil {
			return err
		}

		wasAuthenticated := session.Store.IsAuthenticated()
		session.Store.Logout(cmd.Context())

		if wasAuthenticated {
			pterm.Success.Println("Logged out successfully")
		} else {
			pterm.Info.Println("No active session")
		}
		return nil
	},
}
