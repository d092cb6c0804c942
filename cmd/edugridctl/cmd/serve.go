package cmd

import (
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/edugrid/portal/cmd/edugridctl/internal/config"
	"github.com/edugrid/portal/internal/portal"
	"github.com/edugrid/portal/pkg/sdk"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the role-gated portal locally",
	Long: `Serves the portal routes on a local address. Dashboards sit behind the
route gate and are backed by the same session store as the CLI, so logging
in through either one is visible to the other.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := config.From(cmd.Context())
		if err != nil {
			return err
		}

		// Forced logouts surface as redirects in the browser, not CLI warnings.
		rt.Sessions.WithNavigator(sdk.NavigatorFunc(func(path string) {
			pterm.Debug.Printf("session ended, next page load goes to %s\n", path)
		}))
		session, err := rt.Sessions.Session(cmd.Context())
		if err != nil {
			return err
		}

		router, err := portal.NewRouter(portal.RouterOptions{Session: session})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return portal.Serve(ctx, rt.PortalAddr, router, func(addr net.Addr) {
			pterm.Success.Printf("Portal listening on http://%s (API %s)\n", addr, rt.APIBaseURL)
		})
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (env: EDUGRID_PORTAL_ADDR)")
	_ = viper.BindPFlag("portal_addr", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}
