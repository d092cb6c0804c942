package nav

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/edugrid/portal/cmd/edugridctl/internal/config"
	"github.com/edugrid/portal/pkg/sdk"
)

var navRole string

// NavCmd evaluates the route gate for a portal path.
var NavCmd = &cobra.Command{
	Use:   "nav <path>",
	Short: "Check where the portal would send you for a path",
	Long: `Evaluates the portal route gate for a path against the current session
and prints whether the content renders or where the portal redirects.
Use --as to check a role without logging in as it.`,
	Example: `  edugridctl nav /teacher/attendance/pdfs
  edugridctl nav /director/dashboard --as student`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gate, err := sdk.NewGate(sdk.DefaultRoutes())
		if err != nil {
			return err
		}

		var session sdk.Session
		if navRole != "" {
			role, err := sdk.ParseRole(navRole)
			if err != nil {
				return err
			}
			session = sdk.Session{Token: "simulated", User: &sdk.User{Role: role}}
		} else {
			sc, err := config.Session(cmd.Context())
			if err != nil {
				return err
			}
			session = sc.Store.Snapshot()
		}

		decision := gate.Evaluate(session, args[0])
		line := describe(args[0], decision)
		if decision.Allowed() {
			pterm.Success.Println(line)
		} else {
			pterm.Warning.Println(line)
		}
		return nil
	},
}

func describe(path string, d sdk.Decision) string {
	switch d.State {
	case sdk.GatePublic:
		return fmt.Sprintf("%s is public", path)
	case sdk.GateAuthorized:
		return fmt.Sprintf("%s renders for the current role", path)
	case sdk.GateUnauthenticated:
		return fmt.Sprintf("%s requires login; redirecting to %s", path, d.Redirect)
	default:
		return fmt.Sprintf("%s is not allowed for this role; redirecting to %s", path, d.Redirect)
	}
}

func init() {
	NavCmd.Flags().StringVar(&navRole, "as", "", "Evaluate as this role instead of the stored session")
}
