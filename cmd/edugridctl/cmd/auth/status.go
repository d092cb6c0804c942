package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/edugrid/portal/cmd/edugridctl/internal/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display authentication status",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := sessionContext(cmd.Context())
		if err != nil {
			return err
		}
		current, err := session.RequireSession()
		if err != nil {
			return err
		}

		rt, err := config.From(cmd.Context())
		if err != nil {
			return err
		}
		pterm.DefaultSection.Println("Authentication Status")

		rows := pterm.TableData{
			{"Name", current.User.Name},
			{"Email", current.User.Email},
			{"Role", string(current.Role())},
			{"Landing route", current.Role().LandingPath()},
			{"API", rt.APIBaseURL},
			{"Session store", rt.Sessions.BackendKind()},
		}
		if exp, ok := tokenExpiry(current.Token); ok {
			rows = append(rows, []string{"Token expires", exp.Local().Format(time.RFC1123)})
			if time.Now().After(exp) {
				pterm.Warning.Println("The stored token has expired; the next request will end the session")
			}
		}
		return pterm.DefaultTable.WithData(rows).Render()
	},
}

// tokenExpiry reads the exp claim of a JWT without verifying it. The portal
// backend is the only party able to verify; this is for display.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
