package auth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/edugrid/portal/cmd/edugridctl/internal/config"
	"github.com/edugrid/portal/pkg/sdk"
)

var (
	loginRole          string
	loginEmail         string
	loginPassword      string
	loginPasswordStdin bool
)

// prompter asks the user for missing login fields.
type prompter interface {
	Select(label string, options []string) (string, error)
	Text(label string) (string, error)
	Secret(label string) (string, error)
}

type ptermPrompter struct{}

func (ptermPrompter) Select(label string, options []string) (string, error) {
	return pterm.DefaultInteractiveSelect.WithOptions(options).Show(label)
}

func (ptermPrompter) Text(label string) (string, error) {
	return pterm.DefaultInteractiveTextInput.Show(label)
}

func (ptermPrompter) Secret(label string) (string, error) {
	return pterm.DefaultInteractiveTextInput.WithMask("*").Show(label)
}

type loginInput struct {
	Role          string
	Email         string
	Password      string
	PasswordStdin bool
}

// resolveLoginInput fills missing fields from stdin or prompts. Without a
// terminal every field must be supplied up front.
func resolveLoginInput(in loginInput, nonInteractive bool, stdin io.Reader, p prompter) (*sdk.LoginRequest, error) {
	var err error

	if in.Role == "" {
		if nonInteractive {
			return nil, errors.New("--role is required in non-interactive mode")
		}
		options := make([]string, 0, len(sdk.Roles))
		for _, r := range sdk.Roles {
			options = append(options, string(r))
		}
		sort.Strings(options)
		if in.Role, err = p.Select("Log in as", options); err != nil {
			return nil, fmt.Errorf("read role: %w", err)
		}
	}

	if in.Email == "" {
		if nonInteractive {
			return nil, errors.New("--email is required in non-interactive mode")
		}
		if in.Email, err = p.Text("Email"); err != nil {
			return nil, fmt.Errorf("read email: %w", err)
		}
	}

	switch {
	case in.PasswordStdin:
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read password from stdin: %w", err)
		}
		in.Password = strings.TrimRight(line, "\r\n")
	case in.Password == "":
		if nonInteractive {
			return nil, errors.New("--password or --password-stdin is required in non-interactive mode")
		}
		if in.Password, err = p.Secret("Password"); err != nil {
			return nil, fmt.Errorf("read password: %w", err)
		}
	}

	role, err := sdk.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	return &sdk.LoginRequest{
		Role:     role,
		Email:    strings.TrimSpace(in.Email),
		Password: []byte(in.Password),
	}, nil
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the portal",
	Long: `Exchanges an email and password for a session token at the role's login
endpoint and stores the session. Missing fields are prompted for unless
--non-interactive is set.`,
	Example: `  edugridctl auth login --role teacher --email t@school.edu
  echo "$PASS" | edugridctl auth login --role director --email d@school.edu --password-stdin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := config.From(cmd.Context())
		if err != nil {
			return err
		}

		req, err := resolveLoginInput(loginInput{
			Role:          loginRole,
			Email:         loginEmail,
			Password:      loginPassword,
			PasswordStdin: loginPasswordStdin,
		}, rt.NonInteractive, os.Stdin, ptermPrompter{})
		loginPassword = ""
		if err != nil {
			return err
		}

		session, err := sessionContext(cmd.Context())
		if err != nil {
			return err
		}

		result, err := session.Exchange.Login(cmd.Context(), req)
		if err != nil {
			var (
				loginErr *sdk.LoginError
				verr     *sdk.ValidationError
			)
			switch {
			case errors.As(err, &verr):
				for field, msg := range verr.Fields {
					pterm.Error.Printf("%s: %s\n", field, msg)
				}
				return errors.New("login input rejected")
			case errors.As(err, &loginErr):
				pterm.Error.Println(loginErr.Message)
				return errors.New("login failed")
			}
			return err
		}

		pterm.Success.Printf("Logged in as %s (%s)\n", displayName(result.User), result.Role)
		pterm.Info.Printf("Landing route: %s\n", result.Landing)
		return nil
	},
}

func displayName(u sdk.User) string {
	switch {
	case u.Name != "":
		return u.Name
	case u.Email != "":
		return u.Email
	default:
		return u.ID
	}
}

func init() {
	loginCmd.Flags().StringVar(&loginRole, "role", "", "Role to log in as: student, teacher, department or director")
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (prefer --password-stdin or the prompt)")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "Read the password from the first line of stdin")
}
