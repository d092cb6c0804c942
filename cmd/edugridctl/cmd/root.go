package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/edugrid/portal/cmd/edugridctl/cmd/academics"
	"github.com/edugrid/portal/cmd/edugridctl/cmd/assignment"
	"github.com/edugrid/portal/cmd/edugridctl/cmd/attendance"
	"github.com/edugrid/portal/cmd/edugridctl/cmd/auth"
	"github.com/edugrid/portal/cmd/edugridctl/cmd/nav"
	"github.com/edugrid/portal/cmd/edugridctl/cmd/notice"
	"github.com/edugrid/portal/cmd/edugridctl/internal/config"
	appconfig "github.com/edugrid/portal/internal/config"
)

var (
	configFile string
	invocation *config.Runtime
)

var rootCmd = &cobra.Command{
	Use:   "edugridctl",
	Short: "edugrid CLI - academic portal client",
	Long: `edugridctl is the command-line client for the edugrid academic portal.
It logs in as a student, teacher, department admin or director, keeps the
session in a durable store, and calls the portal API on that session's behalf.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := appconfig.LoadDotEnv(); err != nil {
			return err
		}
		if configFile != "" {
			viper.SetConfigFile(configFile)
			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("failed to read config file: %w", err)
			}
		}

		cfg, err := appconfig.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if cfg.Debug {
			log.SetOutput(os.Stderr)
			pterm.EnableDebugMessages()
		} else {
			log.SetOutput(io.Discard)
		}

		invocation = config.NewRuntime(*cfg)
		cmd.SetContext(config.WithRuntime(cmd.Context(), invocation))
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

// run executes one invocation and releases its session store whether or not
// the command succeeded.
func run(ctx context.Context, args []string) error {
	invocation = nil
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if invocation != nil {
		if cerr := invocation.Sessions.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close session store: %w", cerr)
		}
	}
	return err
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (yaml, json or toml)")
	flags.String("api", "", "Portal API base URL (env: EDUGRID_API_BASE_URL)")
	flags.String("session-dsn", "", "Session store DSN: dir:<path>, mem:, sqlite path, postgres:// or redis:// (env: EDUGRID_SESSION_DSN)")
	flags.Bool("non-interactive", false, "Disable interactive prompts (env: EDUGRID_NON_INTERACTIVE)")
	flags.Bool("debug", false, "Enable debug logging (env: EDUGRID_DEBUG)")

	_ = viper.BindPFlag("api_base_url", flags.Lookup("api"))
	_ = viper.BindPFlag("session_dsn", flags.Lookup("session-dsn"))
	_ = viper.BindPFlag("non_interactive", flags.Lookup("non-interactive"))
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))

	rootCmd.AddCommand(auth.AuthCmd)
	rootCmd.AddCommand(nav.NavCmd)
	rootCmd.AddCommand(notice.NoticeCmd)
	rootCmd.AddCommand(attendance.AttendanceCmd)
	rootCmd.AddCommand(academics.SemesterCmd)
	rootCmd.AddCommand(academics.SubjectCmd)
	rootCmd.AddCommand(academics.ScheduleCmd)
	rootCmd.AddCommand(academics.ExamCmd)
	rootCmd.AddCommand(assignment.AssignmentCmd)
}
