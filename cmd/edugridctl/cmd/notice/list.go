package notice

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/edugrid/portal/cmd/edugridctl/internal/config"
	"github.com/edugrid/portal/pkg/sdk"
)

var listAudience string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notices",
	Long: `Lists the notice feed. Without --audience the feed shown on the current
role's dashboard is used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := sdkClient(ctx)
		if err != nil {
			return err
		}

		audience := sdk.NoticeAudience(listAudience)
		if audience == "" {
			sc, err := config.Session(ctx)
			if err != nil {
				return err
			}
			audience = sdk.NoticeFeedFor(sc.Store.Snapshot().Role())
		}

		notices, err := client.ListNotices(ctx, audience)
		if err != nil {
			return err
		}
		if len(notices) == 0 {
			pterm.Info.Printf("No %s notices\n", audience)
			return nil
		}
		return pterm.DefaultTable.WithHasHeader().WithData(noticeRows(notices)).Render()
	},
}

func noticeRows(notices []sdk.Notice) pterm.TableData {
	rows := pterm.TableData{{"ID", "Title", "Audience", "Posted", "Message"}}
	for _, n := range notices {
		posted := ""
		if !n.CreatedAt.IsZero() {
			posted = n.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{n.ID, n.Title, n.Audience, posted, n.Message})
	}
	return rows
}

func init() {
	listCmd.Flags().StringVar(&listAudience, "audience", "", "Feed to list: all, student or teacher")
}
