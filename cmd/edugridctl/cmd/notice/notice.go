package notice

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/edugrid/portal/cmd/edugridctl/internal/config"
	"github.com/edugrid/portal/pkg/sdk"
)

// NoticeCmd is the parent command for notice operations
var NoticeCmd = &cobra.Command{
	Use:   "notice",
	Short: "Read and publish notices",
}

func init() {
	NoticeCmd.AddCommand(listCmd)
	NoticeCmd.AddCommand(createCmd)
	NoticeCmd.AddCommand(updateCmd)
	NoticeCmd.AddCommand(deleteCmd)
	NoticeCmd.AddCommand(staffCmd)
}

func sdkClient(ctx context.Context) (*sdk.Client, error) {
	return config.Client(ctx)
}
