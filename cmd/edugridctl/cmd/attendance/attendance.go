package attendance

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/edugrid/portal/cmd/edugridctl/internal/config"
	"github.com/edugrid/portal/pkg/sdk"
)

// AttendanceCmd is the parent command for attendance operations
var AttendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Mark attendance, manage PDF receipts and review your own record",
}

func init() {
	AttendanceCmd.AddCommand(submitCmd)
	AttendanceCmd.AddCommand(pdfsCmd)
	AttendanceCmd.AddCommand(fetchCmd)
	AttendanceCmd.AddCommand(mineCmd)
}

func sdkClient(ctx context.Context) (*sdk.Client, error) {
	return config.Client(ctx)
}

func writePDF(path string, pdf []byte) error {
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
