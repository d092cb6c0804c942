package attendance

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var fetchOut string

var pdfsCmd = &cobra.Command{
	Use:   "pdfs",
	Short: "List stored attendance receipts",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := sdkClient(cmd.Context())
		if err != nil {
			return err
		}
		records, err := client.ListAttendancePDFs(cmd.Context())
		if err != nil {
			return err
		}
		if len(records) == 0 {
			pterm.Info.Println("No stored receipts")
			return nil
		}

		rows := pterm.TableData{{"ID", "Subject", "Date"}}
		for _, r := range records {
			rows = append(rows, []string{r.ID, r.SubjectName, r.Date})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <id>",
	Short: "Download a stored attendance receipt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := sdkClient(cmd.Context())
		if err != nil {
			return err
		}
		pdf, err := client.FetchAttendancePDF(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := fetchOut
		if out == "" {
			out = "attendance-" + args[0] + ".pdf"
		}
		if err := writePDF(out, pdf); err != nil {
			return err
		}
		pterm.Success.Printf("Saved %s (%d bytes)\n", out, len(pdf))
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchOut, "out", "o", "", "Output file (default attendance-<id>.pdf)")
}
