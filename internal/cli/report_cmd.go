package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/chronolog/internal/cli/formatter"
)

func newReportCmd(app *App) *cobra.Command {
	var batchID string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the daily breakdown of a tracked batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := app.Reports.Report(context.Background(), batchID)
			if err != nil {
				return err
			}

			fmt.Print(formatter.FormatReport(report))
			return nil
		},
	}

	cmd.Flags().StringVar(&batchID, "batch", "", "Batch ID; defaults to the most recent batch")

	return cmd
}
