package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/chronolog/internal/cli/formatter"
)

func newBatchesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batches",
		Short: "Manage stored batches",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Bare "chronolog batches" lists.
			return runBatchesList(app)
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List stored batches",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runBatchesList(app)
			},
		},
		&cobra.Command{
			Use:   "delete <batch-id>",
			Short: "Delete a batch and its intervals",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := app.Batches.Delete(context.Background(), args[0]); err != nil {
					return err
				}
				fmt.Printf("Deleted batch %s\n", args[0])
				return nil
			},
		},
	)

	return cmd
}

func runBatchesList(app *App) error {
	batches, err := app.Batches.List(context.Background())
	if err != nil {
		return err
	}
	fmt.Print(formatter.FormatBatchList(batches))
	return nil
}
