package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/chronolog/internal/cli/formatter"
	"github.com/alexanderramin/chronolog/internal/service"
)

func newTrackCmd(app *App) *cobra.Command {
	var date string
	var sources []string
	var noAnnotate, notify bool

	cmd := &cobra.Command{
		Use:   "track",
		Short: "Collect, reconcile and store activities for a date",
		Long: `Collect activities from all configured sources, merge overlaps,
fill untracked gaps within working hours, categorize with the configured
model and store the result as a batch for review.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Track.Track(context.Background(), service.TrackRequest{
				Date:     date,
				Sources:  sources,
				Annotate: !noAnnotate,
				Notify:   notify,
			})
			if err != nil {
				return err
			}

			fmt.Print(formatter.FormatTrackResult(res))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD) or range (YYYY-MM-DD:YYYY-MM-DD); defaults to yesterday")
	cmd.Flags().StringSliceVar(&sources, "sources", nil, "Restrict collection to these sources")
	cmd.Flags().BoolVar(&noAnnotate, "no-annotate", false, "Skip model categorization")
	cmd.Flags().BoolVar(&notify, "notify", false, "Send a review-ready notification")

	return cmd
}
