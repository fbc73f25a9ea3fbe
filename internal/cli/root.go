package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/alexanderramin/chronolog/internal/repository"
	"github.com/alexanderramin/chronolog/internal/service"
)

// SourceStatus describes one activity source for the sources command.
type SourceStatus struct {
	Name   string
	Ready  bool
	Detail string
}

// App holds the service interfaces used by CLI commands.
type App struct {
	Track   service.TrackService
	Reports service.ReportService
	Submit  service.SubmitService
	Batches repository.BatchRepo
	Sources []SourceStatus
}

// NewRootCmd creates the top-level "chronolog" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "chronolog",
		Short: "Automated time tracking from calendars, git and chat",
	}

	// Accept underscores in flag names (--no_annotate works like --no-annotate).
	root.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	root.AddCommand(
		newTrackCmd(app),
		newReportCmd(app),
		newBatchesCmd(app),
		newReviewCmd(app),
		newSourcesCmd(app),
	)

	return root
}
