package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/chronolog/internal/cli/formatter"
)

func newSourcesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "Show configured activity sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(app.Sources))
			for _, s := range app.Sources {
				state := formatter.StyleGreen.Render("ready")
				if !s.Ready {
					state = formatter.StyleRed.Render("not configured")
				}
				rows = append(rows, []string{s.Name, state, formatter.Dim(s.Detail)})
			}
			fmt.Print(formatter.RenderTable([]string{"Source", "Status", "Detail"}, rows))
			return nil
		},
	}
}
