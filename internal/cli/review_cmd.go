package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/chronolog/internal/cli/formatter"
)

func chronologHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

func newReviewCmd(app *App) *cobra.Command {
	var batchID string

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review tracked activities and submit worklogs to Jira",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
				return fmt.Errorf("review needs an interactive terminal")
			}

			ctx := cmd.Context()

			entries, skipped, err := app.Submit.BuildEntries(ctx, batchID)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				cmd.Println("Nothing to submit.")
				for _, s := range skipped {
					cmd.Println(formatter.Dim(fmt.Sprintf("  - %s (%s)", s.Title, s.Reason)))
				}
				return nil
			}

			prog := tea.NewProgram(newReviewModel(entries, skipped))
			final, err := prog.Run()
			if err != nil {
				return fmt.Errorf("review failed: %w", err)
			}

			m, ok := final.(reviewModel)
			if !ok || m.aborted || !m.confirmed {
				cmd.Println("Aborted. Nothing submitted.")
				return nil
			}

			selected := m.approvedEntries()
			if len(selected) == 0 {
				cmd.Println("No entries selected. Nothing submitted.")
				return nil
			}

			confirmed := false
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().
						Title(fmt.Sprintf("Submit %d worklog entries to Jira?", len(selected))).
						Affirmative("Submit").
						Negative("Cancel").
						Value(&confirmed),
				),
			).WithTheme(chronologHuhTheme()).WithShowHelp(false)
			if err := form.Run(); err != nil {
				return fmt.Errorf("confirmation failed: %w", err)
			}
			if !confirmed {
				cmd.Println("Cancelled. Nothing submitted.")
				return nil
			}

			res, err := app.Submit.Submit(ctx, selected)
			if err != nil {
				return err
			}
			cmd.Print(formatter.FormatSubmissionResult(res))
			return nil
		},
	}

	cmd.Flags().StringVar(&batchID, "batch", "", "batch to review (defaults to the most recent)")
	return cmd
}
