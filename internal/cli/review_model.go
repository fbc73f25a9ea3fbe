package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexanderramin/chronolog/internal/cli/formatter"
	"github.com/alexanderramin/chronolog/internal/jira"
	"github.com/alexanderramin/chronolog/internal/service"
	"github.com/alexanderramin/chronolog/internal/timeline"
)

// reviewModel lets the user pick which worklog entries to submit. Every
// entry starts approved; space toggles the one under the cursor.
type reviewModel struct {
	entries  []jira.WorklogEntry
	approved []bool
	skipped  []service.SkippedEntry
	cursor   int

	confirmed bool
	aborted   bool
}

func newReviewModel(entries []jira.WorklogEntry, skipped []service.SkippedEntry) reviewModel {
	approved := make([]bool, len(entries))
	for i := range approved {
		approved[i] = true
	}
	return reviewModel{entries: entries, approved: approved, skipped: skipped}
}

func (m reviewModel) shortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "move")),
		key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "toggle all")),
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "continue")),
		key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "abort")),
	}
}

func (m reviewModel) Init() tea.Cmd { return nil }

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case " ", "space":
		if len(m.entries) > 0 {
			m.approved[m.cursor] = !m.approved[m.cursor]
		}
	case "a":
		all := m.allApproved()
		for i := range m.approved {
			m.approved[i] = !all
		}
	case "enter":
		m.confirmed = true
		return m, tea.Quit
	case "q", "esc", "ctrl+c":
		m.aborted = true
		return m, tea.Quit
	}

	return m, nil
}

func (m reviewModel) View() string {
	var b strings.Builder

	b.WriteString(formatter.Header("Review worklog entries"))
	b.WriteString("\n")

	for i, e := range m.entries {
		cursor := "  "
		if i == m.cursor {
			cursor = formatter.StyleHeader.Render("> ")
		}

		check := formatter.StyleGreen.Render("[x]")
		if !m.approved[i] {
			check = formatter.Dim("[ ]")
		}

		line := fmt.Sprintf("%s %s %s %s", e.Ticket,
			e.Start.Format("2006-01-02 15:04"),
			timeline.FormatDuration(e.Duration.Minutes()),
			e.Description)
		if !m.approved[i] {
			line = formatter.Dim(line)
		}

		fmt.Fprintf(&b, "%s%s %s\n", cursor, check, line)
	}

	if len(m.skipped) > 0 {
		b.WriteString("\n" + formatter.Dim("Excluded automatically:") + "\n")
		for _, s := range m.skipped {
			b.WriteString(formatter.Dim(fmt.Sprintf("  - %s (%s)", s.Title, s.Reason)) + "\n")
		}
	}

	b.WriteString("\n")
	var help []string
	for _, binding := range m.shortHelp() {
		help = append(help, binding.Help().Key+" "+binding.Help().Desc)
	}
	b.WriteString(formatter.Dim(strings.Join(help, "  ")) + "\n")

	return b.String()
}

func (m reviewModel) allApproved() bool {
	for _, a := range m.approved {
		if !a {
			return false
		}
	}
	return true
}

// approvedEntries returns the entries still selected after review.
func (m reviewModel) approvedEntries() []jira.WorklogEntry {
	var out []jira.WorklogEntry
	for i, e := range m.entries {
		if m.approved[i] {
			out = append(out, e)
		}
	}
	return out
}
