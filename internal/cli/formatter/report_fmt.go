package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/chronolog/internal/domain"
	"github.com/alexanderramin/chronolog/internal/jira"
	"github.com/alexanderramin/chronolog/internal/repository"
	"github.com/alexanderramin/chronolog/internal/service"
	"github.com/alexanderramin/chronolog/internal/timeline"
)

// FormatReport renders a batch report: one section per day with the interval
// table, followed by the day's totals and breakdowns.
func FormatReport(report *service.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n\n", Bold("Batch"), report.Label+Dim(" ("+report.BatchID+")"))

	for _, day := range report.Days {
		b.WriteString(Header(day.Day))
		b.WriteString("\n")
		b.WriteString(formatDayTable(day.Intervals))
		b.WriteString("\n")
		b.WriteString(formatDayStats(day.Stats))
		b.WriteString("\n")
	}

	return b.String()
}

func formatDayTable(intervals []domain.Interval) string {
	headers := []string{"Time", "Source", "Title", "Task Type", "Ticket", "Duration", "Billable"}
	rows := make([][]string, 0, len(intervals))

	for _, iv := range intervals {
		taskType, ticket := Dim("-"), Dim("-")
		billable := Dim("-")
		if iv.Annotation != nil {
			taskType = iv.Annotation.TaskType
			ticket = iv.Annotation.Ticket
			billable = BillableIndicator(iv.Annotation.Billable)
		}

		title := iv.Title
		if iv.Source == domain.SourceTimeGap {
			title = Dim(title)
		}

		rows = append(rows, []string{
			fmt.Sprintf("%s - %s", iv.Start.Format("15:04"), iv.End.Format("15:04")),
			iv.Source,
			title,
			taskType,
			ticket,
			timeline.FormatDuration(iv.Minutes()),
			billable,
		})
	}

	return RenderTable(headers, rows)
}

func formatDayStats(stats domain.DayStats) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s", Bold("Total:"), timeline.FormatDuration(stats.TotalMinutes))
	fmt.Fprintf(&b, "  %s %s\n", Bold("Billable:"), timeline.FormatDuration(stats.BillableMinutes))

	if len(stats.ByTaskType) > 0 {
		b.WriteString("By task type: ")
		b.WriteString(formatBreakdown(stats.ByTaskType))
		b.WriteString("\n")
	}
	if len(stats.ByTicket) > 0 {
		b.WriteString("By ticket:    ")
		b.WriteString(formatBreakdown(stats.ByTicket))
		b.WriteString("\n")
	}

	return b.String()
}

// formatBreakdown renders a minutes-by-key map as "key 1h 5m, key 30m",
// largest first.
func formatBreakdown(minutes map[string]float64) string {
	keys := make([]string, 0, len(minutes))
	for k := range minutes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if minutes[keys[i]] != minutes[keys[j]] {
			return minutes[keys[i]] > minutes[keys[j]]
		}
		return keys[i] < keys[j]
	})

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", k, timeline.FormatDuration(minutes[k])))
	}
	return strings.Join(parts, Dim(", "))
}

// FormatBatchList renders the stored batches, newest first.
func FormatBatchList(batches []repository.BatchInfo) string {
	if len(batches) == 0 {
		return Dim("No batches tracked yet. Run 'chronolog track' first.") + "\n"
	}

	headers := []string{"ID", "Label", "Created", "Intervals"}
	rows := make([][]string, 0, len(batches))
	for _, b := range batches {
		rows = append(rows, []string{
			b.ID,
			b.Label,
			b.CreatedAt.Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", b.IntervalCount),
		})
	}
	return RenderTable(headers, rows)
}

// FormatSubmissionResult renders the outcome of a Jira submission run.
func FormatSubmissionResult(res jira.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s  %s %s  %s %s\n",
		Bold("Submitted:"), StyleGreen.Render(fmt.Sprintf("%d", res.Success)),
		Bold("Errors:"), StyleRed.Render(fmt.Sprintf("%d", res.Errors)),
		Bold("Skipped:"), Dim(fmt.Sprintf("%d", res.Skipped)))

	for _, detail := range res.ErrorDetails {
		fmt.Fprintf(&b, "  %s %s\n", StyleRed.Render("✗"), detail)
	}
	return b.String()
}

// FormatTrackResult summarizes a completed track run.
func FormatTrackResult(res *service.TrackResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s %s\n", Bold("Tracked"), res.Label, Dim("(batch "+res.BatchID+")"))
	fmt.Fprintf(&b, "Intervals: %d, total %s\n", len(res.Intervals), timeline.FormatDuration(res.TotalMinutes))

	names := make([]string, 0, len(res.SourceCounts))
	for name := range res.SourceCounts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "  %s: %d\n", name, res.SourceCounts[name])
	}

	b.WriteString(Dim("Review with 'chronolog review' before submitting to Jira.") + "\n")
	return b.String()
}
