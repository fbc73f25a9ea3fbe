package jira

import (
	"context"
	"time"

	"github.com/alexanderramin/chronolog/internal/domain"
)

// WorklogEntry is one candidate submission derived from an interval.
type WorklogEntry struct {
	Ticket      string
	Description string
	Start       time.Time
	Duration    time.Duration
}

// Result summarizes a submission run.
type Result struct {
	Success      int
	Errors       int
	Skipped      int
	ErrorDetails []string
}

// Worklogger is implemented by Client and by fakes in tests.
type Worklogger interface {
	AddWorklog(ctx context.Context, issueKey string, spent time.Duration, comment string, started time.Time) error
}

// SubmitEntries logs each entry to its ticket. Entries without a resolvable
// ticket or shorter than a minute are skipped, never errors; a failed
// submission is recorded and the run continues.
func SubmitEntries(ctx context.Context, w Worklogger, entries []WorklogEntry) Result {
	var res Result

	for _, e := range entries {
		if e.Ticket == "" || e.Ticket == domain.UnknownTicket {
			res.Skipped++
			continue
		}
		if e.Duration < time.Minute {
			res.Skipped++
			continue
		}

		comment := e.Description
		if comment == "" {
			comment = "Work logged by chronolog"
		}

		if err := w.AddWorklog(ctx, e.Ticket, e.Duration, comment, e.Start); err != nil {
			res.Errors++
			res.ErrorDetails = append(res.ErrorDetails, e.Ticket+": "+err.Error())
			continue
		}
		res.Success++
	}

	return res
}
