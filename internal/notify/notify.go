// Package notify delivers review and submission summaries to the user.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/chronolog/internal/config"
	"github.com/alexanderramin/chronolog/internal/domain"
	"github.com/alexanderramin/chronolog/internal/jira"
	"github.com/alexanderramin/chronolog/internal/timeline"
)

// Notifier delivers a message through one configured channel.
type Notifier interface {
	Notify(ctx context.Context, subject, message string) error
}

// NopNotifier discards notifications. Used when the notify method is "none".
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string, string) error { return nil }

// New selects a notifier from configuration.
func New(cfg config.NotifyConfig) (Notifier, error) {
	switch cfg.Method {
	case "", "none":
		return NopNotifier{}, nil
	case "webhook":
		if cfg.WebhookURL == "" {
			return nil, fmt.Errorf("notify method %q requires CHRONOLOG_NOTIFY_WEBHOOK_URL", cfg.Method)
		}
		return NewWebhookNotifier(cfg.WebhookURL), nil
	case "email":
		return NewSMTPNotifier(cfg), nil
	default:
		return nil, fmt.Errorf("unknown notify method %q", cfg.Method)
	}
}

// FormatTrackNotification summarizes a reconciled batch awaiting review.
func FormatTrackNotification(dateStr string, intervals []domain.Interval) (subject, message string) {
	var total time.Duration
	for _, iv := range intervals {
		total += iv.Duration()
	}

	subject = "Time tracking ready for review - " + dateStr

	var b strings.Builder
	fmt.Fprintf(&b, "chronolog has reconciled your activities for %s.\n\n", dateStr)
	fmt.Fprintf(&b, "Total time tracked: %s\n", timeline.FormatDuration(total.Minutes()))
	fmt.Fprintf(&b, "Number of intervals: %d\n\n", len(intervals))
	b.WriteString("Review and approve these entries with 'chronolog review' before submitting to Jira.")
	return subject, b.String()
}

// FormatSubmissionNotification summarizes a completed Jira submission.
func FormatSubmissionNotification(dateStr string, res jira.Result, entries []jira.WorklogEntry) (subject, message string) {
	subject = "Time entries submitted to Jira - " + dateStr

	byTicket := make(map[string]time.Duration)
	var order []string
	var total time.Duration
	for _, e := range entries {
		if e.Ticket == "" || e.Ticket == domain.UnknownTicket {
			continue
		}
		if _, seen := byTicket[e.Ticket]; !seen {
			order = append(order, e.Ticket)
		}
		byTicket[e.Ticket] += e.Duration
		total += e.Duration
	}

	var b strings.Builder
	fmt.Fprintf(&b, "chronolog submission summary for %s\n\n", dateStr)
	fmt.Fprintf(&b, "Total time logged: %s\n", timeline.FormatDuration(total.Minutes()))
	fmt.Fprintf(&b, "Submitted: %d, errors: %d, skipped: %d\n\n", res.Success, res.Errors, res.Skipped)

	b.WriteString("Time by issue:\n")
	for _, ticket := range order {
		fmt.Fprintf(&b, "- %s: %s\n", ticket, timeline.FormatDuration(byTicket[ticket].Minutes()))
	}

	if len(res.ErrorDetails) > 0 {
		b.WriteString("\nErrors:\n")
		for _, detail := range res.ErrorDetails {
			fmt.Fprintf(&b, "- %s\n", detail)
		}
	}
	return subject, b.String()
}
