package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/alexanderramin/chronolog/internal/config"
	"github.com/alexanderramin/chronolog/internal/domain"
)

// CalendarSource derives meeting intervals from Google Calendar events.
// Events shorter than minActivity (reminders, all-day markers collapsed to
// instants) are skipped.
type CalendarSource struct {
	srv         *calendar.Service
	calendarID  string
	minActivity time.Duration
	log         zerolog.Logger
}

// NewCalendarSource builds a calendar.Service from the stored OAuth
// credentials and token. The token must already exist; chronolog does not
// run the consent flow itself.
func NewCalendarSource(ctx context.Context, cfg config.GoogleConfig, minActivity time.Duration, log zerolog.Logger) (*CalendarSource, error) {
	creds, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading google credentials: %w", err)
	}

	oauthCfg, err := google.ConfigFromJSON(creds, calendar.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parsing google credentials: %w", err)
	}

	token, err := loadToken(cfg.TokenFile)
	if err != nil {
		return nil, err
	}

	srv, err := calendar.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}

	return NewCalendarSourceWithService(srv, cfg.CalendarID, minActivity, log), nil
}

// NewCalendarSourceWithService wraps an existing calendar service. Used by
// tests and by callers that manage OAuth themselves.
func NewCalendarSourceWithService(srv *calendar.Service, calendarID string, minActivity time.Duration, log zerolog.Logger) *CalendarSource {
	if calendarID == "" {
		calendarID = "primary"
	}
	return &CalendarSource{
		srv:         srv,
		calendarID:  calendarID,
		minActivity: minActivity,
		log:         log,
	}
}

func (s *CalendarSource) Name() string { return "calendar" }

func (s *CalendarSource) Activities(ctx context.Context, start, end time.Time) ([]domain.Interval, error) {
	events, err := s.srv.Events.List(s.calendarID).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("listing calendar events: %w", err)
	}

	var out []domain.Interval
	for _, ev := range events.Items {
		// All-day events carry only a date; they say nothing about how the
		// hours were spent.
		if ev.Start == nil || ev.Start.DateTime == "" || ev.End == nil || ev.End.DateTime == "" {
			continue
		}

		evStart, err := time.Parse(time.RFC3339, ev.Start.DateTime)
		if err != nil {
			s.log.Warn().Err(err).Str("event_id", ev.Id).Msg("unparseable event start")
			continue
		}
		evEnd, err := time.Parse(time.RFC3339, ev.End.DateTime)
		if err != nil {
			s.log.Warn().Err(err).Str("event_id", ev.Id).Msg("unparseable event end")
			continue
		}

		if evEnd.Sub(evStart) < s.minActivity {
			continue
		}

		title := ev.Summary
		if title == "" {
			title = "Calendar Event"
		}

		raw := map[string]any{
			"event_id":  ev.Id,
			"attendees": len(ev.Attendees),
		}
		if ev.Organizer != nil {
			raw["organizer"] = ev.Organizer.Email
		}

		out = append(out, domain.Interval{
			Source: "calendar_event",
			Title:  title,
			Start:  evStart,
			End:    evEnd,
			Raw:    raw,
		})
	}

	out = keepValid(s.log, s.Name(), out)
	s.log.Info().Int("intervals", len(out)).Msg("calendar activities collected")
	return out, nil
}

func loadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading google token (run the consent flow first): %w", err)
	}
	defer f.Close()

	var token oauth2.Token
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, fmt.Errorf("decoding google token: %w", err)
	}
	return &token, nil
}
