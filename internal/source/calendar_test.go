package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

func calendarTestSource(t *testing.T, eventsJSON string) *CalendarSource {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("singleEvents"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(eventsJSON))
	}))
	t.Cleanup(srv.Close)

	svc, err := calendar.NewService(context.Background(),
		option.WithEndpoint(srv.URL), option.WithoutAuthentication())
	require.NoError(t, err)

	return NewCalendarSourceWithService(svc, "primary", 5*time.Minute, zerolog.Nop())
}

func TestCalendarSource_Activities(t *testing.T) {
	s := calendarTestSource(t, `{"items": [
		{
			"id": "ev1",
			"summary": "Sprint planning",
			"start": {"dateTime": "2024-03-11T09:00:00Z"},
			"end": {"dateTime": "2024-03-11T10:00:00Z"},
			"organizer": {"email": "pat@example.com"},
			"attendees": [{"email": "a@example.com"}, {"email": "b@example.com"}]
		},
		{
			"id": "ev2",
			"summary": "Stand by desk reminder",
			"start": {"dateTime": "2024-03-11T11:00:00Z"},
			"end": {"dateTime": "2024-03-11T11:02:00Z"}
		},
		{
			"id": "ev3",
			"summary": "Company holiday",
			"start": {"date": "2024-03-11"},
			"end": {"date": "2024-03-12"}
		}
	]}`)

	start := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	out, err := s.Activities(context.Background(), start, start.AddDate(0, 0, 1))

	require.NoError(t, err)
	require.Len(t, out, 1, "short events and all-day events are skipped")
	assert.Equal(t, "calendar_event", out[0].Source)
	assert.Equal(t, "Sprint planning", out[0].Title)
	assert.Equal(t, 60.0, out[0].Minutes())
	assert.Equal(t, "pat@example.com", out[0].Raw["organizer"])
	assert.Equal(t, 2, out[0].Raw["attendees"])
}

func TestCalendarSource_UntitledEvent(t *testing.T) {
	s := calendarTestSource(t, `{"items": [{
		"id": "ev1",
		"start": {"dateTime": "2024-03-11T09:00:00Z"},
		"end": {"dateTime": "2024-03-11T10:00:00Z"}
	}]}`)

	start := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	out, err := s.Activities(context.Background(), start, start.AddDate(0, 0, 1))

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Calendar Event", out[0].Title)
}
