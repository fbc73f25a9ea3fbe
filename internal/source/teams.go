package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexanderramin/chronolog/internal/config"
	"github.com/alexanderramin/chronolog/internal/domain"
)

// chatBurstWindow groups chat messages into one interval when they are
// less than this far apart.
const chatBurstWindow = 5 * time.Minute

// TeamsSource derives chat activity intervals from the Microsoft Graph API.
// Messages in the same chat within chatBurstWindow of each other collapse
// into a single interval; a lone message still counts as one minute.
type TeamsSource struct {
	cfg  config.GraphConfig
	http *http.Client
	log  zerolog.Logger
}

// NewTeamsSource creates a TeamsSource.
func NewTeamsSource(cfg config.GraphConfig, log zerolog.Logger) *TeamsSource {
	return &TeamsSource{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
		log:  log,
	}
}

func (s *TeamsSource) Name() string { return "teams" }

type graphChat struct {
	ID       string `json:"id"`
	Topic    string `json:"topic"`
	ChatType string `json:"chatType"`
}

type graphMessage struct {
	LastModified time.Time `json:"lastModifiedDateTime"`
}

type graphList[T any] struct {
	Value []T `json:"value"`
}

func (s *TeamsSource) Activities(ctx context.Context, start, end time.Time) ([]domain.Interval, error) {
	chats, err := s.listChats(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing chats: %w", err)
	}

	var out []domain.Interval
	for _, chat := range chats {
		messages, err := s.chatMessages(ctx, chat.ID, start, end)
		if err != nil {
			// A single inaccessible chat should not sink the rest.
			s.log.Warn().Err(err).Str("chat_id", chat.ID).Msg("teams messages fetch failed")
			continue
		}
		out = append(out, groupMessages(chat, messages)...)
	}

	out = keepValid(s.log, s.Name(), out)
	s.log.Info().Int("intervals", len(out)).Msg("teams activities collected")
	return out, nil
}

// groupMessages collapses message bursts into intervals.
func groupMessages(chat graphChat, messages []graphMessage) []domain.Interval {
	if len(messages) == 0 {
		return nil
	}

	topic := chat.Topic
	if topic == "" {
		topic = "Chat"
	}

	emit := func(first, last time.Time, count int) domain.Interval {
		end := last
		// A single message still represents some attention.
		if end.Sub(first) < time.Minute {
			end = first.Add(time.Minute)
		}
		return domain.Interval{
			Source: "teams_chat",
			Title:  "Chat in " + topic,
			Start:  first,
			End:    end,
			Raw: map[string]any{
				"chat_id":       chat.ID,
				"chat_type":     chat.ChatType,
				"message_count": count,
			},
		}
	}

	var out []domain.Interval
	first := messages[0].LastModified
	last := first
	count := 1

	for _, msg := range messages[1:] {
		if msg.LastModified.Sub(last) <= chatBurstWindow {
			last = msg.LastModified
			count++
			continue
		}
		out = append(out, emit(first, last, count))
		first, last, count = msg.LastModified, msg.LastModified, 1
	}
	return append(out, emit(first, last, count))
}

func (s *TeamsSource) listChats(ctx context.Context) ([]graphChat, error) {
	var parsed graphList[graphChat]
	if err := s.getJSON(ctx, "/me/chats", &parsed); err != nil {
		return nil, err
	}
	return parsed.Value, nil
}

func (s *TeamsSource) chatMessages(ctx context.Context, chatID string, start, end time.Time) ([]graphMessage, error) {
	q := url.Values{
		"$filter": {fmt.Sprintf("lastModifiedDateTime ge %s and lastModifiedDateTime le %s",
			start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))},
		"$orderby": {"lastModifiedDateTime asc"},
		"$top":     {"50"},
	}

	var parsed graphList[graphMessage]
	path := fmt.Sprintf("/me/chats/%s/messages?%s", url.PathEscape(chatID), q.Encode())
	if err := s.getJSON(ctx, path, &parsed); err != nil {
		return nil, err
	}
	return parsed.Value, nil
}

func (s *TeamsSource) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("graph returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding graph response: %w", err)
	}
	return nil
}
