package source

import (
	"context"
	"encoding/base64"
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

// WakaTimeSource derives coding intervals from the WakaTime durations API.
// Durations shorter than minActivity are noise (editor focus flickers) and
// are skipped.
type WakaTimeSource struct {
	cfg         config.WakaTimeConfig
	minActivity time.Duration
	http        *http.Client
	log         zerolog.Logger
}

// NewWakaTimeSource creates a WakaTimeSource.
func NewWakaTimeSource(cfg config.WakaTimeConfig, minActivity time.Duration, log zerolog.Logger) *WakaTimeSource {
	return &WakaTimeSource{
		cfg:         cfg,
		minActivity: minActivity,
		http:        &http.Client{Timeout: 15 * time.Second},
		log:         log,
	}
}

func (s *WakaTimeSource) Name() string { return "wakatime" }

// wakaDuration is one element of GET /users/current/durations. Time is a
// unix epoch with fractional seconds.
type wakaDuration struct {
	Time     float64 `json:"time"`
	Duration float64 `json:"duration"`
	Project  string  `json:"project"`
	Language string  `json:"language"`
}

type wakaDurationsResponse struct {
	Data []wakaDuration `json:"data"`
}

func (s *WakaTimeSource) Activities(ctx context.Context, start, end time.Time) ([]domain.Interval, error) {
	var out []domain.Interval

	// The durations endpoint is per-day, so walk each calendar day in range.
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		durations, err := s.durationsForDay(ctx, day)
		if err != nil {
			return nil, fmt.Errorf("wakatime durations for %s: %w", day.Format("2006-01-02"), err)
		}

		for _, d := range durations {
			span := time.Duration(d.Duration * float64(time.Second))
			if span < s.minActivity {
				continue
			}

			sec := int64(d.Time)
			nsec := int64((d.Time - float64(sec)) * float64(time.Second))
			blockStart := time.Unix(sec, nsec).In(start.Location())

			project := d.Project
			if project == "" {
				project = "Unknown Project"
			}

			out = append(out, domain.Interval{
				Source: "wakatime_duration",
				Title:  "Coding: " + project,
				Start:  blockStart,
				End:    blockStart.Add(span),
				Raw: map[string]any{
					"project":  project,
					"language": d.Language,
				},
			})
		}
	}

	out = keepValid(s.log, s.Name(), out)
	s.log.Info().Int("intervals", len(out)).Msg("wakatime activities collected")
	return out, nil
}

func (s *WakaTimeSource) durationsForDay(ctx context.Context, day time.Time) ([]wakaDuration, error) {
	q := url.Values{"date": {day.Format("2006-01-02")}}
	reqURL := s.cfg.BaseURL + "/users/current/durations?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(s.cfg.APIKey)))

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("wakatime returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed wakaDurationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding wakatime response: %w", err)
	}
	return parsed.Data, nil
}
