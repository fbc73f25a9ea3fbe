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

const (
	githubBaseURLDefault = "https://api.github.com"
	githubUserAgent      = "chronolog"
	githubMaxRetries     = 3
	githubRetryBase      = 500 * time.Millisecond

	// Effort estimates applied when the upstream event carries only
	// an instant, not a span.
	commitEffort       = 15 * time.Minute
	prCreatedEffort    = 30 * time.Minute
	prUpdatedEffort    = 15 * time.Minute
	prReviewEffort     = 20 * time.Minute
	issueCreatedEffort = 20 * time.Minute
	issueClosedEffort  = 10 * time.Minute
	issueCommentEffort = 5 * time.Minute
)

// GitHubSource derives activity intervals from commits, pull requests and
// issues in the configured repositories. GitHub records instants, so each
// event is expanded backwards by a fixed effort estimate.
type GitHubSource struct {
	cfg     config.GitHubConfig
	baseURL string
	http    *http.Client
	log     zerolog.Logger
	sleep   func(time.Duration)
}

// NewGitHubSource creates a GitHubSource. baseURL is overridable for tests;
// pass "" for the public API.
func NewGitHubSource(cfg config.GitHubConfig, baseURL string, log zerolog.Logger) *GitHubSource {
	if baseURL == "" {
		baseURL = githubBaseURLDefault
	}
	return &GitHubSource{
		cfg:     cfg,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     log,
		sleep:   time.Sleep,
	}
}

func (s *GitHubSource) Name() string { return "github" }

type ghCommit struct {
	SHA    string `json:"sha"`
	URL    string `json:"html_url"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Date time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}

type ghPull struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	State     string     `json:"state"`
	URL       string     `json:"html_url"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ClosedAt  *time.Time `json:"closed_at"`
	User      struct {
		Login string `json:"login"`
	} `json:"user"`
}

type ghReview struct {
	State       string    `json:"state"`
	URL         string    `json:"html_url"`
	SubmittedAt time.Time `json:"submitted_at"`
	User        struct {
		Login string `json:"login"`
	} `json:"user"`
}

type ghIssue struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	State     string     `json:"state"`
	URL       string     `json:"html_url"`
	Comments  int        `json:"comments"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ClosedAt  *time.Time `json:"closed_at"`
	User      struct {
		Login string `json:"login"`
	} `json:"user"`
	// Present when the "issue" is actually a pull request.
	PullRequest *struct{} `json:"pull_request"`
}

type ghComment struct {
	Body      string    `json:"body"`
	URL       string    `json:"html_url"`
	CreatedAt time.Time `json:"created_at"`
	User      struct {
		Login string `json:"login"`
	} `json:"user"`
}

func (s *GitHubSource) Activities(ctx context.Context, start, end time.Time) ([]domain.Interval, error) {
	var out []domain.Interval

	for _, repo := range s.cfg.Repos {
		commits, err := s.commits(ctx, repo, start, end)
		if err != nil {
			// One repo failing should not sink the rest.
			s.log.Warn().Err(err).Str("repo", repo).Msg("github commits fetch failed")
		} else {
			out = append(out, commits...)
		}

		prs, err := s.pulls(ctx, repo, start, end)
		if err != nil {
			s.log.Warn().Err(err).Str("repo", repo).Msg("github pulls fetch failed")
		} else {
			out = append(out, prs...)
		}

		issues, err := s.issues(ctx, repo, start, end)
		if err != nil {
			s.log.Warn().Err(err).Str("repo", repo).Msg("github issues fetch failed")
		} else {
			out = append(out, issues...)
		}
	}

	out = keepValid(s.log, s.Name(), out)
	s.log.Info().Int("intervals", len(out)).Msg("github activities collected")
	return out, nil
}

func (s *GitHubSource) commits(ctx context.Context, repo string, start, end time.Time) ([]domain.Interval, error) {
	q := url.Values{
		"since":    {start.UTC().Format(time.RFC3339)},
		"until":    {end.UTC().Format(time.RFC3339)},
		"per_page": {"100"},
	}
	if s.cfg.User != "" {
		q.Set("author", s.cfg.User)
	}

	var commits []ghCommit
	path := fmt.Sprintf("/repos/%s/commits?%s", repo, q.Encode())
	if err := s.getJSON(ctx, path, &commits); err != nil {
		return nil, err
	}

	intervals := make([]domain.Interval, 0, len(commits))
	for _, c := range commits {
		when := c.Commit.Author.Date
		intervals = append(intervals, domain.Interval{
			Source: "github_commit",
			Title:  "Commit: " + truncate(c.Commit.Message, 50),
			Start:  when.Add(-commitEffort),
			End:    when,
			Raw: map[string]any{
				"repository": repo,
				"sha":        c.SHA,
				"message":    c.Commit.Message,
				"url":        c.URL,
			},
		})
	}
	return intervals, nil
}

// pulls derives creation (30m), update (15m) and review (20m) intervals from
// the repo's pull requests.
func (s *GitHubSource) pulls(ctx context.Context, repo string, start, end time.Time) ([]domain.Interval, error) {
	var pulls []ghPull
	path := fmt.Sprintf("/repos/%s/pulls?state=all&sort=updated&direction=desc&per_page=100", repo)
	if err := s.getJSON(ctx, path, &pulls); err != nil {
		return nil, err
	}

	var intervals []domain.Interval
	for _, pr := range pulls {
		raw := map[string]any{
			"repository": repo,
			"number":     pr.Number,
			"title":      pr.Title,
			"state":      pr.State,
			"url":        pr.URL,
		}
		authored := s.cfg.User == "" || pr.User.Login == s.cfg.User

		if authored && within(pr.CreatedAt, start, end) {
			intervals = append(intervals, domain.Interval{
				Source: "github_pr_created",
				Title:  "Created PR: " + truncate(pr.Title, 50),
				Start:  pr.CreatedAt.Add(-prCreatedEffort),
				End:    pr.CreatedAt,
				Raw:    raw,
			})
		}

		// An update coinciding with creation or closing is that event,
		// not a separate edit.
		if authored && within(pr.UpdatedAt, start, end) &&
			!pr.UpdatedAt.Equal(pr.CreatedAt) &&
			(pr.ClosedAt == nil || !pr.UpdatedAt.Equal(*pr.ClosedAt)) {
			intervals = append(intervals, domain.Interval{
				Source: "github_pr_updated",
				Title:  "Updated PR: " + truncate(pr.Title, 50),
				Start:  pr.UpdatedAt.Add(-prUpdatedEffort),
				End:    pr.UpdatedAt,
				Raw:    raw,
			})
		}

		// A review inside the window bumps updated_at, so stale PRs
		// cannot carry one and the extra request is skipped.
		if pr.UpdatedAt.Before(start) {
			continue
		}
		reviews, err := s.reviews(ctx, repo, pr, start, end)
		if err != nil {
			s.log.Warn().Err(err).Str("repo", repo).Int("pr", pr.Number).
				Msg("github reviews fetch failed")
			continue
		}
		intervals = append(intervals, reviews...)
	}
	return intervals, nil
}

func (s *GitHubSource) reviews(ctx context.Context, repo string, pr ghPull, start, end time.Time) ([]domain.Interval, error) {
	var reviews []ghReview
	path := fmt.Sprintf("/repos/%s/pulls/%d/reviews?per_page=100", repo, pr.Number)
	if err := s.getJSON(ctx, path, &reviews); err != nil {
		return nil, err
	}

	var intervals []domain.Interval
	for _, rev := range reviews {
		if s.cfg.User != "" && rev.User.Login != s.cfg.User {
			continue
		}
		if !within(rev.SubmittedAt, start, end) {
			continue
		}
		intervals = append(intervals, domain.Interval{
			Source: "github_pr_review",
			Title:  "Reviewed PR: " + truncate(pr.Title, 50),
			Start:  rev.SubmittedAt.Add(-prReviewEffort),
			End:    rev.SubmittedAt,
			Raw: map[string]any{
				"repository":   repo,
				"pr_number":    pr.Number,
				"pr_title":     pr.Title,
				"review_state": rev.State,
				"url":          rev.URL,
			},
		})
	}
	return intervals, nil
}

// issues derives creation (20m), closing (10m) and comment (5m) intervals
// from issues assigned to the configured user.
func (s *GitHubSource) issues(ctx context.Context, repo string, start, end time.Time) ([]domain.Interval, error) {
	q := url.Values{
		"state":    {"all"},
		"since":    {start.UTC().Format(time.RFC3339)},
		"per_page": {"100"},
	}
	if s.cfg.User != "" {
		q.Set("assignee", s.cfg.User)
	}

	var issues []ghIssue
	path := fmt.Sprintf("/repos/%s/issues?%s", repo, q.Encode())
	if err := s.getJSON(ctx, path, &issues); err != nil {
		return nil, err
	}

	var intervals []domain.Interval
	for _, issue := range issues {
		// The issues listing also returns pull requests.
		if issue.PullRequest != nil {
			continue
		}
		raw := map[string]any{
			"repository": repo,
			"number":     issue.Number,
			"title":      issue.Title,
			"state":      issue.State,
			"url":        issue.URL,
		}
		authored := s.cfg.User == "" || issue.User.Login == s.cfg.User

		if authored && within(issue.CreatedAt, start, end) {
			intervals = append(intervals, domain.Interval{
				Source: "github_issue_created",
				Title:  "Created Issue: " + truncate(issue.Title, 50),
				Start:  issue.CreatedAt.Add(-issueCreatedEffort),
				End:    issue.CreatedAt,
				Raw:    raw,
			})
		}

		if issue.ClosedAt != nil && within(*issue.ClosedAt, start, end) {
			intervals = append(intervals, domain.Interval{
				Source: "github_issue_closed",
				Title:  "Closed Issue: " + truncate(issue.Title, 50),
				Start:  issue.ClosedAt.Add(-issueClosedEffort),
				End:    *issue.ClosedAt,
				Raw:    raw,
			})
		}

		if issue.Comments == 0 || issue.UpdatedAt.Before(start) {
			continue
		}
		comments, err := s.issueComments(ctx, repo, issue, start, end)
		if err != nil {
			s.log.Warn().Err(err).Str("repo", repo).Int("issue", issue.Number).
				Msg("github issue comments fetch failed")
			continue
		}
		intervals = append(intervals, comments...)
	}
	return intervals, nil
}

func (s *GitHubSource) issueComments(ctx context.Context, repo string, issue ghIssue, start, end time.Time) ([]domain.Interval, error) {
	var comments []ghComment
	path := fmt.Sprintf("/repos/%s/issues/%d/comments?per_page=100", repo, issue.Number)
	if err := s.getJSON(ctx, path, &comments); err != nil {
		return nil, err
	}

	var intervals []domain.Interval
	for _, c := range comments {
		if s.cfg.User != "" && c.User.Login != s.cfg.User {
			continue
		}
		if !within(c.CreatedAt, start, end) {
			continue
		}
		intervals = append(intervals, domain.Interval{
			Source: "github_issue_comment",
			Title:  "Commented on Issue: " + truncate(issue.Title, 50),
			Start:  c.CreatedAt.Add(-issueCommentEffort),
			End:    c.CreatedAt,
			Raw: map[string]any{
				"issue_number": issue.Number,
				"issue_title":  issue.Title,
				"comment_body": truncate(c.Body, 100),
				"url":          c.URL,
			},
		})
	}
	return intervals, nil
}

func within(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// getJSON issues an authenticated GET with bounded retries on rate limits
// and transient server errors.
func (s *GitHubSource) getJSON(ctx context.Context, path string, v any) error {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("User-Agent", githubUserAgent)
		req.Header.Set("Accept", "application/vnd.github+json")
		if s.cfg.Token != "" {
			req.Header.Set("Authorization", "token "+s.cfg.Token)
		}

		resp, err := s.http.Do(req)
		if err != nil {
			if attempt >= githubMaxRetries {
				return fmt.Errorf("github request failed: %w", err)
			}
			s.sleep(backoff(attempt))
			continue
		}

		switch resp.StatusCode {
		case http.StatusOK:
			defer resp.Body.Close()
			if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
				return fmt.Errorf("decoding github response: %w", err)
			}
			return nil
		case http.StatusTooManyRequests, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			drainAndClose(resp.Body)
			if attempt >= githubMaxRetries {
				return fmt.Errorf("github returned status %d after %d attempts", resp.StatusCode, attempt+1)
			}
			s.log.Warn().Int("status", resp.StatusCode).Int("attempt", attempt).
				Msg("github transient error, retrying")
			s.sleep(backoff(attempt))
		default:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			resp.Body.Close()
			return fmt.Errorf("github returned status %d: %s", resp.StatusCode, string(body))
		}
	}
}

func backoff(attempt int) time.Duration {
	return githubRetryBase << uint(attempt)
}

func drainAndClose(body io.ReadCloser) {
	io.Copy(io.Discard, io.LimitReader(body, 4096))
	body.Close()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
