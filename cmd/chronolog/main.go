package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/alexanderramin/chronolog/internal/annotate"
	"github.com/alexanderramin/chronolog/internal/cli"
	"github.com/alexanderramin/chronolog/internal/config"
	"github.com/alexanderramin/chronolog/internal/db"
	"github.com/alexanderramin/chronolog/internal/jira"
	"github.com/alexanderramin/chronolog/internal/llm"
	"github.com/alexanderramin/chronolog/internal/notify"
	"github.com/alexanderramin/chronolog/internal/repository"
	"github.com/alexanderramin/chronolog/internal/service"
	"github.com/alexanderramin/chronolog/internal/source"
	"github.com/alexanderramin/chronolog/internal/timeline"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	log := newLogger()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	repo := repository.NewSQLiteBatchRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	sources, statuses := buildSources(cfg, log)

	notifier, err := notify.New(cfg.Notify)
	if err != nil {
		return err
	}

	var annotator annotate.Annotator = annotate.NoopAnnotator{}
	llmCfg := llm.LoadConfig()
	if llmCfg.Enabled {
		var observer llm.Observer = llm.NoopObserver{}
		if llmCfg.LogCalls {
			observer = llm.NewLogObserver(log)
		}
		client := llm.NewOllamaClient(llmCfg, observer)
		annotator = annotate.NewLLMAnnotator(client, log)
	}

	jiraClient := jira.NewClient(cfg.Jira, log)

	trackSvc := service.NewTrackService(sources, annotator, uow, notifier, service.TrackOptions{
		Location:       loc,
		MergeThreshold: cfg.MergeThreshold(),
		Gaps: timeline.GapOptions{
			MinGap:        cfg.MinGap(),
			WorkStartHour: cfg.WorkStartHour,
			WorkEndHour:   cfg.WorkEndHour,
		},
	}, log)

	app := &cli.App{
		Track:   trackSvc,
		Reports: service.NewReportService(repo, loc),
		Submit:  service.NewSubmitService(repo, jiraClient, notifier, log),
		Batches: repo,
		Sources: statuses,
	}

	return cli.NewRootCmd(app).Execute()
}

func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if v := os.Getenv("CHRONOLOG_LOG_LEVEL"); v != "" {
		if parsed, err := zerolog.ParseLevel(v); err == nil {
			level = parsed
		}
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// buildSources instantiates every source that has credentials configured and
// reports the readiness of each one for 'chronolog sources'.
func buildSources(cfg config.Config, log zerolog.Logger) ([]source.Source, []cli.SourceStatus) {
	var sources []source.Source
	var statuses []cli.SourceStatus

	if cfg.Google.CredentialsFile != "" && fileExists(cfg.Google.CredentialsFile) {
		cal, err := source.NewCalendarSource(context.Background(), cfg.Google, cfg.MinActivity(), log)
		if err != nil {
			statuses = append(statuses, cli.SourceStatus{Name: "calendar", Detail: err.Error()})
			log.Warn().Err(err).Msg("calendar source unavailable")
		} else {
			sources = append(sources, cal)
			statuses = append(statuses, cli.SourceStatus{Name: "calendar", Ready: true, Detail: cfg.Google.CalendarID})
		}
	} else {
		statuses = append(statuses, cli.SourceStatus{Name: "calendar", Detail: "credentials file not found"})
	}

	if cfg.GitHub.Token != "" && len(cfg.GitHub.Repos) > 0 {
		sources = append(sources, source.NewGitHubSource(cfg.GitHub, "", log))
		statuses = append(statuses, cli.SourceStatus{Name: "github", Ready: true, Detail: fmt.Sprintf("%d repos", len(cfg.GitHub.Repos))})
	} else {
		statuses = append(statuses, cli.SourceStatus{Name: "github", Detail: "set CHRONOLOG_GITHUB_TOKEN and CHRONOLOG_GITHUB_REPOS"})
	}

	if cfg.WakaTime.APIKey != "" {
		sources = append(sources, source.NewWakaTimeSource(cfg.WakaTime, cfg.MinActivity(), log))
		statuses = append(statuses, cli.SourceStatus{Name: "wakatime", Ready: true})
	} else {
		statuses = append(statuses, cli.SourceStatus{Name: "wakatime", Detail: "set CHRONOLOG_WAKATIME_API_KEY"})
	}

	if cfg.Graph.Token != "" {
		sources = append(sources, source.NewTeamsSource(cfg.Graph, log))
		statuses = append(statuses, cli.SourceStatus{Name: "teams", Ready: true})
	} else {
		statuses = append(statuses, cli.SourceStatus{Name: "teams", Detail: "set CHRONOLOG_GRAPH_TOKEN"})
	}

	return sources, statuses
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
