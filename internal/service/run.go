package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"datagen-service/internal/config"
	"datagen-service/internal/export"
	"datagen-service/internal/generator"
	"datagen-service/internal/report"
	"datagen-service/pkg/models"
)

// Sink is the warehouse append surface the pipeline hands datasets to.
type Sink interface {
	AppendUsers(ctx context.Context, users []models.User) error
	AppendEvents(ctx context.Context, events []models.Event) error
}

// RunStore keeps the run ledger.
type RunStore interface {
	Create(ctx context.Context, run *models.GenerationRun) error
	Update(ctx context.Context, run *models.GenerationRun) error
	Get(ctx context.Context, id string) (*models.GenerationRun, error)
	List(ctx context.Context, limit int) ([]models.GenerationRun, error)
}

// Archive stores CSV snapshots of a run's datasets.
type Archive interface {
	UploadExport(ctx context.Context, dataset string, runDate time.Time, runID string, content []byte) (string, error)
}

// ReportSender delivers the run summary mail.
type ReportSender interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

// RunRequest carries the per-run overrides the scheduler may supply.
type RunRequest struct {
	UserCount  *int    `json:"user_count,omitempty"`
	RunDate    *string `json:"run_date,omitempty"` // YYYY-MM-DD
	RandomSeed *int64  `json:"random_seed,omitempty"`
}

// RunSummary is what the trigger endpoint returns.
type RunSummary struct {
	RunID        string                  `json:"run_id"`
	RunDate      string                  `json:"run_date"`
	Seed         int64                   `json:"seed"`
	UserCount    int                     `json:"user_count"`
	EventCount   int                     `json:"event_count"`
	Funnel       generator.FunnelSummary `json:"funnel"`
	UsersCSVURL  *string                 `json:"users_csv_url,omitempty"`
	EventsCSVURL *string                 `json:"events_csv_url,omitempty"`
	DurationMS   int64                   `json:"duration_ms"`
}

// RunService owns the generate → persist → archive → report pipeline.
// Archive and reporter are optional collaborators; the pipeline degrades to
// warehouse-only when they are absent.
type RunService struct {
	cfg      *config.Config
	sink     Sink
	runs     RunStore
	archive  Archive
	reporter ReportSender
}

func NewRunService(cfg *config.Config, sink Sink, runs RunStore, archive Archive, reporter ReportSender) *RunService {
	return &RunService{
		cfg:      cfg,
		sink:     sink,
		runs:     runs,
		archive:  archive,
		reporter: reporter,
	}
}

// Execute performs one full generation run. Invalid requests fail before
// anything is generated or persisted; a sink failure marks the run failed
// without retrying.
func (s *RunService) Execute(ctx context.Context, req RunRequest) (*RunSummary, error) {
	params, err := s.buildParams(req)
	if err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	run := &models.GenerationRun{
		ID:        uuid.NewString(),
		RunDate:   params.RunDate,
		Seed:      params.Seed,
		UserCount: params.UserCount,
		Status:    models.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}
	log.Printf("🚀 [RUN %s] Started | date=%s users=%d seed=%d", run.ID, run.RunDate.Format("2006-01-02"), run.UserCount, run.Seed)

	users, err := generator.GenerateUsers(params)
	if err != nil {
		return nil, s.fail(ctx, run, err)
	}
	events, err := generator.GenerateEvents(ctx, users, params)
	if err != nil {
		return nil, s.fail(ctx, run, err)
	}
	for i := range users {
		users[i].RunID = run.ID
	}
	for i := range events {
		events[i].RunID = run.ID
	}
	log.Printf("✅ [RUN %s] Generated %d users, %d events", run.ID, len(users), len(events))

	if err := s.sink.AppendUsers(ctx, users); err != nil {
		return nil, s.fail(ctx, run, err)
	}
	if err := s.sink.AppendEvents(ctx, events); err != nil {
		return nil, s.fail(ctx, run, err)
	}

	summary := generator.Summarize(events)
	if stats, err := json.Marshal(summary); err == nil {
		run.FunnelStats = stats
	}

	if s.archive != nil {
		s.archiveCSVs(ctx, run, users, events)
	}

	run.Status = models.RunStatusCompleted
	run.EventCount = len(events)
	now := time.Now().UTC()
	run.FinishedAt = &now
	if err := s.runs.Update(ctx, run); err != nil {
		return nil, fmt.Errorf("finalize run %s: %w", run.ID, err)
	}
	duration := now.Sub(run.StartedAt)
	log.Printf("🏁 [RUN %s] Completed in %v", run.ID, duration.Round(time.Millisecond))

	if s.reporter != nil && len(s.cfg.ReportRecipients) > 0 {
		s.sendReport(ctx, run, summary, duration)
	}

	return &RunSummary{
		RunID:        run.ID,
		RunDate:      run.RunDate.Format("2006-01-02"),
		Seed:         run.Seed,
		UserCount:    len(users),
		EventCount:   len(events),
		Funnel:       summary,
		UsersCSVURL:  run.UsersCSVURL,
		EventsCSVURL: run.EventsCSVURL,
		DurationMS:   duration.Milliseconds(),
	}, nil
}

func (s *RunService) GetRun(ctx context.Context, id string) (*models.GenerationRun, error) {
	return s.runs.Get(ctx, id)
}

func (s *RunService) ListRuns(ctx context.Context, limit int) ([]models.GenerationRun, error) {
	return s.runs.List(ctx, limit)
}

// buildParams merges the service defaults with the request overrides.
func (s *RunService) buildParams(req RunRequest) (generator.Params, error) {
	params := generator.DefaultParams(time.Now().UTC())
	params.UserCount = s.cfg.UserCount
	params.HistoryWindowDays = s.cfg.HistoryWindowDays
	params.PVerified = s.cfg.PVerified
	params.ABRatio = s.cfg.ABRatio
	params.ABLift = s.cfg.ABLift
	params.SessionMean = s.cfg.SessionMean
	params.Seed = s.cfg.RandomSeed
	params.Workers = s.cfg.Workers
	for name, prob := range s.cfg.ContinueProb {
		params.ContinueProb[generator.Transition(name)] = prob
	}

	if req.UserCount != nil {
		params.UserCount = *req.UserCount
	}
	if req.RandomSeed != nil {
		params.Seed = *req.RandomSeed
	}
	if req.RunDate != nil {
		d, err := time.Parse("2006-01-02", *req.RunDate)
		if err != nil {
			return params, fmt.Errorf("%w: run_date must be YYYY-MM-DD, got %q", generator.ErrInvalidArgument, *req.RunDate)
		}
		params.RunDate = d.UTC()
	}
	return params, nil
}

// archiveCSVs uploads snapshots best-effort: the warehouse already holds the
// run, so an archive hiccup downgrades to a warning instead of failing it.
func (s *RunService) archiveCSVs(ctx context.Context, run *models.GenerationRun, users []models.User, events []models.Event) {
	usersCSV, err := export.UsersCSV(users)
	if err != nil {
		log.Printf("⚠️ [RUN %s] users csv: %v", run.ID, err)
		return
	}
	eventsCSV, err := export.EventsCSV(events)
	if err != nil {
		log.Printf("⚠️ [RUN %s] events csv: %v", run.ID, err)
		return
	}

	if url, err := s.archive.UploadExport(ctx, "users", run.RunDate, run.ID, usersCSV); err != nil {
		log.Printf("⚠️ [RUN %s] users snapshot upload failed: %v", run.ID, err)
	} else {
		run.UsersCSVURL = &url
	}
	if url, err := s.archive.UploadExport(ctx, "events", run.RunDate, run.ID, eventsCSV); err != nil {
		log.Printf("⚠️ [RUN %s] events snapshot upload failed: %v", run.ID, err)
	} else {
		run.EventsCSVURL = &url
	}
}

func (s *RunService) sendReport(ctx context.Context, run *models.GenerationRun, summary generator.FunnelSummary, duration time.Duration) {
	body, err := report.RenderRunReport(run, summary, duration)
	if err != nil {
		log.Printf("⚠️ [RUN %s] report render failed: %v", run.ID, err)
		return
	}
	if err := s.reporter.Send(ctx, s.cfg.ReportRecipients, report.RunReportSubject(run), body); err != nil {
		log.Printf("⚠️ [RUN %s] report delivery failed: %v", run.ID, err)
	}
}

// fail marks the run failed and passes the original error through.
func (s *RunService) fail(ctx context.Context, run *models.GenerationRun, cause error) error {
	run.Status = models.RunStatusFailed
	msg := cause.Error()
	run.ErrorMessage = &msg
	now := time.Now().UTC()
	run.FinishedAt = &now
	if err := s.runs.Update(ctx, run); err != nil {
		log.Printf("❌ [RUN %s] Could not mark run failed: %v", run.ID, err)
	}
	log.Printf("❌ [RUN %s] Failed: %v", run.ID, cause)
	return cause
}
