package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"scorecard/internal/domain/imports"
	"scorecard/internal/domain/scorecard"
	"scorecard/internal/platform/config"
	"scorecard/internal/platform/metrics"
)

const JobImportRun = "import_run"

type Service struct {
	DB        *pgxpool.Pool
	Cfg       config.Config
	Imports   *imports.Service
	Scorecard *scorecard.Service
	Metrics   *metrics.Collector
	queue     chan job
}

type job struct {
	Type  string
	Label string
	Run   func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config, importSvc *imports.Service, scorecardSvc *scorecard.Service, collector *metrics.Collector) *Service {
	return &Service{
		DB:        db,
		Cfg:       cfg,
		Imports:   importSvc,
		Scorecard: scorecardSvc,
		Metrics:   collector,
		queue:     make(chan job, 128),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.ImportCheckInterval > 0 {
		go s.scheduleImports(ctx, s.Cfg.ImportCheckInterval)
	}
}

func (s *Service) Enqueue(jobType, label string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Label: label, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType, "label", label)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType, label string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Label: label, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "label", j.Label, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, label, status)
    VALUES ($1,$2,$3)
    RETURNING id
  `, j.Type, j.Label, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

// scheduleImports is the periodic trigger for saved imports: each tick runs
// the due check and enqueues every import whose window has arrived.
func (s *Service) scheduleImports(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			due, err := s.Imports.Due(ctx, time.Now())
			if err != nil {
				slog.Warn("import due check failed", "err", err)
				continue
			}
			for _, imp := range due {
				item := imp
				s.Enqueue(JobImportRun, item.Name, func(ctx context.Context) (any, error) {
					return s.ExecuteImport(ctx, item, time.Now())
				})
			}
		}
	}
}

// ExecuteImport claims the run window and refreshes the organization's
// rollup KPIs for the current period. The connector that loads external
// data is outside this server; a lost claim means an overlapping trigger
// already ran this window.
func (s *Service) ExecuteImport(ctx context.Context, imp imports.SavedImport, now time.Time) (any, error) {
	claimed, err := s.Imports.ClaimRun(ctx, imp, now)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return map[string]any{"skipped": "window already ran"}, nil
	}
	if s.Metrics != nil {
		s.Metrics.RecordImportRun()
	}

	period := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	recomputed, err := s.Scorecard.RecomputeRollups(ctx, imp.OrganizationID, period)
	if err != nil {
		return map[string]any{"rollupsRecomputed": recomputed}, err
	}
	if s.Metrics != nil && recomputed > 0 {
		s.Metrics.RecordRollupRun()
	}
	return map[string]any{
		"importId":          imp.ID,
		"organizationId":    imp.OrganizationID,
		"rollupsRecomputed": recomputed,
		"ranAt":             now,
	}, nil
}
