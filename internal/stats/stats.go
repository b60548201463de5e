// Package stats recomputes the owner statistics snapshot and audits that
// every property's status agrees with its rentals.
package stats

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/erazemk/minirent/internal/db"
	"github.com/erazemk/minirent/internal/model"
	"github.com/erazemk/minirent/internal/store"
)

// DefaultSchedule runs the refresh every five minutes.
const DefaultSchedule = "@every 5m"

// Report is the outcome of one refresh.
type Report struct {
	Owners   int64               `json:"owners"`
	Drift    []model.StatusDrift `json:"drift"`
	At       time.Time           `json:"at"`
	Duration time.Duration       `json:"duration_ns"`
}

// DriftRecorder receives the drift count of every refresh.
type DriftRecorder interface {
	SetStatusDrift(n int)
}

// Refresh rebuilds the owner_stats snapshot and lists status drift in one
// transaction.
func Refresh(ctx context.Context, database *sql.DB, now time.Time) (*Report, error) {
	start := time.Now()
	report := &Report{At: now.UTC()}
	err := db.WithTx(ctx, database, func(ctx context.Context, tx db.DBTX) error {
		n, err := store.RefreshOwnerStats(ctx, tx, now)
		if err != nil {
			return err
		}
		report.Owners = n

		report.Drift, err = store.ListStatusDrift(ctx, tx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("refreshing stats: %w", err)
	}
	report.Duration = time.Since(start)
	return report, nil
}

// Scheduler runs Refresh on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	db       *sql.DB
	spec     string
	recorder DriftRecorder
	now      func() time.Time

	mu   sync.Mutex
	last *Report
}

// NewScheduler creates a scheduler. An empty spec uses DefaultSchedule;
// recorder may be nil.
func NewScheduler(database *sql.DB, spec string, recorder DriftRecorder) *Scheduler {
	if spec == "" {
		spec = DefaultSchedule
	}
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		db:       database,
		spec:     spec,
		recorder: recorder,
		now:      time.Now,
	}
}

// Start registers the refresh job and starts the cron loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if _, err := s.RunNow(context.Background()); err != nil {
			slog.Error("scheduled stats refresh failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling stats refresh %q: %w", s.spec, err)
	}
	s.cron.Start()
	slog.Info("stats scheduler started", "schedule", s.spec)
	return nil
}

// Stop waits for a running job and stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("stats scheduler stopped")
}

// RunNow refreshes immediately. Concurrent calls run one after another.
func (s *Scheduler) RunNow(ctx context.Context) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, err := Refresh(ctx, s.db, s.now())
	if err != nil {
		return nil, err
	}
	s.last = report

	if s.recorder != nil {
		s.recorder.SetStatusDrift(len(report.Drift))
	}
	for _, d := range report.Drift {
		slog.Warn("property status drift", "property", d.PropertyID, "status", d.Status.String(), "active_rentals", d.ActiveRentals)
	}
	slog.Debug("stats refreshed", "owners", report.Owners, "drift", len(report.Drift), "duration", report.Duration)
	return report, nil
}

// Last returns the most recent report, or nil before the first run.
func (s *Scheduler) Last() *Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
