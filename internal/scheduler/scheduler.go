// Package scheduler re-runs the calendar import on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"athletics/internal/apperr"
	"athletics/internal/importer"
	appLog "athletics/internal/log"
)

type Runner interface {
	Run(ctx context.Context, req importer.Request) (importer.Result, error)
}

type Scheduler struct {
	cron   *cron.Cron
	spec   string
	runner Runner
}

// New validates spec (standard five-field cron syntax, or a descriptor like
// "@hourly") and returns a Scheduler firing in loc.
func New(spec string, loc *time.Location, runner Runner) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, apperr.FromErr(apperr.ErrConfig, fmt.Sprintf("invalid import_cron %q", spec), err, nil)
	}
	if loc == nil {
		loc = time.Local
	}

	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	return &Scheduler{
		cron:   c,
		spec:   spec,
		runner: runner,
	}, nil
}

// Start registers the import job and blocks until ctx is done, then waits
// for a running import to finish.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("add import job: %w", err)
	}

	s.cron.Start()
	appLog.Info("scheduler started", "spec", s.spec, "tz", s.cron.Location().String())

	<-ctx.Done()
	s.Stop()
	return nil
}

func (s *Scheduler) Stop() {
	done := s.cron.Stop()
	<-done.Done()
	appLog.Info("scheduler stopped")
}

// RunOnce imports every sport using the stored feed settings. Failures are
// logged, not returned; the next tick simply tries again.
func (s *Scheduler) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	res, err := s.runner.Run(ctx, importer.Request{})
	if err != nil {
		apperr.Log(apperr.Wrap(err, "scheduled import failed"))
		return
	}
	appLog.Info("scheduled import finished", "run_id", res.RunID, "total", res.Total, "sports", len(res.Imported))
}
