package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
)

const DefaultRefreshSpec = "@every 4h"

// Scheduler runs background jobs on cron specs. A job still running when
// its next tick fires is skipped.
type Scheduler struct {
	cron *cron.Cron
}

func New(logger *log.Logger) *Scheduler {
	cronLogger := cron.DiscardLogger
	if logger != nil {
		cronLogger = cron.PrintfLogger(logger.StandardLog(log.StandardLogOptions{ForceLevel: log.DebugLevel}))
	}

	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
	}
}

// Every registers job under spec. The job receives ctx so it stops when the
// caller shuts down.
func (s *Scheduler) Every(ctx context.Context, spec string, job func(context.Context)) (cron.EntryID, error) {
	id, err := s.cron.AddFunc(spec, func() {
		if ctx.Err() != nil {
			return
		}
		job(ctx)
	})
	if err != nil {
		return 0, fmt.Errorf("schedule %q: %w", spec, err)
	}

	return id, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs, up to ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) Next(id cron.EntryID) time.Time {
	return s.cron.Entry(id).Next
}
