// Package job triggers the poster on a cron schedule for the serve command.
package job

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/artcava/XPoster/internal/logger"
	"github.com/artcava/XPoster/internal/poster"
)

// ErrInvalidSpec is returned for cron specs the parser rejects.
var ErrInvalidSpec = errors.New("invalid cron spec")

// Runner is one invocation of the poster.
type Runner interface {
	Run(ctx context.Context) (poster.Report, error)
}

// Scheduler fires the runner on a standard five-field cron spec. Overlapping
// ticks are skipped and panics are recovered by the cron chain.
type Scheduler struct {
	cron    *cron.Cron
	runner  Runner
	timeout time.Duration
	log     logger.Logger
	entry   cron.EntryID

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New parses spec in loc. timeout bounds each run; zero means no bound.
func New(spec string, loc *time.Location, runner Runner, timeout time.Duration, log logger.Logger) (*Scheduler, error) {
	if log == nil {
		log = logger.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(spec); err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidSpec, spec, err)
	}

	cl := cronLogger{log: log}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithParser(parser),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		cron.WithLogger(cl),
	)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:    c,
		runner:  runner,
		timeout: timeout,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}

	entry, err := c.AddFunc(spec, s.tick)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidSpec, spec, err)
	}
	s.entry = entry
	return s, nil
}

// Start begins firing in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", logger.Time("next_run", s.Next()))
}

// Next is the time of the upcoming tick.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

// Stop cancels the in-flight run and waits for it, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.log.Info("stopping scheduler")
	s.cancel()
	stopped := s.cron.Stop()

	select {
	case <-stopped.Done():
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
	s.wg.Wait()
	s.log.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) tick() {
	s.wg.Add(1)
	defer s.wg.Done()

	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	report, err := s.runner.Run(ctx)
	if err != nil {
		s.log.Error("scheduled run failed", logger.Error(err))
	} else {
		s.log.Info("scheduled run completed",
			logger.String("strategy", report.Strategy.String()),
			logger.String("outcome", report.Outcome),
			logger.Bool("sent", report.Sent),
		)
	}
	s.log.Debug("next run", logger.Time("next_run", s.Next()))
}

// cronLogger routes cron's own logging through the structured logger.
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, kvFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append(kvFields(keysAndValues), logger.Error(err))...)
}

func kvFields(keysAndValues []any) []logger.Field {
	fields := make([]logger.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		fields = append(fields, logger.Any(key, keysAndValues[i+1]))
	}
	return fields
}
