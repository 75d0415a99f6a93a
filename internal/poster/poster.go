// Package poster runs one scheduled invocation: select the slot for now,
// build its generator, generate, gate and send.
package poster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/artcava/XPoster/internal/domain"
	"github.com/artcava/XPoster/internal/generator"
	"github.com/artcava/XPoster/internal/logger"
	"github.com/artcava/XPoster/internal/metrics"
	"github.com/artcava/XPoster/internal/schedule"
)

// ErrUnexpected wraps failures outside the recoverable taxonomy, including
// recovered panics. The host should treat them as alerts.
var ErrUnexpected = errors.New("unexpected invocation failure")

// OutcomeSkipped marks invocations whose generator was disabled up front.
const OutcomeSkipped = "skipped"

// Builder creates the generator for a slot.
type Builder interface {
	Build(kind domain.StrategyKind, ch domain.Channel) (generator.Generator, error)
}

// Report summarizes one invocation.
type Report struct {
	// RunID correlates the log lines of one invocation.
	RunID     string
	At        time.Time
	Strategy  domain.StrategyKind
	Channel   domain.Channel
	Generator string
	Outcome   string
	Sent      bool
	Reason    string
}

// Poster is the single entry point invoked by the scheduler.
type Poster struct {
	selector *schedule.Selector
	builder  Builder
	clock    schedule.Clock
	metrics  *metrics.Metrics
	log      logger.Logger
}

// New wires a Poster. m may be nil.
func New(selector *schedule.Selector, builder Builder, clock schedule.Clock, m *metrics.Metrics, log logger.Logger) *Poster {
	if clock == nil {
		clock = schedule.SystemClock
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Poster{selector: selector, builder: builder, clock: clock, metrics: m, log: log}
}

// Run executes one invocation. Rejections, degradations and transmission
// failures are reported in the Report with a nil error; only unexpected
// failures return an error.
func (p *Poster) Run(ctx context.Context) (report Report, err error) {
	started := time.Now()
	now := p.clock.Now()
	kind, ch := p.selector.Select(now)
	report = Report{RunID: uuid.NewString(), At: now, Strategy: kind, Channel: ch}

	log := p.log.With(
		logger.String("run_id", report.RunID),
		logger.String("strategy", kind.String()),
		logger.String("channel", ch.String()),
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error("invocation panicked", logger.Any("panic", r))
			err = fmt.Errorf("%w: panic: %v", ErrUnexpected, r)
		}
		p.metrics.ObserveInvocation(kind.String(), time.Since(started))
	}()

	gen, err := p.builder.Build(kind, ch)
	if err != nil {
		log.Error("generator build failed", logger.Error(err))
		return report, fmt.Errorf("%w: build generator: %w", ErrUnexpected, err)
	}
	report.Generator = gen.Name()
	log = log.With(logger.Generator(gen.Name()))

	if !gen.SendIt() {
		report.Outcome = OutcomeSkipped
		log.Debug("nothing scheduled", logger.Reason("generator disabled"))
		return report, nil
	}

	res := gen.Generate(ctx)
	report.Outcome = res.Outcome.String()
	report.Reason = res.Reason
	p.metrics.ObserveGeneration(gen.Name(), res.Outcome.String())

	if res.Post == nil {
		log.Info("no post produced", logger.Reason(res.Reason))
		return report, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		log.Error("invocation cancelled before transmission", logger.Error(ctxErr))
		return report, fmt.Errorf("%w: %w", ErrUnexpected, ctxErr)
	}

	tx := gen.Transmit(ctx, res.Post)
	report.Sent = tx.Sent
	if !tx.Sent {
		report.Reason = tx.Reason
	}
	p.metrics.ObserveTransmission(ch.String(), transmissionResult(tx))

	log.Info("invocation finished",
		logger.String("outcome", report.Outcome),
		logger.Bool("sent", tx.Sent),
		logger.Reason(report.Reason),
		logger.Duration("took", time.Since(started)),
	)
	return report, nil
}

func transmissionResult(tx generator.Transmission) string {
	switch {
	case tx.Sent:
		return metrics.ResultSent
	case tx.Blocked:
		return metrics.ResultRejected
	default:
		return metrics.ResultFailed
	}
}
