// Package schedule renders collages on a cron schedule and delivers them.
//
// Each [Job] pairs a cron spec with pipeline options and one or more
// [Sink]s: a Telegram chat, a directory, or the record store. Jobs run
// independently; a failing job or sink is logged and the others carry on.
//
//	s := schedule.New(runner, logger)
//	s.Add(schedule.Job{
//	    Name:    "weekly",
//	    Spec:    "0 9 * * MON",
//	    Options: pipeline.Options{Username: "rj", GridSize: 5},
//	    Sinks:   []schedule.Sink{schedule.NewTelegramSink(b, chatID)},
//	})
//	err := s.Run(ctx) // blocks until ctx is cancelled
package schedule

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"github.com/matzehuels/collagefm/pkg/pipeline"
	"github.com/matzehuels/collagefm/pkg/store"
)

// DefaultTimeout bounds one job run.
const DefaultTimeout = 10 * time.Minute

// Runner produces a collage. *pipeline.Runner satisfies it.
type Runner interface {
	Execute(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error)
}

// Delivery is one rendered collage handed to a sink.
type Delivery struct {
	Job         string
	Filename    string
	ContentType string
	Caption     string
	Data        []byte
	Params      store.Params
	Dropped     int
	Failed      int
}

// Sink delivers a rendered collage somewhere.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, d Delivery) error
}

// Job is one recurring collage.
type Job struct {
	Name    string
	Spec    string
	Options pipeline.Options
	Sinks   []Sink
}

// Entry describes a registered job.
type Entry struct {
	Name string
	Spec string
	Next time.Time
}

// Scheduler runs jobs on their cron specs.
type Scheduler struct {
	cron    *cron.Cron
	runner  Runner
	logger  *log.Logger
	timeout time.Duration
	jobs    map[cron.EntryID]Job
}

// Option configures a [Scheduler].
type Option func(*Scheduler, *[]cron.Option)

// WithLocation interprets specs in loc instead of the local time zone.
func WithLocation(loc *time.Location) Option {
	return func(_ *Scheduler, co *[]cron.Option) {
		*co = append(*co, cron.WithLocation(loc))
	}
}

// WithTimeout bounds each job run.
func WithTimeout(d time.Duration) Option {
	return func(s *Scheduler, _ *[]cron.Option) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a scheduler. A nil logger discards output.
func New(runner Runner, logger *log.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s := &Scheduler{
		runner:  runner,
		logger:  logger,
		timeout: DefaultTimeout,
		jobs:    make(map[cron.EntryID]Job),
	}
	cronOpts := []cron.Option{cron.WithLogger(cronLogger{logger})}
	for _, opt := range opts {
		opt(s, &cronOpts)
	}
	s.cron = cron.New(cronOpts...)
	return s
}

// Add registers a job. The spec and options are validated here so that
// configuration errors surface at startup, not at the first tick.
func (s *Scheduler) Add(job Job) error {
	if job.Name == "" {
		job.Name = job.Spec
	}
	if len(job.Sinks) == 0 {
		return fmt.Errorf("job %q: no delivery configured", job.Name)
	}
	if err := job.Options.ValidateAndSetDefaults(); err != nil {
		return fmt.Errorf("job %q: %w", job.Name, err)
	}
	id, err := s.cron.AddFunc(job.Spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.RunJob(ctx, job); err != nil {
			s.logger.Error("scheduled collage failed", "job", job.Name, "err", err)
		}
	})
	if err != nil {
		return fmt.Errorf("job %q: invalid cron spec %q: %w", job.Name, job.Spec, err)
	}
	s.jobs[id] = job
	s.logger.Debug("registered job", "job", job.Name, "spec", job.Spec)
	return nil
}

// Entries lists the registered jobs with their next run time. Next is zero
// until the scheduler has started.
func (s *Scheduler) Entries() []Entry {
	var out []Entry
	for _, e := range s.cron.Entries() {
		job := s.jobs[e.ID]
		out = append(out, Entry{Name: job.Name, Spec: job.Spec, Next: e.Next})
	}
	return out
}

// RunJob renders the job's collage once and hands it to every sink. All
// sinks are tried; their errors are joined.
func (s *Scheduler) RunJob(ctx context.Context, job Job) error {
	start := time.Now()
	opts := job.Options
	if opts.Logger == nil {
		opts.Logger = s.logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	result, err := s.runner.Execute(ctx, opts)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	d := Delivery{
		Job:         job.Name,
		Filename:    result.Filename,
		ContentType: result.ContentType,
		Caption:     caption(opts),
		Data:        result.Data,
		Params:      opts.StoreParams(result.Plan.Variant),
		Dropped:     result.Stats.Dropped,
		Failed:      len(result.Failed),
	}

	var errs []error
	for _, sink := range job.Sinks {
		if err := sink.Deliver(ctx, d); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
			continue
		}
		s.logger.Info("delivered collage", "job", job.Name, "sink", sink.Name(), "file", d.Filename)
	}
	s.logger.Debug("job finished", "job", job.Name, "duration", time.Since(start))
	return errors.Join(errs...)
}

// Start runs the scheduler in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// Run starts the scheduler and blocks until ctx is cancelled, then waits
// for running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.Start()
	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.Stop(stopCtx)
	return nil
}

func caption(opts pipeline.Options) string {
	return fmt.Sprintf("%s · top %s · %s", opts.Username, opts.ItemType, opts.Period)
}

// cronLogger forwards cron's logging to charmbracelet/log.
type cronLogger struct {
	l *log.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error(msg, append(keysAndValues, "err", err)...)
}
