package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/matzehuels/collagefm/pkg/config"
	errs "github.com/matzehuels/collagefm/pkg/errors"
	"github.com/matzehuels/collagefm/pkg/schedule"
	"github.com/matzehuels/collagefm/pkg/store"
)

// scheduleCommand runs the [[schedule.jobs]] of the config file.
func (c *CLI) scheduleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run recurring collage jobs from the config file",
		Long: `Run recurring collage jobs from the config file.

Each [[schedule.jobs]] entry has a cron spec and delivers its collage to a
Telegram chat (chat_id, needs [telegram] token) and/or a directory
(output_dir).`,
	}

	cmd.AddCommand(c.scheduleRunCommand())
	cmd.AddCommand(c.scheduleListCommand())
	cmd.AddCommand(c.scheduleOnceCommand())

	return cmd
}

func (c *CLI) scheduleRunCommand() *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the scheduler and block until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sched, cleanup, err := c.newScheduler(ctx, save)
			if err != nil {
				return err
			}
			defer cleanup()

			sched.Start()
			for _, e := range sched.Entries() {
				printInfo("%s %s", StyleHighlight.Render(e.Name), StyleDim.Render("next "+e.Next.Format(time.RFC1123)))
			}
			<-ctx.Done()
			stopCtx, cancel := context.WithTimeout(context.Background(), schedule.DefaultTimeout)
			defer cancel()
			sched.Stop(stopCtx)
			return nil
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "also keep every collage in the record store")
	return cmd
}

func (c *CLI) scheduleListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the configured jobs and their next run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := jobRows(c.Config, time.Now())
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				printInfo("No jobs configured")
				printDetail("Add [[schedule.jobs]] to %s", c.configHint())
				return nil
			}
			fmt.Fprintln(stdout, renderTable([]string{"Job", "Cron", "User", "Delivery", "Next run"}, rows))
			return nil
		},
	}
}

func (c *CLI) scheduleOnceCommand() *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "once <job>",
		Short: "Run one job now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			jobs, cleanup, err := c.scheduleJobs(ctx, save)
			if err != nil {
				return err
			}
			defer cleanup()

			for _, job := range jobs {
				if job.Name != args[0] {
					continue
				}
				runner, err := c.newRunner(false)
				if err != nil {
					return err
				}
				defer runner.Close()
				sched := schedule.New(runner, c.Logger)
				if err := sched.RunJob(ctx, job); err != nil {
					return err
				}
				printSuccess("Job %s delivered", job.Name)
				return nil
			}
			return errs.New(errs.ErrCodeNotFound, "no job named %q", args[0])
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "also keep the collage in the record store")
	return cmd
}

// newScheduler registers every configured job. cleanup releases the
// runner, store and bot.
func (c *CLI) newScheduler(ctx context.Context, save bool) (*schedule.Scheduler, func(), error) {
	jobs, cleanup, err := c.scheduleJobs(ctx, save)
	if err != nil {
		return nil, nil, err
	}
	if len(jobs) == 0 {
		cleanup()
		return nil, nil, errs.New(errs.ErrCodeInvalidInput, "no [[schedule.jobs]] in %s", c.configHint())
	}

	runner, err := c.newRunner(false)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	sched := schedule.New(runner, c.Logger)
	for _, job := range jobs {
		if err := sched.Add(job); err != nil {
			runner.Close()
			cleanup()
			return nil, nil, err
		}
	}
	return sched, func() { runner.Close(); cleanup() }, nil
}

// scheduleJobs turns the config jobs into scheduler jobs with their sinks.
func (c *CLI) scheduleJobs(ctx context.Context, save bool) ([]schedule.Job, func(), error) {
	if err := c.requireAPIKey(); err != nil {
		return nil, nil, err
	}

	var (
		telegram *bot.Bot
		st       store.Store
	)
	cleanup := func() {
		if st != nil {
			st.Close()
		}
	}

	jobs := make([]schedule.Job, 0, len(c.Config.Schedule.Jobs))
	for i, j := range c.Config.Schedule.Jobs {
		job := schedule.Job{
			Name:    jobName(i, j),
			Spec:    j.Cron,
			Options: j.Options(c.Config.Defaults),
		}
		if j.ChatID != 0 {
			if telegram == nil {
				if c.Config.Telegram.Token == "" {
					cleanup()
					return nil, nil, errs.New(errs.ErrCodeUnauthorized, "job %q sends to Telegram but no token is set (TELEGRAM_TOKEN)", job.Name)
				}
				b, err := schedule.NewTelegramBot(c.Config.Telegram.Token, c.Config.Telegram.ServerURL)
				if err != nil {
					cleanup()
					return nil, nil, err
				}
				telegram = b
			}
			job.Sinks = append(job.Sinks, schedule.NewTelegramSink(telegram, j.ChatID))
		}
		if j.OutputDir != "" {
			job.Sinks = append(job.Sinks, schedule.DirSink{Dir: j.OutputDir})
		}
		if save {
			if st == nil {
				s, err := c.openStore(ctx)
				if err != nil {
					cleanup()
					return nil, nil, err
				}
				st = s
			}
			job.Sinks = append(job.Sinks, schedule.StoreSink{Store: st, TTL: store.DefaultTTL})
		}
		jobs = append(jobs, job)
	}
	return jobs, cleanup, nil
}

func jobName(i int, j config.Job) string {
	if j.Name != "" {
		return j.Name
	}
	return fmt.Sprintf("job-%d", i+1)
}

// jobRows describes each configured job for the list table.
func jobRows(cfg config.Config, now time.Time) ([][]string, error) {
	var rows [][]string
	for i, j := range cfg.Schedule.Jobs {
		name := jobName(i, j)
		spec, err := cron.ParseStandard(j.Cron)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "job %q: invalid cron spec %q", name, j.Cron)
		}
		user := j.Username
		if user == "" {
			user = cfg.Defaults.Username
		}
		var delivery []string
		if j.ChatID != 0 {
			delivery = append(delivery, fmt.Sprintf("telegram:%d", j.ChatID))
		}
		if j.OutputDir != "" {
			delivery = append(delivery, "dir:"+j.OutputDir)
		}
		if len(delivery) == 0 {
			delivery = append(delivery, "none")
		}
		rows = append(rows, []string{name, j.Cron, user, strings.Join(delivery, ", "), spec.Next(now).Format("Mon Jan 2 15:04")})
	}
	return rows, nil
}
