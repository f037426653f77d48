package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

// CronDriver ticks the scheduler once a minute. Each tick loads the
// distinct timezones of notification-enabled users, computes the current
// local HH:MM in each, and runs one zone-scoped tick per timezone. The
// timezone conversion happens here, explicitly, rather than trusting the
// users' stored times to line up with any single wall clock.
type CronDriver struct {
	scheduler *Scheduler
	manager   *cron.Cron
	now       func() time.Time
}

func NewCronDriver(s *Scheduler) *CronDriver {
	return &CronDriver{
		scheduler: s,
		manager:   cron.New(cron.WithLocation(time.UTC)),
		now:       time.Now,
	}
}

// Start registers the minutely job and starts the cron manager.
func (d *CronDriver) Start() error {
	if _, err := d.manager.AddFunc("* * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 55*time.Second)
		defer cancel()
		d.RunOnce(ctx)
	}); err != nil {
		return err
	}
	d.manager.Start()
	return nil
}

// Stop stops the cron manager and waits for a running tick to finish.
func (d *CronDriver) Stop() {
	<-d.manager.Stop().Done()
}

// RunOnce performs one full pass over all active timezones.
func (d *CronDriver) RunOnce(ctx context.Context) {
	timezones, err := d.scheduler.users.DistinctTimezones(ctx)
	if err != nil {
		d.scheduler.logger.Errorw("failed to load user timezones", "error", err)
		return
	}

	now := d.now()
	for _, tz := range timezones {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			d.scheduler.logger.Warnw("skipping invalid user timezone", "timezone", tz, "error", err)
			continue
		}
		localTime := now.In(loc).Format("15:04")
		if _, err := d.scheduler.runTick(ctx, localTime, tz); err != nil {
			d.scheduler.logger.Errorw("scheduler tick failed",
				"timezone", tz, "local_time", localTime, "error", err)
		}
	}
}
