package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/listenupapp/catalog-server/internal/config"
	"github.com/listenupapp/catalog-server/internal/logger"
	"github.com/listenupapp/catalog-server/internal/scheduler"
	"github.com/listenupapp/catalog-server/internal/service"
)

// JobOverdueSweep is the scheduler name of the overdue notification sweep.
const JobOverdueSweep = "overdue-sweep"

// SchedulerHandle wraps the job scheduler with shutdown capability.
type SchedulerHandle struct {
	*scheduler.Scheduler
}

// Shutdown implements do.Shutdownable.
func (h *SchedulerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Stop(ctx)
}

// ProvideScheduler provides the background job scheduler with the overdue
// sweep registered. The sweep also runs once at startup so notifications for
// loans that fell due while the server was down are not delayed.
func ProvideScheduler(i do.Injector) (*SchedulerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	notifications := do.MustInvoke[*service.NotificationService](i)
	log := do.MustInvoke[*logger.Logger](i)

	sched := scheduler.New(log.Component("scheduler"))

	if cfg.Scheduler.OverdueSweep == "" {
		log.Info("Overdue sweep disabled")
		return &SchedulerHandle{Scheduler: sched}, nil
	}

	sweep := func(ctx context.Context) error {
		_, err := notifications.SweepOverdue(ctx)
		return err
	}
	if err := sched.Add(JobOverdueSweep, cfg.Scheduler.OverdueSweep, sweep); err != nil {
		return nil, err
	}

	sched.RunNow(JobOverdueSweep)
	sched.Start()

	if next, ok := sched.Next(JobOverdueSweep); ok {
		log.Info("Overdue sweep scheduled", "schedule", cfg.Scheduler.OverdueSweep, "next_run", next)
	}

	return &SchedulerHandle{Scheduler: sched}, nil
}
