package app

import (
	"context"
	"time"

	"github.com/fox-studio/site/internal/modules/offline"
	pkgcron "github.com/fox-studio/site/internal/pkg/cron"
)

const ensureWorkerInterval = time.Minute

func registerCronJobs(sched *pkgcron.Scheduler, worker *offline.Handler) {
	sched.Register(pkgcron.Job{
		Name:        "ensure_worker",
		Description: "Install the offline worker when none is active",
		Interval:    ensureWorkerInterval,
		Fn: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			return worker.EnsureActive(ctx)
		},
	})
}
