package job

import (
	"context"
	"log/slog"

	"github.com/postpilot/postpilot-api/internal/repository"
	"github.com/postpilot/postpilot-api/internal/service"
)

// AnalyticsSyncJob queues an insights sync for every connected account.
type AnalyticsSyncJob struct {
	profiles repository.ProfileRepository
	tasks    service.TaskEnqueuer
}

func NewAnalyticsSyncJob(profiles repository.ProfileRepository, tasks service.TaskEnqueuer) *AnalyticsSyncJob {
	return &AnalyticsSyncJob{profiles: profiles, tasks: tasks}
}

func (j *AnalyticsSyncJob) EnqueueAll() {
	ctx := context.Background()

	profiles, err := j.profiles.ListInstagramConnected(ctx)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	queued := 0
	for _, p := range profiles {
		if err := j.tasks.EnqueueInsightsSync(ctx, p.UserID); err != nil {
			slog.Warn("unable to queue insights sync", "user_id", p.UserID, "error", err)
			continue
		}
		queued++
	}
	slog.Info("insights sync queued", "accounts", queued)
}
