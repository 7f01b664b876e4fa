package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/postpilot/postpilot-api/internal/service"
)

// Worker runs queued tasks against the services.
type Worker struct {
	schedule  service.ScheduleService
	analytics service.AnalyticsService
}

func NewWorker(schedule service.ScheduleService, analytics service.AnalyticsService) *Worker {
	return &Worker{schedule: schedule, analytics: analytics}
}

// Register binds every task type to its handler.
func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskTypePublishScheduledPost, w.HandlePublishScheduledPost)
	mux.HandleFunc(TaskTypeSyncInsights, w.HandleSyncInsights)
}

func (w *Worker) HandlePublishScheduledPost(ctx context.Context, task *asynq.Task) error {
	var payload ScheduledPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
	}
	return w.schedule.Run(ctx, payload.ScheduledPostID)
}

// HandleSyncInsights never fails the task; insights are best effort.
func (w *Worker) HandleSyncInsights(ctx context.Context, task *asynq.Task) error {
	var payload SyncInsightsPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
	}
	if _, err := w.analytics.Sync(ctx, payload.UserID); err != nil {
		slog.Warn("insights sync failed", "user_id", payload.UserID, "error", err)
	}
	return nil
}
