package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/postpilot/postpilot-api/internal/service"
)

const (
	TaskTypePublishScheduledPost = "publish:scheduled_post"
	TaskTypeSyncInsights         = "sync:instagram_insights"
)

// Insights are fetched a little after publishing so the new post shows up in the media list.
const insightsDelay = 2 * time.Minute

type ScheduledPostPayload struct {
	ScheduledPostID string `json:"scheduled_post_id"`
}

type SyncInsightsPayload struct {
	UserID string `json:"user_id"`
}

var _ service.TaskEnqueuer = (*Client)(nil)

// Client puts tasks on the asynq queue.
type Client struct {
	asynq *asynq.Client
	now   func() time.Time
}

func NewClient(asynqClient *asynq.Client) *Client {
	return &Client{asynq: asynqClient, now: time.Now}
}

func (c *Client) EnqueueScheduledPost(ctx context.Context, scheduledPostID string, at time.Time) error {
	payload, err := json.Marshal(ScheduledPostPayload{ScheduledPostID: scheduledPostID})
	if err != nil {
		return err
	}

	delay := at.Sub(c.now())
	if delay < 0 {
		delay = 0
	}

	task := asynq.NewTask(TaskTypePublishScheduledPost, payload)
	info, err := c.asynq.EnqueueContext(ctx, task, asynq.ProcessIn(delay), asynq.MaxRetry(0))
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	slog.Info("task scheduled", "task_id", info.ID, "scheduled_post_id", scheduledPostID, "delay", delay)
	return nil
}

// EnqueueInsightsSync collapses repeated requests for the same user into one task.
func (c *Client) EnqueueInsightsSync(ctx context.Context, userID string) error {
	payload, err := json.Marshal(SyncInsightsPayload{UserID: userID})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeSyncInsights, payload)
	_, err = c.asynq.EnqueueContext(ctx, task,
		asynq.ProcessIn(insightsDelay),
		asynq.MaxRetry(0),
		asynq.Unique(10*time.Minute),
	)
	if err != nil && !errors.Is(err, asynq.ErrDuplicateTask) {
		slog.Info(err.Error())
		return err
	}
	return nil
}
