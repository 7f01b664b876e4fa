package service

import (
	"context"
	"time"
)

// TaskEnqueuer hands work to the background worker.
type TaskEnqueuer interface {
	EnqueueScheduledPost(ctx context.Context, scheduledPostID string, at time.Time) error
	EnqueueInsightsSync(ctx context.Context, userID string) error
}
