package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postpilot/postpilot-api/internal/service"
	"github.com/postpilot/postpilot-api/internal/transfer"
)

type fakeSchedule struct {
	service.ScheduleService
	ran []string
	err error
}

func (f *fakeSchedule) Run(ctx context.Context, id string) error {
	f.ran = append(f.ran, id)
	return f.err
}

type fakeAnalytics struct {
	service.AnalyticsService
	synced []string
	err    error
}

func (f *fakeAnalytics) Sync(ctx context.Context, userID string) (*transfer.FetchAnalyticsResponse, error) {
	f.synced = append(f.synced, userID)
	return &transfer.FetchAnalyticsResponse{Success: f.err == nil}, f.err
}

func task(t *testing.T, typ string, payload any) *asynq.Task {
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(typ, body)
}

func TestHandlePublishScheduledPost(t *testing.T) {
	schedule := &fakeSchedule{}
	w := NewWorker(schedule, &fakeAnalytics{})

	err := w.HandlePublishScheduledPost(context.Background(), task(t, TaskTypePublishScheduledPost, ScheduledPostPayload{ScheduledPostID: "sp-1"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"sp-1"}, schedule.ran)
}

func TestHandlePublishScheduledPost_InvalidPayloadSkipsRetry(t *testing.T) {
	schedule := &fakeSchedule{}
	w := NewWorker(schedule, &fakeAnalytics{})

	err := w.HandlePublishScheduledPost(context.Background(), asynq.NewTask(TaskTypePublishScheduledPost, []byte("{")))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
	assert.Empty(t, schedule.ran)
}

func TestHandleSyncInsights_SwallowsFailures(t *testing.T) {
	analytics := &fakeAnalytics{err: errors.New("graph unavailable")}
	w := NewWorker(&fakeSchedule{}, analytics)

	err := w.HandleSyncInsights(context.Background(), task(t, TaskTypeSyncInsights, SyncInsightsPayload{UserID: "user-1"}))
	assert.NoError(t, err)
	assert.Equal(t, []string{"user-1"}, analytics.synced)
}
