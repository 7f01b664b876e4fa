package job

import (
	"github.com/robfig/cron"
)

const (
	tokenRefreshEvery  = "@every 12h"
	analyticsSyncEvery = "@every 6h"
)

// NewScheduler registers the periodic jobs. The caller starts and stops it.
func NewScheduler(refresh *TokenRefreshJob, analytics *AnalyticsSyncJob) (*cron.Cron, error) {
	c := cron.New()
	if err := c.AddFunc(tokenRefreshEvery, refresh.RefreshTokens); err != nil {
		return nil, err
	}
	if err := c.AddFunc(analyticsSyncEvery, analytics.EnqueueAll); err != nil {
		return nil, err
	}
	return c, nil
}
