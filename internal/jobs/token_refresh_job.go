package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/postpilot/postpilot-api/internal/models"
	"github.com/postpilot/postpilot-api/internal/repository"
	"github.com/postpilot/postpilot-api/internal/service"
)

// Long-lived Instagram tokens are refreshed once they are within this window of expiring.
const refreshWindow = 7 * 24 * time.Hour

const concurrencyLimit = 10

type TokenRefreshJob struct {
	profiles  repository.ProfileRepository
	instagram service.InstagramService
	now       func() time.Time
}

func NewTokenRefreshJob(profiles repository.ProfileRepository, instagram service.InstagramService) *TokenRefreshJob {
	return &TokenRefreshJob{
		profiles:  profiles,
		instagram: instagram,
		now:       time.Now,
	}
}

func (j *TokenRefreshJob) RefreshTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	profiles, err := j.profiles.ListExpiringInstagramTokens(ctx, j.now().Add(refreshWindow))
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, p := range profiles {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(p *models.BusinessProfile) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := j.instagram.RefreshToken(ctx, p); err != nil {
				slog.Warn("unable to refresh instagram token", "profile_id", p.ID, "error", err)
				return
			}
			slog.Info("instagram token refreshed", "profile_id", p.ID)
		}(p)
	}
	wg.Wait()
}
