package job

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postpilot/postpilot-api/internal/models"
	"github.com/postpilot/postpilot-api/internal/repository"
	"github.com/postpilot/postpilot-api/internal/service"
)

type fakeProfiles struct {
	repository.ProfileRepository
	before   time.Time
	profiles []*models.BusinessProfile
}

func (f *fakeProfiles) ListExpiringInstagramTokens(ctx context.Context, before time.Time) ([]*models.BusinessProfile, error) {
	f.before = before
	return f.profiles, nil
}

func (f *fakeProfiles) ListInstagramConnected(ctx context.Context) ([]*models.BusinessProfile, error) {
	return f.profiles, nil
}

type fakeInstagram struct {
	service.InstagramService
	mu        sync.Mutex
	refreshed []string
}

func (f *fakeInstagram) RefreshToken(ctx context.Context, p *models.BusinessProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshed = append(f.refreshed, p.ID)
	if p.ID == "broken" {
		return errors.New("token revoked")
	}
	return nil
}

type fakeTasks struct {
	service.TaskEnqueuer
	users []string
}

func (f *fakeTasks) EnqueueInsightsSync(ctx context.Context, userID string) error {
	f.users = append(f.users, userID)
	return nil
}

func TestRefreshTokens(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	profiles := &fakeProfiles{profiles: []*models.BusinessProfile{{ID: "a"}, {ID: "broken"}, {ID: "c"}}}
	ig := &fakeInstagram{}

	j := NewTokenRefreshJob(profiles, ig)
	j.now = func() time.Time { return now }
	j.RefreshTokens()

	assert.Equal(t, now.Add(7*24*time.Hour), profiles.before)
	assert.ElementsMatch(t, []string{"a", "broken", "c"}, ig.refreshed)
}

func TestAnalyticsSyncJob(t *testing.T) {
	profiles := &fakeProfiles{profiles: []*models.BusinessProfile{{UserID: "u1"}, {UserID: "u2"}}}
	tasks := &fakeTasks{}

	NewAnalyticsSyncJob(profiles, tasks).EnqueueAll()
	assert.Equal(t, []string{"u1", "u2"}, tasks.users)
}

func TestNewScheduler(t *testing.T) {
	c, err := NewScheduler(NewTokenRefreshJob(&fakeProfiles{}, &fakeInstagram{}), NewAnalyticsSyncJob(&fakeProfiles{}, &fakeTasks{}))
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 2)
}
