package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/postpilot/postpilot-api/internal/apperrors"
	"github.com/postpilot/postpilot-api/internal/models"
	"github.com/postpilot/postpilot-api/internal/repository"
	"github.com/postpilot/postpilot-api/internal/transfer"
)

type ScheduleService interface {
	Schedule(ctx context.Context, userID string, req *transfer.SchedulePostRequest) (*transfer.SchedulePostResponse, error)
	List(ctx context.Context, userID string) ([]*models.ScheduledPost, error)
	Cancel(ctx context.Context, userID, id string) error
	Run(ctx context.Context, id string) error
}

type scheduleService struct {
	scheduled repository.ScheduledPostRepository
	calendars repository.CalendarRepository
	instagram InstagramService
	tasks     TaskEnqueuer
	now       func() time.Time
}

func NewScheduleService(
	scheduled repository.ScheduledPostRepository,
	calendars repository.CalendarRepository,
	instagram InstagramService,
	tasks TaskEnqueuer) ScheduleService {
	return &scheduleService{
		scheduled: scheduled,
		calendars: calendars,
		instagram: instagram,
		tasks:     tasks,
		now:       time.Now,
	}
}

// ParseScheduledTime reads an RFC 3339 timestamp. A timestamp without an offset is read in the
// given IANA zone.
func ParseScheduledTime(value, timezone string) (time.Time, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, apperrors.Validation("timezone", "Invalid timezone: "+timezone)
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05", value, loc)
	if err != nil {
		t, err = time.ParseInLocation("2006-01-02T15:04", value, loc)
	}
	if err != nil {
		return time.Time{}, apperrors.Validation("scheduledTime", "scheduledTime must be an ISO 8601 timestamp")
	}
	return t, nil
}

func (s *scheduleService) Schedule(ctx context.Context, userID string, req *transfer.SchedulePostRequest) (*transfer.SchedulePostResponse, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	at, err := ParseScheduledTime(req.ScheduledTime, req.Timezone)
	if err != nil {
		return nil, err
	}
	if !at.After(s.now()) {
		return nil, apperrors.Validation("scheduledTime", "Scheduled time must be in the future")
	}

	if _, err := requireOwnedItem(ctx, s.calendars, userID, req.CalendarItemID); err != nil {
		return nil, err
	}

	sp := &models.ScheduledPost{
		UserID:         userID,
		CalendarItemID: req.CalendarItemID,
		ScheduledTime:  at.UTC(),
		Timezone:       req.Timezone,
		ImageURL:       req.ImageURL,
		Status:         models.ScheduledStatusPending,
	}
	if err := s.scheduled.Create(ctx, sp); err != nil {
		return nil, err
	}

	if err := s.tasks.EnqueueScheduledPost(ctx, sp.ID, sp.ScheduledTime); err != nil {
		slog.Error("could not enqueue scheduled post", "scheduled_post_id", sp.ID, "error", err)
		if rmErr := s.scheduled.Remove(ctx, userID, sp.ID); rmErr != nil {
			slog.Warn("could not remove unqueued scheduled post", "scheduled_post_id", sp.ID, "error", rmErr)
		}
		return nil, err
	}

	slog.Info("post scheduled", "user_id", userID, "scheduled_post_id", sp.ID, "at", sp.ScheduledTime)
	return &transfer.SchedulePostResponse{
		Success:       true,
		ScheduledPost: sp,
		Message:       "Post scheduled for " + at.In(mustLocation(req.Timezone)).Format("Jan 2, 2006 3:04 PM MST"),
	}, nil
}

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (s *scheduleService) List(ctx context.Context, userID string) ([]*models.ScheduledPost, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	posts, err := s.scheduled.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*models.ScheduledPost{}
	}
	return posts, nil
}

// Cancel deletes the row. The queued task finds nothing and exits.
func (s *scheduleService) Cancel(ctx context.Context, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	sp, err := s.scheduled.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sp == nil {
		return apperrors.NotFound("Scheduled post")
	}
	if sp.UserID != userID {
		return apperrors.Ownership("scheduled post")
	}
	if sp.Status != models.ScheduledStatusPending {
		return apperrors.Validation("status", "Only pending posts can be cancelled")
	}
	if err := s.scheduled.Remove(ctx, userID, id); err != nil {
		return notFoundAs(err, "Scheduled post")
	}
	slog.Info("scheduled post cancelled", "user_id", userID, "scheduled_post_id", id)
	return nil
}

// Run publishes one scheduled post. The returned error is only for infrastructure failures;
// publish failures are recorded on the row.
func (s *scheduleService) Run(ctx context.Context, id string) error {
	sp, err := s.scheduled.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sp == nil {
		slog.Info("scheduled post no longer exists", "scheduled_post_id", id)
		return nil
	}
	if sp.Status != models.ScheduledStatusPending {
		slog.Info("scheduled post already handled", "scheduled_post_id", id, "status", sp.Status)
		return nil
	}

	imageURL := sp.ImageURL
	if imageURL == "" {
		item, err := s.calendars.GetItem(ctx, sp.CalendarItemID)
		if err != nil {
			return err
		}
		if item != nil {
			imageURL = item.ProductImageURL
		}
	}

	resp, err := s.instagram.Publish(ctx, sp.UserID, &transfer.PostToInstagramRequest{
		CalendarItemID: sp.CalendarItemID,
		ImageURL:       imageURL,
	})
	if err != nil {
		slog.Error("scheduled publish failed", "scheduled_post_id", id, "error", err)
		return s.scheduled.MarkFailed(ctx, id, err.Error())
	}

	slog.Info("scheduled post published", "scheduled_post_id", id, "post_id", resp.PostID)
	return s.scheduled.MarkPublished(ctx, id, s.now())
}
