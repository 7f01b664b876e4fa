package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	config "github.com/postpilot/postpilot-api/configs"
	"github.com/postpilot/postpilot-api/internal/ai"
	"github.com/postpilot/postpilot-api/internal/apperrors"
	"github.com/postpilot/postpilot-api/internal/calendar"
	"github.com/postpilot/postpilot-api/internal/models"
	"github.com/postpilot/postpilot-api/internal/repository"
	"github.com/postpilot/postpilot-api/internal/transfer"
)

type CalendarService interface {
	Generate(ctx context.Context, userID string, req *transfer.GenerateCalendarRequest) ([]calendar.Day, error)
	RegenerateDay(ctx context.Context, userID string, req *transfer.RegenerateDayRequest) (*models.CalendarItem, error)
	Create(ctx context.Context, userID string, req *transfer.CreateCalendarRequest) (*models.Calendar, error)
	List(ctx context.Context, userID string) ([]*models.Calendar, error)
	Get(ctx context.Context, userID, calendarID string) (*models.Calendar, error)
	Delete(ctx context.Context, userID, calendarID string) error
}

type calendarService struct {
	cfg       config.AI
	ai        ai.Client
	tx        repository.Transactor
	profiles  repository.ProfileRepository
	calendars repository.CalendarRepository
	images    repository.ProductImageRepository
}

func NewCalendarService(
	cfg config.AI,
	client ai.Client,
	tx repository.Transactor,
	profiles repository.ProfileRepository,
	calendars repository.CalendarRepository,
	images repository.ProductImageRepository) CalendarService {
	return &calendarService{
		cfg:       cfg,
		ai:        client,
		tx:        tx,
		profiles:  profiles,
		calendars: calendars,
		images:    images,
	}
}

func (s *calendarService) Generate(ctx context.Context, userID string, req *transfer.GenerateCalendarRequest) ([]calendar.Day, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if req.BusinessName == "" {
		return nil, apperrors.Required("businessName")
	}

	in := req.PromptInput()

	var images []models.ProductImage

	// The menu and the product images are looked up together; the model needs the menu in its prompt.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if len(in.MenuItems) > 0 {
			return nil
		}
		profile, err := s.profiles.GetByUserID(gctx, userID)
		if err != nil {
			slog.Warn("could not load menu items", "user_id", userID, "error", err)
			return nil
		}
		if profile != nil {
			in.MenuItems = profile.MenuItems
		}
		return nil
	})
	g.Go(func() error {
		var err error
		images, err = s.images.ListByUserID(gctx, userID)
		if err != nil {
			slog.Warn("could not load product images", "user_id", userID, "error", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	raw, err := s.ai.Complete(ctx, ai.Request{
		System:      calendar.BuildCalendarPrompt(in),
		User:        calendar.CalendarInstruction(in),
		Model:       s.cfg.Model,
		Temperature: ai.Temperature(s.cfg.Temperature),
	})
	if err != nil {
		slog.Error("calendar generation failed", "user_id", userID, "error", err)
		return nil, err
	}

	days, err := calendar.ParseCalendar(raw)
	if err != nil {
		slog.Warn("rejected calendar response", "user_id", userID, "response", calendar.DescribeShape(raw), "error", err)
		return nil, err
	}

	days = calendar.MatchProductImages(days, in.MenuItems, images)
	slog.Info("calendar generated", "user_id", userID, "days", len(days), "requested", calendar.DayCount(in.PostingFrequency))
	return days, nil
}

func (s *calendarService) RegenerateDay(ctx context.Context, userID string, req *transfer.RegenerateDayRequest) (*models.CalendarItem, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	owner, err := requireOwnedItem(ctx, s.calendars, userID, req.ItemID)
	if err != nil {
		return nil, err
	}
	if owner.BusinessProfileID != req.BusinessProfileID {
		return nil, apperrors.Ownership("calendar item")
	}

	profile, err := s.profiles.GetByID(ctx, owner.BusinessProfileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperrors.NotFound("Business profile")
	}

	item, err := s.calendars.GetItem(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperrors.NotFound("Calendar item")
	}

	in := calendar.FromProfile(profile, "")
	slot := calendar.DaySlot{Day: item.DayNumber, Date: item.PostDate, PostType: item.PostType, Theme: item.Theme}

	raw, err := s.ai.Complete(ctx, ai.Request{
		System:      calendar.BuildDayPrompt(in, slot),
		User:        calendar.DayInstruction(slot),
		Model:       s.cfg.Model,
		Temperature: ai.Temperature(s.cfg.Temperature),
	})
	if err != nil {
		return nil, err
	}

	day, err := calendar.ParseDay(raw)
	if err != nil {
		slog.Warn("rejected day response", "item_id", item.ID, "response", calendar.DescribeShape(raw), "error", err)
		return nil, err
	}

	images, err := s.images.ListByUserID(ctx, userID)
	if err != nil {
		slog.Warn("could not load product images", "user_id", userID, "error", err)
	}
	matched := calendar.MatchProductImages([]calendar.Day{*day}, profile.MenuItems, images)

	// Concurrent regenerations of the same item are last-write-wins.
	updated := *item
	matched[0].ApplyTo(&updated)
	if err := s.calendars.UpdateItemContent(ctx, &updated); err != nil {
		return nil, notFoundAs(err, "Calendar item")
	}

	slog.Info("calendar day regenerated", "item_id", item.ID, "day", item.DayNumber)
	return &updated, nil
}

func (s *calendarService) Create(ctx context.Context, userID string, req *transfer.CreateCalendarRequest) (*models.Calendar, error) {
	profile, err := requireProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	if req.MonthYear == "" {
		return nil, apperrors.Required("monthYear")
	}

	cal := &models.Calendar{
		ID:                uuid.NewString(),
		BusinessProfileID: profile.ID,
		MonthYear:         req.MonthYear,
	}

	items := make([]models.CalendarItem, len(req.Items))
	for i, day := range req.Items {
		items[i] = day.ToItem(cal.ID, i+1)
	}

	err = s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		if err := s.calendars.Create(ctx, tx, cal); err != nil {
			return fmt.Errorf("error creating calendar: %w", err)
		}
		if err := s.calendars.CreateItems(ctx, tx, cal.ID, items); err != nil {
			return fmt.Errorf("error creating calendar items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cal.Items = make([]*models.CalendarItem, len(items))
	for i := range items {
		cal.Items[i] = &items[i]
	}
	slog.Info("calendar saved", "calendar_id", cal.ID, "items", len(items))
	return cal, nil
}

func (s *calendarService) List(ctx context.Context, userID string) ([]*models.Calendar, error) {
	profile, err := requireProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	calendars, err := s.calendars.ListByProfileID(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	if calendars == nil {
		calendars = []*models.Calendar{}
	}
	return calendars, nil
}

func (s *calendarService) Get(ctx context.Context, userID, calendarID string) (*models.Calendar, error) {
	cal, err := s.ownedCalendar(ctx, userID, calendarID)
	if err != nil {
		return nil, err
	}
	items, err := s.calendars.ListItems(ctx, cal.ID)
	if err != nil {
		return nil, err
	}
	cal.Items = items
	return cal, nil
}

func (s *calendarService) Delete(ctx context.Context, userID, calendarID string) error {
	cal, err := s.ownedCalendar(ctx, userID, calendarID)
	if err != nil {
		return err
	}
	if err := s.calendars.Remove(ctx, cal.ID); err != nil {
		return notFoundAs(err, "Calendar")
	}
	slog.Info("calendar deleted", "calendar_id", cal.ID)
	return nil
}

func (s *calendarService) ownedCalendar(ctx context.Context, userID, calendarID string) (*models.Calendar, error) {
	profile, err := requireProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	cal, err := s.calendars.GetByID(ctx, calendarID)
	if err != nil {
		return nil, err
	}
	if cal == nil {
		return nil, apperrors.NotFound("Calendar")
	}
	if cal.BusinessProfileID != profile.ID {
		return nil, apperrors.Ownership("calendar")
	}
	return cal, nil
}
