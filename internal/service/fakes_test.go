package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/postpilot/postpilot-api/internal/ai"
	"github.com/postpilot/postpilot-api/internal/models"
	"github.com/postpilot/postpilot-api/internal/repository"
)

type fakeAI struct {
	mu       sync.Mutex
	response string
	err      error
	requests []ai.Request
}

func (f *fakeAI) Complete(ctx context.Context, req ai.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.response, f.err
}

type fakeTx struct {
	calls int
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	f.calls++
	return fn(nil)
}

type fakeProfiles struct {
	repository.ProfileRepository
	byUser map[string]*models.BusinessProfile

	conn          *models.InstagramConnection
	cleared       bool
	subscriptions map[string]string
}

func newFakeProfiles(profiles ...*models.BusinessProfile) *fakeProfiles {
	f := &fakeProfiles{byUser: map[string]*models.BusinessProfile{}, subscriptions: map[string]string{}}
	for _, p := range profiles {
		f.byUser[p.UserID] = p
	}
	return f
}

func (f *fakeProfiles) GetByUserID(ctx context.Context, userID string) (*models.BusinessProfile, error) {
	return f.byUser[userID], nil
}

func (f *fakeProfiles) GetByID(ctx context.Context, id string) (*models.BusinessProfile, error) {
	for _, p := range f.byUser {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeProfiles) SetInstagramConnection(ctx context.Context, userID string, conn models.InstagramConnection) error {
	if f.byUser[userID] == nil {
		return repository.ErrNoRowsAffected
	}
	f.conn = &conn
	return nil
}

func (f *fakeProfiles) UpdateInstagramToken(ctx context.Context, profileID, token string, expiresAt time.Time) error {
	f.conn = &models.InstagramConnection{AccessToken: token, ExpiresAt: expiresAt}
	return nil
}

func (f *fakeProfiles) ClearInstagramConnection(ctx context.Context, userID string) error {
	if f.byUser[userID] == nil {
		return repository.ErrNoRowsAffected
	}
	f.cleared = true
	return nil
}

func (f *fakeProfiles) SetSubscription(ctx context.Context, userID, customerID, subscriptionID, status string) error {
	if f.byUser[userID] == nil {
		return repository.ErrNoRowsAffected
	}
	f.subscriptions[subscriptionID] = status
	return nil
}

func (f *fakeProfiles) UpdateSubscriptionStatus(ctx context.Context, subscriptionID, status string) error {
	if _, ok := f.subscriptions[subscriptionID]; !ok {
		return repository.ErrNoRowsAffected
	}
	f.subscriptions[subscriptionID] = status
	return nil
}

type fakeCalendars struct {
	repository.CalendarRepository
	mu        sync.Mutex
	calendars map[string]*models.Calendar
	items     map[string]*models.CalendarItem
	owners    map[string]*models.CalendarItemOwner

	created      []models.CalendarItem
	updates      int
	posted       map[string]string
	createErr    error
	createdItems int
}

func newFakeCalendars() *fakeCalendars {
	return &fakeCalendars{
		calendars: map[string]*models.Calendar{},
		items:     map[string]*models.CalendarItem{},
		owners:    map[string]*models.CalendarItemOwner{},
		posted:    map[string]string{},
	}
}

// addItem stores an item owned by userID through profileID.
func (f *fakeCalendars) addItem(item *models.CalendarItem, profileID, userID string) {
	f.items[item.ID] = item
	f.owners[item.ID] = &models.CalendarItemOwner{
		ItemID:            item.ID,
		CalendarID:        item.CalendarID,
		BusinessProfileID: profileID,
		UserID:            userID,
	}
}

func (f *fakeCalendars) Create(ctx context.Context, tx *sql.Tx, cal *models.Calendar) error {
	if f.createErr != nil {
		return f.createErr
	}
	cal.CreatedAt = time.Now()
	f.calendars[cal.ID] = cal
	return nil
}

func (f *fakeCalendars) CreateItems(ctx context.Context, tx *sql.Tx, calendarID string, items []models.CalendarItem) error {
	f.createdItems++
	f.created = append(f.created, items...)
	return nil
}

func (f *fakeCalendars) GetByID(ctx context.Context, id string) (*models.Calendar, error) {
	return f.calendars[id], nil
}

func (f *fakeCalendars) ListByProfileID(ctx context.Context, profileID string) ([]*models.Calendar, error) {
	var out []*models.Calendar
	for _, c := range f.calendars {
		if c.BusinessProfileID == profileID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCalendars) Remove(ctx context.Context, id string) error {
	if _, ok := f.calendars[id]; !ok {
		return repository.ErrNoRowsAffected
	}
	delete(f.calendars, id)
	return nil
}

func (f *fakeCalendars) ListItems(ctx context.Context, calendarID string) ([]*models.CalendarItem, error) {
	var out []*models.CalendarItem
	for _, it := range f.items {
		if it.CalendarID == calendarID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeCalendars) GetItem(ctx context.Context, itemID string) (*models.CalendarItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[itemID]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (f *fakeCalendars) GetItemOwner(ctx context.Context, itemID string) (*models.CalendarItemOwner, error) {
	return f.owners[itemID], nil
}

func (f *fakeCalendars) UpdateItemContent(ctx context.Context, item *models.CalendarItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[item.ID]; !ok {
		return repository.ErrNoRowsAffected
	}
	cp := *item
	f.items[item.ID] = &cp
	f.updates++
	return nil
}

func (f *fakeCalendars) MarkItemPosted(ctx context.Context, itemID, postID string, postedAt time.Time) error {
	f.posted[itemID] = postID
	return nil
}

type fakeImages struct {
	repository.ProductImageRepository
	images   []models.ProductImage
	orders   map[string]int
	featured string
	removed  []string
	nextID   int
}

func (f *fakeImages) ListByUserID(ctx context.Context, userID string) ([]models.ProductImage, error) {
	var out []models.ProductImage
	for _, img := range f.images {
		if img.UserID == userID {
			out = append(out, img)
		}
	}
	return out, nil
}

func (f *fakeImages) Create(ctx context.Context, img *models.ProductImage) error {
	f.nextID++
	img.ID = "img-new"
	img.CreatedAt = time.Now()
	f.images = append(f.images, *img)
	return nil
}

func (f *fakeImages) GetByID(ctx context.Context, id string) (*models.ProductImage, error) {
	for i := range f.images {
		if f.images[i].ID == id {
			img := f.images[i]
			return &img, nil
		}
	}
	return nil, nil
}

func (f *fakeImages) NextDisplayOrder(ctx context.Context, userID string, menuItemID *string) (int, error) {
	return len(f.images), nil
}

func (f *fakeImages) SetFeatured(ctx context.Context, userID, id string) error {
	for _, img := range f.images {
		if img.ID == id && img.UserID == userID {
			f.featured = id
			return nil
		}
	}
	return repository.ErrNoRowsAffected
}

func (f *fakeImages) UpdateDisplayOrder(ctx context.Context, tx *sql.Tx, userID, id string, order int) error {
	if f.orders == nil {
		f.orders = map[string]int{}
	}
	for _, img := range f.images {
		if img.ID == id && img.UserID == userID {
			f.orders[id] = order
			return nil
		}
	}
	return repository.ErrNoRowsAffected
}

func (f *fakeImages) Remove(ctx context.Context, userID, id string) error {
	f.removed = append(f.removed, id)
	return nil
}

type fakeScheduled struct {
	posts   map[string]*models.ScheduledPost
	failed  map[string]string
	removed []string
}

func newFakeScheduled() *fakeScheduled {
	return &fakeScheduled{posts: map[string]*models.ScheduledPost{}, failed: map[string]string{}}
}

func (f *fakeScheduled) Create(ctx context.Context, sp *models.ScheduledPost) error {
	sp.ID = "sp-1"
	sp.CreatedAt = time.Now()
	f.posts[sp.ID] = sp
	return nil
}

func (f *fakeScheduled) GetByID(ctx context.Context, id string) (*models.ScheduledPost, error) {
	return f.posts[id], nil
}

func (f *fakeScheduled) ListByUserID(ctx context.Context, userID string) ([]*models.ScheduledPost, error) {
	var out []*models.ScheduledPost
	for _, sp := range f.posts {
		if sp.UserID == userID {
			out = append(out, sp)
		}
	}
	return out, nil
}

func (f *fakeScheduled) MarkPublished(ctx context.Context, id string, at time.Time) error {
	f.posts[id].Status = models.ScheduledStatusPublished
	f.posts[id].PublishedAt = &at
	return nil
}

func (f *fakeScheduled) MarkFailed(ctx context.Context, id, message string) error {
	f.posts[id].Status = models.ScheduledStatusFailed
	f.failed[id] = message
	return nil
}

func (f *fakeScheduled) Remove(ctx context.Context, userID, id string) error {
	f.removed = append(f.removed, id)
	delete(f.posts, id)
	return nil
}

type fakeAnalytics struct {
	repository.AnalyticsRepository
	posts     []*models.InstagramPostAnalytics
	hashtags  []*models.HashtagAnalytics
	menuItems []*models.MenuItemAnalytics
}

func (f *fakeAnalytics) UpsertPost(ctx context.Context, p *models.InstagramPostAnalytics) error {
	f.posts = append(f.posts, p)
	return nil
}

func (f *fakeAnalytics) ReplaceHashtags(ctx context.Context, userID string, rows []*models.HashtagAnalytics) error {
	f.hashtags = rows
	return nil
}

func (f *fakeAnalytics) ListHashtags(ctx context.Context, userID string) ([]*models.HashtagAnalytics, error) {
	return f.hashtags, nil
}

func (f *fakeAnalytics) ReplaceMenuItems(ctx context.Context, userID string, rows []*models.MenuItemAnalytics) error {
	f.menuItems = rows
	return nil
}

type fakeTasks struct {
	scheduled map[string]time.Time
	insights  []string
	err       error
}

func (f *fakeTasks) EnqueueScheduledPost(ctx context.Context, id string, at time.Time) error {
	if f.err != nil {
		return f.err
	}
	if f.scheduled == nil {
		f.scheduled = map[string]time.Time{}
	}
	f.scheduled[id] = at
	return nil
}

func (f *fakeTasks) EnqueueInsightsSync(ctx context.Context, userID string) error {
	f.insights = append(f.insights, userID)
	return f.err
}

type fakeStore struct {
	uploaded map[string]string
	deleted  []string
}

func (f *fakeStore) Upload(ctx context.Context, key string, file []byte, contentType string) (string, error) {
	if f.uploaded == nil {
		f.uploaded = map[string]string{}
	}
	f.uploaded[key] = contentType
	return "https://cdn.example.com/" + key, nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}
