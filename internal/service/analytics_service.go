package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	config "github.com/postpilot/postpilot-api/configs"
	"github.com/postpilot/postpilot-api/internal/ai"
	"github.com/postpilot/postpilot-api/internal/apperrors"
	"github.com/postpilot/postpilot-api/internal/calendar"
	"github.com/postpilot/postpilot-api/internal/models"
	"github.com/postpilot/postpilot-api/internal/repository"
	"github.com/postpilot/postpilot-api/internal/transfer"
)

const mediaSyncLimit = 50

var hashtagPattern = regexp.MustCompile(`#[\p{L}\p{N}_]+`)

type AnalyticsService interface {
	Sync(ctx context.Context, userID string) (*transfer.FetchAnalyticsResponse, error)
	HashtagPerformance(ctx context.Context, userID string) (*transfer.HashtagPerformanceResponse, error)
}

type analyticsService struct {
	cfg       config.Config
	ai        ai.Client
	graph     *GraphClient
	profiles  repository.ProfileRepository
	analytics repository.AnalyticsRepository
	now       func() time.Time
}

func NewAnalyticsService(
	cfg config.Config,
	client ai.Client,
	graph *GraphClient,
	profiles repository.ProfileRepository,
	analytics repository.AnalyticsRepository) AnalyticsService {
	return &analyticsService{
		cfg:       cfg,
		ai:        client,
		graph:     graph,
		profiles:  profiles,
		analytics: analytics,
		now:       time.Now,
	}
}

func (s *analyticsService) Sync(ctx context.Context, userID string) (*transfer.FetchAnalyticsResponse, error) {
	profile, err := requireProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	if profile.InstagramAccessToken == "" || profile.InstagramUserID == "" {
		return nil, apperrors.Validation("instagram_access_token", "Instagram account is not connected")
	}
	if s.cfg.TokenEncryptionKey == "" {
		return nil, &apperrors.ConfigurationError{Setting: "TOKEN_ENCRYPTION_KEY"}
	}
	token, err := decryptStoredToken(s.cfg.TokenEncryptionKey, profile.InstagramAccessToken)
	if err != nil {
		return nil, err
	}

	media, err := s.graph.ListMedia(ctx, profile.InstagramUserID, token, mediaSyncLimit)
	if err != nil {
		return nil, err
	}

	syncedAt := s.now()
	posts := make([]*models.InstagramPostAnalytics, 0, len(media))
	for _, m := range media {
		post := &models.InstagramPostAnalytics{
			UserID:          userID,
			InstagramPostID: m.ID,
			Caption:         m.Caption,
			MediaType:       m.MediaType,
			Permalink:       m.Permalink,
			PostedAt:        parseGraphTime(m.Timestamp),
			Likes:           m.LikeCount,
			Comments:        m.CommentsCount,
			SyncedAt:        syncedAt,
		}

		insights, err := s.graph.MediaInsights(ctx, m.ID, token, "reach", "saved")
		if err != nil {
			slog.Warn("could not load media insights", "media_id", m.ID, "error", err)
		} else {
			post.Reach = insights["reach"]
			post.Saved = insights["saved"]
		}
		post.EngagementRate = engagementRate(post)

		if err := s.analytics.UpsertPost(ctx, post); err != nil {
			return nil, fmt.Errorf("error saving post analytics: %w", err)
		}
		posts = append(posts, post)
	}

	if err := s.analytics.ReplaceHashtags(ctx, userID, aggregateHashtags(userID, posts, syncedAt)); err != nil {
		return nil, fmt.Errorf("error saving hashtag analytics: %w", err)
	}
	if err := s.analytics.ReplaceMenuItems(ctx, userID, aggregateMenuItems(userID, profile.MenuItems, posts, syncedAt)); err != nil {
		return nil, fmt.Errorf("error saving menu item analytics: %w", err)
	}

	slog.Info("instagram analytics synced", "user_id", userID, "posts", len(posts))
	return &transfer.FetchAnalyticsResponse{
		Success:       true,
		PostsAnalyzed: len(posts),
		Posts:         posts,
	}, nil
}

func (s *analyticsService) HashtagPerformance(ctx context.Context, userID string) (*transfer.HashtagPerformanceResponse, error) {
	profile, err := requireProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}

	hashtags, err := s.analytics.ListHashtags(ctx, userID)
	if err != nil {
		return nil, err
	}
	if hashtags == nil {
		hashtags = []*models.HashtagAnalytics{}
	}

	stats, err := json.Marshal(hashtags)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("You are an Instagram growth analyst for local businesses.\n")
	fmt.Fprintf(&b, "Business: %s (%s) in %s.\n", profile.BusinessName, nonEmptyOr(profile.BusinessType, "local business"), nonEmptyOr(profile.City, "an unspecified city"))
	if profile.BrandHashtag != "" {
		fmt.Fprintf(&b, "Brand hashtag: %s\n", profile.BrandHashtag)
	}
	b.WriteString("Analyse the hashtag statistics below and respond with JSON only in this format:\n")
	b.WriteString(`{"topPerformers": [string], "underperformers": [string], "recommendations": [string], "suggestedHashtags": [string], "summary": string}`)

	raw, err := s.ai.Complete(ctx, ai.Request{
		System:      b.String(),
		User:        "Hashtag statistics:\n" + string(stats),
		Model:       s.cfg.AI.Model,
		Temperature: ai.Temperature(0.4),
	})
	if err != nil {
		return nil, err
	}

	analysis, err := calendar.ParseObject(raw)
	if err != nil {
		return nil, err
	}
	return &transfer.HashtagPerformanceResponse{Hashtags: hashtags, Analysis: analysis}, nil
}

// engagementRate is interactions per reach as a percentage, or zero without reach.
func engagementRate(p *models.InstagramPostAnalytics) float64 {
	if p.Reach <= 0 {
		return 0
	}
	return float64(p.Likes+p.Comments+p.Saved) / float64(p.Reach) * 100
}

func interactions(p *models.InstagramPostAnalytics) int {
	return p.Likes + p.Comments + p.Saved
}

func parseGraphTime(s string) time.Time {
	for _, layout := range []string{"2006-01-02T15:04:05-0700", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ExtractHashtags returns the distinct lowercased hashtags of a caption in order of appearance.
func ExtractHashtags(caption string) []string {
	var out []string
	seen := map[string]bool{}
	for _, tag := range hashtagPattern.FindAllString(caption, -1) {
		tag = strings.ToLower(tag)
		if !seen[tag] {
			seen[tag] = true
			out = append(out, tag)
		}
	}
	return out
}

func aggregateHashtags(userID string, posts []*models.InstagramPostAnalytics, at time.Time) []*models.HashtagAnalytics {
	byTag := map[string]*models.HashtagAnalytics{}
	rateSum := map[string]float64{}
	for _, p := range posts {
		for _, tag := range ExtractHashtags(p.Caption) {
			h, ok := byTag[tag]
			if !ok {
				h = &models.HashtagAnalytics{UserID: userID, Hashtag: tag, UpdatedAt: at}
				byTag[tag] = h
			}
			h.TimesUsed++
			h.TotalReach += p.Reach
			h.TotalEngagement += interactions(p)
			rateSum[tag] += p.EngagementRate
		}
	}

	out := make([]*models.HashtagAnalytics, 0, len(byTag))
	for tag, h := range byTag {
		h.AvgEngagementRate = rateSum[tag] / float64(h.TimesUsed)
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TimesUsed != out[j].TimesUsed {
			return out[i].TimesUsed > out[j].TimesUsed
		}
		return out[i].Hashtag < out[j].Hashtag
	})
	return out
}

// aggregateMenuItems credits a post to every menu item whose name appears in its caption.
func aggregateMenuItems(userID string, menu []models.MenuItem, posts []*models.InstagramPostAnalytics, at time.Time) []*models.MenuItemAnalytics {
	out := make([]*models.MenuItemAnalytics, 0, len(menu))
	for _, item := range menu {
		name := strings.ToLower(strings.TrimSpace(item.Name))
		if name == "" || item.ID == "" {
			continue
		}
		row := &models.MenuItemAnalytics{UserID: userID, MenuItemID: item.ID, MenuItemName: item.Name, UpdatedAt: at}
		var rateSum float64
		for _, p := range posts {
			if strings.Contains(strings.ToLower(p.Caption), name) {
				row.PostCount++
				row.TotalEngagement += interactions(p)
				rateSum += p.EngagementRate
			}
		}
		if row.PostCount == 0 {
			continue
		}
		row.AvgEngagementRate = rateSum / float64(row.PostCount)
		out = append(out, row)
	}
	return out
}

func nonEmptyOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
