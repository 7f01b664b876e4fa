package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	config "github.com/postpilot/postpilot-api/configs"
	"github.com/postpilot/postpilot-api/internal/ai"
	"github.com/postpilot/postpilot-api/internal/apperrors"
	"github.com/postpilot/postpilot-api/internal/calendar"
	"github.com/postpilot/postpilot-api/internal/repository"
	"github.com/postpilot/postpilot-api/internal/transfer"
)

const (
	websiteCacheSize = 256
	websiteCacheTTL  = time.Hour
)

type ContentService interface {
	AnalyzeMenuImage(ctx context.Context, userID string, req *transfer.AnalyzeMenuImageRequest) (map[string]any, error)
	AnalyzeWebsite(ctx context.Context, userID string, req *transfer.AnalyzeWebsiteRequest) (map[string]any, error)
	StoryContent(ctx context.Context, userID string, req *transfer.StoryContentRequest) (map[string]any, error)
	BrandHashtags(ctx context.Context, userID string, req *transfer.BrandHashtagRequest) (map[string]any, error)
}

type contentService struct {
	cfg       config.AI
	ai        ai.Client
	profiles  repository.ProfileRepository
	calendars repository.CalendarRepository
	pages     *pageFetcher
	cache     *expirable.LRU[string, map[string]any]
}

func NewContentService(
	cfg config.AI,
	client ai.Client,
	profiles repository.ProfileRepository,
	calendars repository.CalendarRepository) ContentService {
	return &contentService{
		cfg:       cfg,
		ai:        client,
		profiles:  profiles,
		calendars: calendars,
		pages:     newPageFetcher(publicAddress),
		cache:     expirable.NewLRU[string, map[string]any](websiteCacheSize, nil, websiteCacheTTL),
	}
}

const menuImagePrompt = `You read photos of restaurant and cafe menus.
Extract every menu item you can read. Respond with JSON only in this format:
{"items": [{"name": string, "price": string, "description": string, "category": string}]}
Use an empty string for anything that is not visible. Do not invent items.`

// ImageDataURL turns an uploaded base64 image into a data URL with its sniffed MIME type.
// Input that already is a data URL is returned unchanged.
func ImageDataURL(encoded string) (string, error) {
	encoded = strings.TrimSpace(encoded)
	if strings.HasPrefix(encoded, "data:") {
		return encoded, nil
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", apperrors.Validation("imageBase64", "imageBase64 is not valid base64")
	}
	kind, err := SniffImage(data)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("data:%s;base64,%s", kind.MIME.Value, encoded), nil
}

func (s *contentService) AnalyzeMenuImage(ctx context.Context, userID string, req *transfer.AnalyzeMenuImageRequest) (map[string]any, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	image := req.ImageURL
	if image == "" {
		if req.ImageBase64 == "" {
			return nil, apperrors.Required("imageUrl")
		}
		var err error
		if image, err = ImageDataURL(req.ImageBase64); err != nil {
			return nil, err
		}
	}

	raw, err := s.ai.Complete(ctx, ai.Request{
		System:      menuImagePrompt,
		User:        "Extract the menu items from this image.",
		Model:       s.cfg.VisionModel,
		Temperature: ai.Temperature(0.2),
		ImageURL:    image,
	})
	if err != nil {
		return nil, err
	}

	out, err := calendar.ParseObject(raw)
	if err != nil {
		return nil, err
	}
	if _, ok := out["items"].([]any); !ok {
		return nil, &apperrors.InvalidShapeError{Field: "items"}
	}
	slog.Info("menu image analysed", "user_id", userID, "items", len(out["items"].([]any)))
	return out, nil
}

const websitePrompt = `You help local businesses set up their social media profile.
From the website content below, describe the business. Respond with JSON only in this format:
{"businessDescription": string, "productsServices": string, "brandVibe": [string], "menuItems": [{"name": string, "price": string, "description": string, "category": string}]}
brandVibe holds up to three adjectives. Leave menuItems empty when the site lists no products.`

func (s *contentService) AnalyzeWebsite(ctx context.Context, userID string, req *transfer.AnalyzeWebsiteRequest) (map[string]any, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return nil, apperrors.Required("url")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	if cached, ok := s.cache.Get(url); ok {
		slog.Info("website analysis served from cache", "url", url)
		return cached, nil
	}

	page, err := s.pages.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	raw, err := s.ai.Complete(ctx, ai.Request{
		System:      websitePrompt,
		User:        page.String(),
		Model:       s.cfg.Model,
		Temperature: ai.Temperature(0.3),
	})
	if err != nil {
		return nil, err
	}

	out, err := calendar.ParseObject(raw)
	if err != nil {
		return nil, err
	}
	s.cache.Add(url, out)
	return out, nil
}

const storyPrompt = `You write Instagram Story sequences for local businesses.
Turn the post below into 3 to 5 story frames. Respond with JSON only in this format:
{"stories": [{"frame": number, "text": string, "sticker": string, "visual": string}]}
sticker is one of: poll, question, quiz, countdown, link, none.`

func (s *contentService) StoryContent(ctx context.Context, userID string, req *transfer.StoryContentRequest) (map[string]any, error) {
	profile, err := requireProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	if _, err := requireOwnedItem(ctx, s.calendars, userID, req.CalendarItemID); err != nil {
		return nil, err
	}
	item, err := s.calendars.GetItem(ctx, req.CalendarItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperrors.NotFound("Calendar item")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Business: %s (%s) in %s\n", profile.BusinessName, nonEmptyOr(profile.BusinessType, "local business"), nonEmptyOr(profile.City, "an unspecified city"))
	if len(profile.BrandVibe) > 0 {
		fmt.Fprintf(&b, "Brand vibe: %s\n", strings.Join(profile.BrandVibe, ", "))
	}
	fmt.Fprintf(&b, "Theme: %s\nCaption: %s\nCall to action: %s\n", item.Theme, item.CaptionLong, item.CTA)
	if item.SuggestedProduct != "" {
		fmt.Fprintf(&b, "Featured product: %s\n", item.SuggestedProduct)
	}

	raw, err := s.ai.Complete(ctx, ai.Request{
		System:      storyPrompt,
		User:        b.String(),
		Model:       s.cfg.Model,
		Temperature: ai.Temperature(s.cfg.Temperature),
	})
	if err != nil {
		return nil, err
	}

	out, err := calendar.ParseObject(raw)
	if err != nil {
		return nil, err
	}
	if _, ok := out["stories"].([]any); !ok {
		return nil, &apperrors.InvalidShapeError{Field: "stories"}
	}
	return out, nil
}

const brandHashtagPrompt = `You create branded Instagram hashtags for local businesses.
Suggest 5 short, memorable, unused-sounding hashtags. Respond with JSON only in this format:
{"hashtags": [string]}
Every hashtag starts with # and contains no spaces.`

func (s *contentService) BrandHashtags(ctx context.Context, userID string, req *transfer.BrandHashtagRequest) (map[string]any, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if req.BusinessName == "" {
		return nil, apperrors.Required("businessName")
	}

	user := fmt.Sprintf("Business name: %s\nBusiness type: %s\nCity: %s",
		req.BusinessName, nonEmptyOr(req.BusinessType, "local business"), nonEmptyOr(req.City, "not specified"))

	raw, err := s.ai.Complete(ctx, ai.Request{
		System:      brandHashtagPrompt,
		User:        user,
		Model:       s.cfg.Model,
		Temperature: ai.Temperature(0.9),
	})
	if err != nil {
		return nil, err
	}

	out, err := calendar.ParseObject(raw)
	if err != nil {
		return nil, err
	}
	if _, ok := out["hashtags"].([]any); !ok {
		return nil, &apperrors.InvalidShapeError{Field: "hashtags"}
	}
	return out, nil
}
