package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/oauth2"

	config "github.com/postpilot/postpilot-api/configs"
	"github.com/postpilot/postpilot-api/internal/apperrors"
	"github.com/postpilot/postpilot-api/internal/models"
	"github.com/postpilot/postpilot-api/internal/repository"
	"github.com/postpilot/postpilot-api/internal/transfer"
	"github.com/postpilot/postpilot-api/pkg/utils"
)

type InstagramService interface {
	Publish(ctx context.Context, userID string, req *transfer.PostToInstagramRequest) (*transfer.PostToInstagramResponse, error)
	CheckConfig() *transfer.ConnectConfigResponse
	Connect(ctx context.Context, userID, code, redirectURI string) (*transfer.ConnectInstagramResponse, error)
	Disconnect(ctx context.Context, userID string) error
	RefreshToken(ctx context.Context, profile *models.BusinessProfile) error
}

type instagramService struct {
	cfg       config.Config
	graph     *GraphClient
	profiles  repository.ProfileRepository
	calendars repository.CalendarRepository
	tasks     TaskEnqueuer
	now       func() time.Time
}

func NewInstagramService(
	cfg config.Config,
	graph *GraphClient,
	profiles repository.ProfileRepository,
	calendars repository.CalendarRepository,
	tasks TaskEnqueuer) InstagramService {
	return &instagramService{
		cfg:       cfg,
		graph:     graph,
		profiles:  profiles,
		calendars: calendars,
		tasks:     tasks,
		now:       time.Now,
	}
}

// BuildCaption joins the long caption, the hashtag line and the call to action with blank
// lines. The brand hashtag is appended unless it is already present. Empty parts are
// dropped instead of leaving a doubled blank line.
func BuildCaption(captionLong string, hashtags []string, brandHashtag, cta string) string {
	tags := make([]string, 0, len(hashtags)+1)
	seen := make(map[string]bool, len(hashtags)+1)
	for _, h := range hashtags {
		tag := normalizeHashtag(h)
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
		seen[strings.ToLower(tag)] = true
	}
	if brand := normalizeHashtag(brandHashtag); brand != "" && !seen[strings.ToLower(brand)] {
		tags = append(tags, brand)
	}

	parts := make([]string, 0, 3)
	for _, p := range []string{strings.TrimSpace(captionLong), strings.Join(tags, " "), strings.TrimSpace(cta)} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n\n")
}

func normalizeHashtag(h string) string {
	h = strings.TrimSpace(h)
	h = strings.TrimLeft(h, "#")
	if h == "" {
		return ""
	}
	return "#" + h
}

// checkCanPublish enforces the publish preconditions in order. It never touches the network.
func checkCanPublish(profile *models.BusinessProfile, imageURL string, now time.Time) error {
	if !profile.InstagramPostingEnabled {
		return apperrors.Validation("instagram_posting_enabled", "Instagram posting is not enabled for this business")
	}
	if profile.InstagramAccessToken == "" {
		return apperrors.Validation("instagram_access_token", "Instagram account is not connected")
	}
	if profile.InstagramTokenExpiresAt != nil && !profile.InstagramTokenExpiresAt.After(now) {
		return apperrors.Validation("instagram_token_expires_at", "Instagram access token has expired. Please reconnect your account")
	}
	if strings.TrimSpace(imageURL) == "" {
		return apperrors.Validation("imageUrl", "An image URL is required to post to Instagram")
	}
	if profile.InstagramUserID == "" {
		return apperrors.Validation("instagram_user_id", "Instagram account id is missing. Please reconnect your account")
	}
	return nil
}

func (s *instagramService) Publish(ctx context.Context, userID string, req *transfer.PostToInstagramRequest) (*transfer.PostToInstagramResponse, error) {
	profile, err := requireProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	if err := checkCanPublish(profile, req.ImageURL, s.now()); err != nil {
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

	accessToken, err := s.decryptToken(profile.InstagramAccessToken)
	if err != nil {
		return nil, err
	}

	caption := BuildCaption(item.CaptionLong, item.Hashtags, profile.BrandHashtag, item.CTA)

	// A container left unpublished after a failed second call expires on Instagram's side.
	containerID, err := s.graph.CreateMediaContainer(ctx, profile.InstagramUserID, accessToken, req.ImageURL, caption)
	if err != nil {
		slog.Error("instagram container creation failed", "user_id", userID, "item_id", item.ID, "error", err)
		return nil, err
	}
	postID, err := s.graph.PublishContainer(ctx, profile.InstagramUserID, accessToken, containerID)
	if err != nil {
		slog.Error("instagram publish failed", "user_id", userID, "item_id", item.ID, "container_id", containerID, "error", err)
		return nil, err
	}

	if err := s.calendars.MarkItemPosted(ctx, item.ID, postID, s.now()); err != nil {
		slog.Warn("could not record instagram post on calendar item", "item_id", item.ID, "post_id", postID, "error", err)
	}
	if s.tasks != nil {
		if err := s.tasks.EnqueueInsightsSync(ctx, userID); err != nil {
			slog.Warn("could not enqueue insights sync", "user_id", userID, "error", err)
		}
	}

	slog.Info("posted to instagram", "user_id", userID, "item_id", item.ID, "post_id", postID)
	return &transfer.PostToInstagramResponse{
		Success: true,
		PostID:  postID,
		Message: "Successfully posted to Instagram!",
	}, nil
}

func (s *instagramService) CheckConfig() *transfer.ConnectConfigResponse {
	configured := s.cfg.Instagram.AppID != "" && s.cfg.Instagram.AppSecret != ""
	resp := &transfer.ConnectConfigResponse{Configured: configured}
	if configured {
		resp.AppID = s.cfg.Instagram.AppID
	}
	return resp
}

func (s *instagramService) oauthConfig(redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.Instagram.AppID,
		ClientSecret: s.cfg.Instagram.AppSecret,
		RedirectURL:  redirectURI,
		Endpoint: oauth2.Endpoint{
			TokenURL:  s.cfg.Instagram.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: []string{"instagram_basic", "instagram_content_publish", "instagram_manage_insights", "pages_show_list"},
	}
}

func (s *instagramService) Connect(ctx context.Context, userID, code, redirectURI string) (*transfer.ConnectInstagramResponse, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if s.cfg.Instagram.AppID == "" {
		return nil, &apperrors.ConfigurationError{Setting: "INSTAGRAM_APP_ID"}
	}
	if s.cfg.Instagram.AppSecret == "" {
		return nil, &apperrors.ConfigurationError{Setting: "INSTAGRAM_APP_SECRET"}
	}
	if code == "" {
		return nil, apperrors.Required("code")
	}
	if redirectURI == "" {
		return nil, apperrors.Required("redirectUri")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.graph.HTTPClient())
	shortLived, err := s.oauthConfig(redirectURI).Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	longLived, err := s.graph.ExchangeLongLived(ctx, shortLived.AccessToken)
	if err != nil {
		return nil, err
	}
	expiresAt := GetExpiresAt(longLived.ExpiresIn)

	igUserID, err := s.graph.BusinessAccountID(ctx, longLived.AccessToken)
	if err != nil {
		return nil, err
	}

	encrypted, err := s.encryptToken(longLived.AccessToken)
	if err != nil {
		return nil, err
	}

	err = s.profiles.SetInstagramConnection(ctx, userID, models.InstagramConnection{
		AccessToken: encrypted,
		ExpiresAt:   expiresAt,
		UserID:      igUserID,
	})
	if err != nil {
		return nil, notFoundAs(err, "Business profile")
	}

	slog.Info("instagram connected", "user_id", userID, "ig_user_id", igUserID, "expires_at", expiresAt)
	return &transfer.ConnectInstagramResponse{
		Success:   true,
		Message:   "Instagram connected successfully!",
		ExpiresAt: expiresAt,
	}, nil
}

func (s *instagramService) Disconnect(ctx context.Context, userID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if err := s.profiles.ClearInstagramConnection(ctx, userID); err != nil {
		return notFoundAs(err, "Business profile")
	}
	slog.Info("instagram disconnected", "user_id", userID)
	return nil
}

func (s *instagramService) RefreshToken(ctx context.Context, profile *models.BusinessProfile) error {
	current, err := s.decryptToken(profile.InstagramAccessToken)
	if err != nil {
		return err
	}

	refreshed, err := s.graph.ExchangeLongLived(ctx, current)
	if err != nil {
		return err
	}

	encrypted, err := s.encryptToken(refreshed.AccessToken)
	if err != nil {
		return err
	}
	return s.profiles.UpdateInstagramToken(ctx, profile.ID, encrypted, GetExpiresAt(refreshed.ExpiresIn))
}

func (s *instagramService) encryptToken(token string) (string, error) {
	if s.cfg.TokenEncryptionKey == "" {
		return "", &apperrors.ConfigurationError{Setting: "TOKEN_ENCRYPTION_KEY"}
	}
	return utils.Encrypt([]byte(token), utils.DeriveKey(s.cfg.TokenEncryptionKey))
}

func (s *instagramService) decryptToken(sealed string) (string, error) {
	if s.cfg.TokenEncryptionKey == "" {
		return "", &apperrors.ConfigurationError{Setting: "TOKEN_ENCRYPTION_KEY"}
	}
	return decryptStoredToken(s.cfg.TokenEncryptionKey, sealed)
}
