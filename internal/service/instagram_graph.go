package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "github.com/postpilot/postpilot-api/configs"
	"github.com/postpilot/postpilot-api/internal/apperrors"
	"github.com/postpilot/postpilot-api/internal/transfer"
)

// GraphClient is a small hand-built client for the Facebook Graph endpoints used for
// Instagram business accounts.
type GraphClient struct {
	http    *http.Client
	baseURL string
	cfg     config.Instagram
}

func NewGraphClient(cfg config.Instagram) *GraphClient {
	return &GraphClient{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(cfg.GraphBaseURL, "/"),
		cfg:     cfg,
	}
}

// HTTPClient is shared with the OAuth code exchange.
func (g *GraphClient) HTTPClient() *http.Client {
	return g.http
}

func (g *GraphClient) CreateMediaContainer(ctx context.Context, igUserID, accessToken, imageURL, caption string) (string, error) {
	payload := map[string]interface{}{
		"image_url":    imageURL,
		"caption":      caption,
		"access_token": accessToken,
	}

	var result transfer.MediaContainer
	if err := g.postJSON(ctx, fmt.Sprintf("/%s/media", igUserID), payload, &result); err != nil {
		return "", fmt.Errorf("failed to create media container: %w", err)
	}
	if result.ID == "" {
		return "", &apperrors.UpstreamError{Service: "Instagram", Status: http.StatusOK, Body: "no media container id returned"}
	}
	return result.ID, nil
}

func (g *GraphClient) PublishContainer(ctx context.Context, igUserID, accessToken, creationID string) (string, error) {
	payload := map[string]string{
		"creation_id":  creationID,
		"access_token": accessToken,
	}

	var result transfer.MediaContainer
	if err := g.postJSON(ctx, fmt.Sprintf("/%s/media_publish", igUserID), payload, &result); err != nil {
		return "", fmt.Errorf("failed to publish media: %w", err)
	}
	if result.ID == "" {
		return "", &apperrors.UpstreamError{Service: "Instagram", Status: http.StatusOK, Body: "no post id returned"}
	}
	return result.ID, nil
}

// ExchangeLongLived swaps a short-lived (or expiring long-lived) user token for a fresh
// long-lived one.
func (g *GraphClient) ExchangeLongLived(ctx context.Context, token string) (*transfer.GraphToken, error) {
	q := url.Values{}
	q.Set("grant_type", "fb_exchange_token")
	q.Set("client_id", g.cfg.AppID)
	q.Set("client_secret", g.cfg.AppSecret)
	q.Set("fb_exchange_token", token)

	var result transfer.GraphToken
	if err := g.getJSON(ctx, "/oauth/access_token", q, &result); err != nil {
		return nil, fmt.Errorf("failed to get long-lived token: %w", err)
	}
	if result.AccessToken == "" {
		return nil, &apperrors.UpstreamError{Service: "Instagram", Status: http.StatusOK, Body: "no access token returned"}
	}
	return &result, nil
}

// BusinessAccountID returns the first Instagram business account linked to the user's pages.
func (g *GraphClient) BusinessAccountID(ctx context.Context, accessToken string) (string, error) {
	q := url.Values{}
	q.Set("fields", "id,name,instagram_business_account")
	q.Set("access_token", accessToken)

	var result transfer.GraphAccounts
	if err := g.getJSON(ctx, "/me/accounts", q, &result); err != nil {
		return "", fmt.Errorf("failed to list facebook pages: %w", err)
	}
	for _, page := range result.Data {
		if page.InstagramBusinessAccount != nil && page.InstagramBusinessAccount.ID != "" {
			return page.InstagramBusinessAccount.ID, nil
		}
	}
	return "", apperrors.Validation("instagram", "No Instagram Business account is linked to your Facebook pages")
}

func (g *GraphClient) ListMedia(ctx context.Context, igUserID, accessToken string, limit int) ([]transfer.GraphMedia, error) {
	q := url.Values{}
	q.Set("fields", "id,caption,media_type,permalink,timestamp,like_count,comments_count")
	q.Set("limit", fmt.Sprint(limit))
	q.Set("access_token", accessToken)

	var result transfer.GraphMediaList
	if err := g.getJSON(ctx, fmt.Sprintf("/%s/media", igUserID), q, &result); err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	return result.Data, nil
}

// MediaInsights returns the requested lifetime metrics keyed by name.
func (g *GraphClient) MediaInsights(ctx context.Context, mediaID, accessToken string, metrics ...string) (map[string]int, error) {
	q := url.Values{}
	q.Set("metric", strings.Join(metrics, ","))
	q.Set("access_token", accessToken)

	var result transfer.GraphInsights
	if err := g.getJSON(ctx, fmt.Sprintf("/%s/insights", mediaID), q, &result); err != nil {
		return nil, err
	}

	out := make(map[string]int, len(result.Data))
	for _, m := range result.Data {
		if len(m.Values) > 0 {
			out[m.Name] = m.Values[0].Value
		}
	}
	return out, nil
}

func (g *GraphClient) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return g.do(req, out)
}

func (g *GraphClient) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	return g.do(req, out)
}

func (g *GraphClient) do(req *http.Request, out any) error {
	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(respBody)
		var graphErr transfer.InstagramErrorResponse
		if json.Unmarshal(respBody, &graphErr) == nil && graphErr.Error.Message != "" {
			msg = graphErr.Error.Message
		}
		slog.Info("graph api error", "path", req.URL.Path, "status", resp.StatusCode, "message", msg)
		return &apperrors.UpstreamError{Service: "Instagram", Status: resp.StatusCode, Body: msg}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("error parsing response: %w", err)
	}
	return nil
}
