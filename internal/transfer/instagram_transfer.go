package transfer

import (
	"time"

	"github.com/postpilot/postpilot-api/internal/models"
)

type PostToInstagramRequest struct {
	CalendarItemID string `json:"calendarItemId" validate:"required,uuid"`
	ImageURL       string `json:"imageUrl"`
}

type PostToInstagramResponse struct {
	Success bool   `json:"success"`
	PostID  string `json:"postId"`
	Message string `json:"message"`
}

type ConnectInstagramRequest struct {
	CheckConfig bool   `json:"checkConfig"`
	Code        string `json:"code"`
	RedirectURI string `json:"redirectUri"`
}

type ConnectConfigResponse struct {
	Configured bool   `json:"configured"`
	AppID      string `json:"appId,omitempty"`
}

type ConnectInstagramResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type FetchAnalyticsResponse struct {
	Success       bool                             `json:"success"`
	PostsAnalyzed int                              `json:"postsAnalyzed"`
	Posts         []*models.InstagramPostAnalytics `json:"posts"`
}

type HashtagPerformanceResponse struct {
	Hashtags []*models.HashtagAnalytics `json:"hashtags"`
	Analysis map[string]any             `json:"analysis"`
}

// Graph API payloads.

type MediaContainer struct {
	ID string `json:"id"`
}

type GraphToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type GraphAccounts struct {
	Data []struct {
		ID                       string `json:"id"`
		Name                     string `json:"name"`
		InstagramBusinessAccount *struct {
			ID string `json:"id"`
		} `json:"instagram_business_account"`
	} `json:"data"`
}

type GraphMedia struct {
	ID            string `json:"id"`
	Caption       string `json:"caption"`
	MediaType     string `json:"media_type"`
	Permalink     string `json:"permalink"`
	Timestamp     string `json:"timestamp"`
	LikeCount     int    `json:"like_count"`
	CommentsCount int    `json:"comments_count"`
}

type GraphMediaList struct {
	Data []GraphMedia `json:"data"`
}

type GraphInsights struct {
	Data []struct {
		Name   string `json:"name"`
		Values []struct {
			Value int `json:"value"`
		} `json:"values"`
	} `json:"data"`
}

type InstagramErrorResponse struct {
	Error struct {
		Message        string `json:"message"`
		Type           string `json:"type"`
		Code           int    `json:"code"`
		ErrorSubcode   int    `json:"error_subcode"`
		IsTransient    bool   `json:"is_transient"`
		ErrorUserTitle string `json:"error_user_title"`
		ErrorUserMsg   string `json:"error_user_msg"`
		FbtraceID      string `json:"fbtrace_id"`
	} `json:"error"`
}
