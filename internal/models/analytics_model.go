package models

import "time"

type InstagramPostAnalytics struct {
	UserID          string    `db:"user_id" json:"user_id"`
	InstagramPostID string    `db:"instagram_post_id" json:"instagram_post_id"`
	Caption         string    `db:"caption" json:"caption"`
	MediaType       string    `db:"media_type" json:"media_type"`
	Permalink       string    `db:"permalink" json:"permalink"`
	PostedAt        time.Time `db:"posted_at" json:"posted_at"`
	Likes           int       `db:"likes" json:"likes"`
	Comments        int       `db:"comments" json:"comments"`
	Reach           int       `db:"reach" json:"reach"`
	Saved           int       `db:"saved" json:"saved"`
	EngagementRate  float64   `db:"engagement_rate" json:"engagement_rate"`
	SyncedAt        time.Time `db:"synced_at" json:"synced_at"`
}

type MenuItemAnalytics struct {
	UserID            string    `db:"user_id" json:"user_id"`
	MenuItemID        string    `db:"menu_item_id" json:"menu_item_id"`
	MenuItemName      string    `db:"menu_item_name" json:"menu_item_name"`
	PostCount         int       `db:"post_count" json:"post_count"`
	TotalEngagement   int       `db:"total_engagement" json:"total_engagement"`
	AvgEngagementRate float64   `db:"avg_engagement_rate" json:"avg_engagement_rate"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

type HashtagAnalytics struct {
	UserID            string    `db:"user_id" json:"user_id"`
	Hashtag           string    `db:"hashtag" json:"hashtag"`
	TimesUsed         int       `db:"times_used" json:"times_used"`
	TotalReach        int       `db:"total_reach" json:"total_reach"`
	TotalEngagement   int       `db:"total_engagement" json:"total_engagement"`
	AvgEngagementRate float64   `db:"avg_engagement_rate" json:"avg_engagement_rate"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}
