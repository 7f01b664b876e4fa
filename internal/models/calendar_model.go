package models

import "time"

type Calendar struct {
	ID                string          `db:"id" json:"id"`
	BusinessProfileID string          `db:"business_profile_id" json:"business_profile_id"`
	MonthYear         string          `db:"month_year" json:"month_year"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	Items             []*CalendarItem `json:"items,omitempty"`
}

type CalendarItem struct {
	ID               string     `db:"id" json:"id"`
	CalendarID       string     `db:"calendar_id" json:"calendar_id"`
	DayNumber        int        `db:"day_number" json:"day_number"`
	PostDate         string     `db:"post_date" json:"post_date"`
	PostType         string     `db:"post_type" json:"post_type"` // photo, reel, carousel, story
	Theme            string     `db:"theme" json:"theme"`
	CaptionShort     string     `db:"caption_short" json:"caption_short"`
	CaptionLong      string     `db:"caption_long" json:"caption_long"`
	Hashtags         []string   `db:"hashtags" json:"hashtags"`
	CTA              string     `db:"cta" json:"cta"`
	CanvaPrompt      string     `db:"canva_prompt" json:"canva_prompt"`
	ImageIdeas       string     `db:"image_ideas" json:"image_ideas"`
	SuggestedProduct string     `db:"suggested_product" json:"suggested_product"`
	ProductImageURL  string     `db:"product_image_url" json:"product_image_url"`
	ProductImageID   string     `db:"product_image_id" json:"product_image_id"`
	InstagramPostID  string     `db:"instagram_post_id" json:"instagram_post_id"`
	PostedAt         *time.Time `db:"posted_at" json:"posted_at"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// CalendarItemOwner ties an item to the profile and user that own it.
type CalendarItemOwner struct {
	ItemID            string
	CalendarID        string
	BusinessProfileID string
	UserID            string
}

const (
	PostTypePhoto    = "photo"
	PostTypeReel     = "reel"
	PostTypeCarousel = "carousel"
	PostTypeStory    = "story"
)
