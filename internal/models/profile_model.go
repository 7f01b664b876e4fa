package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type MenuItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Order       int    `json:"order,omitempty"`
}

// MenuItems is stored as a jsonb array on business_profiles.
type MenuItems []MenuItem

func (m MenuItems) Value() (driver.Value, error) {
	if m == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(m)
}

func (m *MenuItems) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into MenuItems", src)
	}
	return json.Unmarshal(data, m)
}

type BusinessProfile struct {
	ID                      string     `db:"id" json:"id"`
	UserID                  string     `db:"user_id" json:"user_id"`
	BusinessName            string     `db:"business_name" json:"business_name"`
	BusinessType            string     `db:"business_type" json:"business_type"`
	City                    string     `db:"city" json:"city"`
	Neighborhood            string     `db:"neighborhood" json:"neighborhood"`
	PrimaryOffer            string     `db:"primary_offer" json:"primary_offer"`
	BrandVibe               []string   `db:"brand_vibe" json:"brand_vibe"`
	PostingFrequency        string     `db:"posting_frequency" json:"posting_frequency"`
	PrimaryGoal             string     `db:"primary_goal" json:"primary_goal"`
	BusinessDescription     string     `db:"business_description" json:"business_description"`
	ProductsServices        string     `db:"products_services" json:"products_services"`
	PermanentContext        string     `db:"permanent_context" json:"permanent_context"`
	MenuItems               MenuItems  `db:"menu_items" json:"menu_items"`
	InstagramAccessToken    string     `db:"instagram_access_token" json:"-"` // AES-GCM ciphertext at rest
	InstagramTokenExpiresAt *time.Time `db:"instagram_token_expires_at" json:"instagram_token_expires_at"`
	InstagramUserID         string     `db:"instagram_user_id" json:"instagram_user_id"`
	InstagramPostingEnabled bool       `db:"instagram_posting_enabled" json:"instagram_posting_enabled"`
	BrandHashtag            string     `db:"brand_hashtag" json:"brand_hashtag"`
	SubscriptionStatus      string     `db:"subscription_status" json:"subscription_status"`
	StripeCustomerID        string     `db:"stripe_customer_id" json:"-"`
	StripeSubscriptionID    string     `db:"stripe_subscription_id" json:"-"`
	CreatedAt               time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt               time.Time  `db:"updated_at" json:"updated_at"`
}

// InstagramConnection is the subset of a profile written by the OAuth flow and the refresh job.
type InstagramConnection struct {
	AccessToken string
	ExpiresAt   time.Time
	UserID      string
}

const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusTrialing = "trialing"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
	SubscriptionStatusInactive = "inactive"
)
