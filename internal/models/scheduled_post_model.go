package models

import "time"

type ScheduledPost struct {
	ID             string     `db:"id" json:"id"`
	UserID         string     `db:"user_id" json:"user_id"`
	CalendarItemID string     `db:"calendar_item_id" json:"calendar_item_id"`
	ScheduledTime  time.Time  `db:"scheduled_time" json:"scheduled_time"`
	Timezone       string     `db:"timezone" json:"timezone"`
	ImageURL       string     `db:"image_url" json:"image_url"`
	Status         string     `db:"status" json:"status"` // pending, published, failed
	PublishedAt    *time.Time `db:"published_at" json:"published_at"`
	ErrorMessage   string     `db:"error_message" json:"error_message"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

const (
	ScheduledStatusPending   = "pending"
	ScheduledStatusPublished = "published"
	ScheduledStatusFailed    = "failed"
)
