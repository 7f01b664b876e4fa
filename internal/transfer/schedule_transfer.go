package transfer

import "github.com/postpilot/postpilot-api/internal/models"

type SchedulePostRequest struct {
	CalendarItemID string `json:"calendarItemId" validate:"required,uuid"`
	ScheduledTime  string `json:"scheduledTime" validate:"required"`
	Timezone       string `json:"timezone" validate:"required"`
	ImageURL       string `json:"imageUrl" validate:"omitempty,url"`
}

type SchedulePostResponse struct {
	Success       bool                  `json:"success"`
	ScheduledPost *models.ScheduledPost `json:"scheduledPost"`
	Message       string                `json:"message"`
}
