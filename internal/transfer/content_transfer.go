package transfer

type AnalyzeMenuImageRequest struct {
	ImageURL    string `json:"imageUrl" validate:"required_without=ImageBase64,omitempty,url"`
	ImageBase64 string `json:"imageBase64" validate:"required_without=ImageURL"`
}

type AnalyzeWebsiteRequest struct {
	URL string `json:"url" validate:"required"`
}

type StoryContentRequest struct {
	CalendarItemID string `json:"calendarItemId" validate:"required,uuid"`
}

type BrandHashtagRequest struct {
	BusinessName string `json:"businessName" validate:"required"`
	BusinessType string `json:"businessType"`
	City         string `json:"city"`
}
