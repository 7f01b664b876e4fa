// Package calendar builds generation prompts, parses model output into calendar days and
// attaches product photos to the days that name a product.
package calendar

import (
	"strings"

	"github.com/postpilot/postpilot-api/internal/models"
)

// Day is one generated calendar entry as exchanged with the model and the client.
type Day struct {
	Day              int      `json:"day"`
	Date             string   `json:"date"`
	PostType         string   `json:"postType"`
	Theme            string   `json:"theme"`
	CaptionShort     string   `json:"captionShort"`
	CaptionLong      string   `json:"captionLong"`
	Hashtags         []string `json:"hashtags"`
	CTA              string   `json:"cta"`
	CanvaPrompt      string   `json:"canvaPrompt"`
	ImageIdeas       string   `json:"imageIdeas,omitempty"`
	SuggestedProduct string   `json:"suggestedProduct,omitempty"`
	ProductImageURL  string   `json:"productImageUrl,omitempty"`
	ProductImageID   string   `json:"productImageId,omitempty"`
}

// PromptInput carries everything the prompt builder knows about the business.
type PromptInput struct {
	BusinessName        string
	BusinessType        string
	City                string
	Neighborhood        string
	PrimaryOffer        string
	BrandVibe           []string
	PostingFrequency    string
	PrimaryGoal         string
	MonthYear           string
	BusinessDescription string
	ProductsServices    string
	PermanentContext    string
	MenuItems           []models.MenuItem
	CategoryFocus       []string
}

// FromProfile fills a PromptInput from a stored business profile.
func FromProfile(p *models.BusinessProfile, monthYear string) PromptInput {
	return PromptInput{
		BusinessName:        p.BusinessName,
		BusinessType:        p.BusinessType,
		City:                p.City,
		Neighborhood:        p.Neighborhood,
		PrimaryOffer:        p.PrimaryOffer,
		BrandVibe:           p.BrandVibe,
		PostingFrequency:    p.PostingFrequency,
		PrimaryGoal:         p.PrimaryGoal,
		MonthYear:           monthYear,
		BusinessDescription: p.BusinessDescription,
		ProductsServices:    p.ProductsServices,
		PermanentContext:    p.PermanentContext,
		MenuItems:           p.MenuItems,
	}
}

// ToItem converts a generated day into the persisted row shape.
func (d Day) ToItem(calendarID string, dayNumber int) models.CalendarItem {
	return models.CalendarItem{
		CalendarID:       calendarID,
		DayNumber:        dayNumber,
		PostDate:         d.Date,
		PostType:         NormalizePostType(d.PostType),
		Theme:            d.Theme,
		CaptionShort:     d.CaptionShort,
		CaptionLong:      d.CaptionLong,
		Hashtags:         d.Hashtags,
		CTA:              d.CTA,
		CanvaPrompt:      d.CanvaPrompt,
		ImageIdeas:       d.ImageIdeas,
		SuggestedProduct: d.SuggestedProduct,
		ProductImageURL:  d.ProductImageURL,
		ProductImageID:   d.ProductImageID,
	}
}

// ApplyTo overwrites the content fields of an existing row. Id, day number and date are kept.
func (d Day) ApplyTo(item *models.CalendarItem) {
	if isPostType(d.PostType) {
		item.PostType = strings.ToLower(strings.TrimSpace(d.PostType))
	}
	item.Theme = d.Theme
	item.CaptionShort = d.CaptionShort
	item.CaptionLong = d.CaptionLong
	item.Hashtags = d.Hashtags
	item.CTA = d.CTA
	item.CanvaPrompt = d.CanvaPrompt
	item.ImageIdeas = d.ImageIdeas
	item.SuggestedProduct = d.SuggestedProduct
	item.ProductImageURL = d.ProductImageURL
	item.ProductImageID = d.ProductImageID
}

// NormalizePostType lowercases a post type and falls back to photo for anything unknown.
func NormalizePostType(s string) string {
	if isPostType(s) {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return models.PostTypePhoto
}

func isPostType(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case models.PostTypePhoto, models.PostTypeReel, models.PostTypeCarousel, models.PostTypeStory:
		return true
	}
	return false
}
