package transfer

import (
	"github.com/postpilot/postpilot-api/internal/calendar"
	"github.com/postpilot/postpilot-api/internal/models"
)

type GenerateCalendarRequest struct {
	BusinessName        string            `json:"businessName" validate:"required"`
	BusinessType        string            `json:"businessType"`
	City                string            `json:"city"`
	Neighborhood        string            `json:"neighborhood"`
	PrimaryOffer        string            `json:"primaryOffer"`
	BrandVibe           []string          `json:"brandVibe"`
	PostingFrequency    string            `json:"postingFrequency"`
	PrimaryGoal         string            `json:"primaryGoal"`
	MonthYear           string            `json:"monthYear" validate:"required"`
	BusinessDescription string            `json:"businessDescription"`
	ProductsServices    string            `json:"productsServices"`
	PermanentContext    string            `json:"permanentContext"`
	MenuItems           []models.MenuItem `json:"menuItems"`
	CategoryFocus       []string          `json:"categoryFocus"`
	UserID              string            `json:"userId"`
}

func (r *GenerateCalendarRequest) PromptInput() calendar.PromptInput {
	return calendar.PromptInput{
		BusinessName:        r.BusinessName,
		BusinessType:        r.BusinessType,
		City:                r.City,
		Neighborhood:        r.Neighborhood,
		PrimaryOffer:        r.PrimaryOffer,
		BrandVibe:           r.BrandVibe,
		PostingFrequency:    r.PostingFrequency,
		PrimaryGoal:         r.PrimaryGoal,
		MonthYear:           r.MonthYear,
		BusinessDescription: r.BusinessDescription,
		ProductsServices:    r.ProductsServices,
		PermanentContext:    r.PermanentContext,
		MenuItems:           r.MenuItems,
		CategoryFocus:       r.CategoryFocus,
	}
}

type GenerateCalendarResponse struct {
	Items []calendar.Day `json:"items"`
}

type RegenerateDayRequest struct {
	ItemID            string `json:"itemId" validate:"required,uuid"`
	BusinessProfileID string `json:"businessProfileId" validate:"required,uuid"`
}

type CreateCalendarRequest struct {
	MonthYear string         `json:"monthYear" validate:"required"`
	Items     []calendar.Day `json:"items" validate:"required,min=1"`
}
