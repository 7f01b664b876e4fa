package calendar

import (
	"sort"
	"strings"

	"github.com/postpilot/postpilot-api/internal/models"
)

// MatchProductImages attaches a product photo to every day whose suggestedProduct names a
// menu item that has at least one uploaded image. The featured image wins, otherwise the
// lowest display order. Days are modified in place; order and count never change.
func MatchProductImages(days []Day, menu []models.MenuItem, images []models.ProductImage) []Day {
	if len(days) == 0 || len(menu) == 0 || len(images) == 0 {
		return days
	}

	menuByName := make(map[string]string, len(menu))
	for _, item := range menu {
		key := normalizeName(item.Name)
		if key == "" || item.ID == "" {
			continue
		}
		if _, seen := menuByName[key]; !seen {
			menuByName[key] = item.ID
		}
	}

	best := bestImageByMenuItem(images)

	for i := range days {
		key := normalizeName(days[i].SuggestedProduct)
		if key == "" {
			continue
		}
		menuItemID, ok := menuByName[key]
		if !ok {
			continue
		}
		img, ok := best[menuItemID]
		if !ok {
			continue
		}
		days[i].ProductImageURL = img.ImageURL
		days[i].ProductImageID = img.ID
	}
	return days
}

// BestImage returns the image the matcher would pick for one menu item.
func BestImage(menuItemID string, images []models.ProductImage) (models.ProductImage, bool) {
	img, ok := bestImageByMenuItem(images)[menuItemID]
	return img, ok
}

func bestImageByMenuItem(images []models.ProductImage) map[string]models.ProductImage {
	sorted := make([]models.ProductImage, 0, len(images))
	for _, img := range images {
		if img.MenuItemID != nil && *img.MenuItemID != "" {
			sorted = append(sorted, img)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.IsFeatured != b.IsFeatured {
			return a.IsFeatured
		}
		if a.DisplayOrder != b.DisplayOrder {
			return a.DisplayOrder < b.DisplayOrder
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})

	out := make(map[string]models.ProductImage)
	for _, img := range sorted {
		if _, ok := out[*img.MenuItemID]; !ok {
			out[*img.MenuItemID] = img
		}
	}
	return out
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
