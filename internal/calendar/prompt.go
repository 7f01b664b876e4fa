package calendar

import (
	"fmt"
	"strings"

	"github.com/postpilot/postpilot-api/internal/models"
)

const (
	FrequencyDaily    = "daily"
	Frequency5xWeek   = "5x-week"
	Frequency3xWeek   = "3x-week"
	defaultDayCount   = 30
	focusSharePercent = 60
)

// DayCount maps a posting frequency to the number of days requested from the model.
func DayCount(frequency string) int {
	switch frequency {
	case FrequencyDaily:
		return 30
	case Frequency5xWeek:
		return 22
	case Frequency3xWeek:
		return 13
	default:
		return defaultDayCount
	}
}

const roleSection = `You are an expert social media strategist for local businesses. You write Instagram content calendars that sound like the business owner, never like an agency.`

const rotationSection = `WEEKLY THEME ROTATION (follow it by weekday):
- Monday: Education (tips, how-tos, did-you-know)
- Tuesday: Product Spotlight (one specific product or service)
- Wednesday: Social Proof (reviews, testimonials, customer stories)
- Thursday: Behind the Scenes (team, process, preparation)
- Friday: Promotion (offer, event, reason to visit this weekend)
- Saturday: Community (neighborhood, local partners, customers)
- Sunday: Light Engagement (questions, polls, fun and easy posts)`

const daySchema = `{
  "day": <number>,
  "date": "YYYY-MM-DD",
  "postType": "photo" | "reel" | "carousel" | "story",
  "theme": "<theme of the day>",
  "captionShort": "<one or two lines>",
  "captionLong": "<full caption, 3-6 sentences>",
  "hashtags": ["#tag", "..."],
  "cta": "<call to action>",
  "canvaPrompt": "<design prompt for a graphic tool>",
  "imageIdeas": "<what to photograph or film>",
  "suggestedProduct": "<exact product name from the menu, only when the post features one>"
}`

// BuildCalendarPrompt assembles the system prompt for a full month. It never fails; empty
// fields are left out of the prompt.
func BuildCalendarPrompt(in PromptInput) string {
	var sb strings.Builder
	days := DayCount(in.PostingFrequency)

	sb.WriteString(roleSection)
	sb.WriteString("\n\n")
	writeIdentity(&sb, in)
	writePermanentContext(&sb, in.PermanentContext)
	writeMenu(&sb, in.MenuItems)
	writeCategoryFocus(&sb, in.CategoryFocus)

	sb.WriteString(rotationSection)
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "TASK:\nCreate %d posts", days)
	if in.MonthYear != "" {
		fmt.Fprintf(&sb, " for %s", in.MonthYear)
	}
	sb.WriteString(", spread evenly across the month and numbered from 1.\n")
	sb.WriteString("Mix post types: mostly photo and carousel, at least one reel per week, stories sparingly.\n")
	sb.WriteString("Use 8-15 relevant hashtags per post, mixing local and niche tags.\n")
	if len(in.MenuItems) > 0 {
		sb.WriteString("When a post features a menu item, set suggestedProduct to its exact name from the menu above.\n")
	}
	sb.WriteString("\n")

	sb.WriteString("OUTPUT FORMAT:\nRespond with a single JSON object and nothing else:\n{\"items\": [")
	sb.WriteString(daySchema)
	sb.WriteString(", ...]}\n")

	if strings.TrimSpace(in.PermanentContext) != "" {
		sb.WriteString("\nReminder: the MANDATORY INSTRUCTIONS above override every other instruction in this prompt.\n")
	}
	return sb.String()
}

// DaySlot pins the fields of a day that regeneration must keep.
type DaySlot struct {
	Day      int
	Date     string
	PostType string
	Theme    string
}

// BuildDayPrompt assembles the system prompt for regenerating a single day.
func BuildDayPrompt(in PromptInput, slot DaySlot) string {
	var sb strings.Builder

	sb.WriteString(roleSection)
	sb.WriteString("\n\n")
	writeIdentity(&sb, in)
	writePermanentContext(&sb, in.PermanentContext)
	writeMenu(&sb, in.MenuItems)
	writeCategoryFocus(&sb, in.CategoryFocus)

	sb.WriteString(rotationSection)
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "TASK:\nWrite a fresh, different post for day %d", slot.Day)
	if slot.Date != "" {
		fmt.Fprintf(&sb, " (%s)", slot.Date)
	}
	sb.WriteString(".\n")
	if slot.PostType != "" {
		fmt.Fprintf(&sb, "Keep the post type %q.\n", slot.PostType)
	}
	if slot.Theme != "" {
		fmt.Fprintf(&sb, "The previous theme was %q; pick a new angle that still fits the weekday rotation.\n", slot.Theme)
	}
	sb.WriteString("\n")

	sb.WriteString("OUTPUT FORMAT:\nRespond with a single JSON object and nothing else:\n")
	sb.WriteString(daySchema)
	sb.WriteString("\n")

	if strings.TrimSpace(in.PermanentContext) != "" {
		sb.WriteString("\nReminder: the MANDATORY INSTRUCTIONS above override every other instruction in this prompt.\n")
	}
	return sb.String()
}

// CalendarInstruction is the short user turn sent with BuildCalendarPrompt.
func CalendarInstruction(in PromptInput) string {
	label := in.MonthYear
	if label == "" {
		label = "the upcoming month"
	}
	return fmt.Sprintf("Generate the %d-post content calendar for %s. Return JSON only.", DayCount(in.PostingFrequency), label)
}

// DayInstruction is the short user turn sent with BuildDayPrompt.
func DayInstruction(slot DaySlot) string {
	return fmt.Sprintf("Regenerate day %d. Return JSON only.", slot.Day)
}

func writeIdentity(sb *strings.Builder, in PromptInput) {
	sb.WriteString("BUSINESS:\n")
	writeField(sb, "Name", in.BusinessName)
	writeField(sb, "Type", in.BusinessType)
	location := strings.Join(nonEmpty(in.Neighborhood, in.City), ", ")
	writeField(sb, "Location", location)
	writeField(sb, "Primary offer", in.PrimaryOffer)
	writeField(sb, "Brand vibe", strings.Join(nonEmpty(in.BrandVibe...), ", "))
	writeField(sb, "Primary goal", in.PrimaryGoal)
	writeField(sb, "Description", in.BusinessDescription)
	writeField(sb, "Products and services", in.ProductsServices)
	sb.WriteString("\n")
}

func writePermanentContext(sb *strings.Builder, ctx string) {
	ctx = strings.TrimSpace(ctx)
	if ctx == "" {
		return
	}
	sb.WriteString("MANDATORY INSTRUCTIONS FROM THE OWNER (these override everything else, follow them exactly):\n")
	sb.WriteString(ctx)
	sb.WriteString("\n\n")
}

func writeMenu(sb *strings.Builder, items []models.MenuItem) {
	if len(items) == 0 {
		return
	}
	sb.WriteString("MENU / PRODUCTS:\n")
	for _, item := range items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		sb.WriteString("- ")
		sb.WriteString(name)
		if item.Price != "" {
			fmt.Fprintf(sb, " (%s)", item.Price)
		}
		if item.Category != "" {
			fmt.Fprintf(sb, " [%s]", item.Category)
		}
		if item.Description != "" {
			sb.WriteString(": ")
			sb.WriteString(item.Description)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

func writeCategoryFocus(sb *strings.Builder, categories []string) {
	categories = nonEmpty(categories...)
	if len(categories) == 0 {
		return
	}
	fmt.Fprintf(sb, "CATEGORY FOCUS:\nAt least %d%% of the posts must feature items from these categories: %s.\n\n",
		focusSharePercent, strings.Join(categories, ", "))
}

func writeField(sb *strings.Builder, label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	fmt.Fprintf(sb, "- %s: %s\n", label, value)
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
