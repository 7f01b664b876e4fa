package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/postpilot/postpilot-api/internal/models"
)

type CalendarRepository interface {
	Create(ctx context.Context, tx *sql.Tx, cal *models.Calendar) error
	CreateItems(ctx context.Context, tx *sql.Tx, calendarID string, items []models.CalendarItem) error
	GetByID(ctx context.Context, id string) (*models.Calendar, error)
	ListByProfileID(ctx context.Context, profileID string) ([]*models.Calendar, error)
	Remove(ctx context.Context, id string) error
	ListItems(ctx context.Context, calendarID string) ([]*models.CalendarItem, error)
	GetItem(ctx context.Context, itemID string) (*models.CalendarItem, error)
	GetItemOwner(ctx context.Context, itemID string) (*models.CalendarItemOwner, error)
	UpdateItemContent(ctx context.Context, item *models.CalendarItem) error
	MarkItemPosted(ctx context.Context, itemID, instagramPostID string, postedAt time.Time) error
}

type calendarRepository struct {
	db *sql.DB
}

func NewCalendarRepository(db *sql.DB) CalendarRepository {
	return &calendarRepository{db: db}
}

func (r *calendarRepository) Create(ctx context.Context, tx *sql.Tx, cal *models.Calendar) error {
	query := `
		INSERT INTO calendars (id, business_profile_id, month_year)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	var err error
	if tx != nil {
		err = tx.QueryRowContext(ctx, query, cal.ID, cal.BusinessProfileID, cal.MonthYear).Scan(&cal.CreatedAt)
	} else {
		err = r.db.QueryRowContext(ctx, query, cal.ID, cal.BusinessProfileID, cal.MonthYear).Scan(&cal.CreatedAt)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

const itemInsertColumns = 14

// BuildItemsInsert renders one multi-row INSERT for all items so a calendar is never stored
// half-written. day_number is taken from the items as given.
func BuildItemsInsert(calendarID string, items []models.CalendarItem) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO calendar_items (
		calendar_id, day_number, post_date, post_type, theme, caption_short, caption_long,
		hashtags, cta, canva_prompt, image_ideas, suggested_product, product_image_url, product_image_id
	) VALUES `)

	args := make([]any, 0, len(items)*itemInsertColumns)
	for i, item := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * itemInsertColumns
		fmt.Fprintf(&sb,
			"($%d, $%d, NULLIF($%d, '')::date, $%d, $%d, $%d, $%d, $%d, $%d, $%d, NULLIF($%d, ''), NULLIF($%d, ''), NULLIF($%d, ''), NULLIF($%d, '')::uuid)",
			n+1, n+2, n+3, n+4, n+5, n+6, n+7, n+8, n+9, n+10, n+11, n+12, n+13, n+14)
		args = append(args,
			calendarID,
			item.DayNumber,
			item.PostDate,
			item.PostType,
			item.Theme,
			item.CaptionShort,
			item.CaptionLong,
			pq.Array(item.Hashtags),
			item.CTA,
			item.CanvaPrompt,
			item.ImageIdeas,
			item.SuggestedProduct,
			item.ProductImageURL,
			item.ProductImageID,
		)
	}
	return sb.String(), args
}

func (r *calendarRepository) CreateItems(ctx context.Context, tx *sql.Tx, calendarID string, items []models.CalendarItem) error {
	if len(items) == 0 {
		return nil
	}
	query, args := BuildItemsInsert(calendarID, items)

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, args...)
	} else {
		_, err = r.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *calendarRepository) GetByID(ctx context.Context, id string) (*models.Calendar, error) {
	query := `SELECT id, business_profile_id, month_year, created_at FROM calendars WHERE id = $1`

	var cal models.Calendar
	err := r.db.QueryRowContext(ctx, query, id).Scan(&cal.ID, &cal.BusinessProfileID, &cal.MonthYear, &cal.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &cal, nil
}

func (r *calendarRepository) ListByProfileID(ctx context.Context, profileID string) ([]*models.Calendar, error) {
	query := `SELECT id, business_profile_id, month_year, created_at FROM calendars WHERE business_profile_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, profileID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var calendars []*models.Calendar
	for rows.Next() {
		var cal models.Calendar
		if err := rows.Scan(&cal.ID, &cal.BusinessProfileID, &cal.MonthYear, &cal.CreatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		calendars = append(calendars, &cal)
	}
	return calendars, rows.Err()
}

func (r *calendarRepository) Remove(ctx context.Context, id string) error {
	query := `DELETE FROM calendars WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

const itemColumns = `
	id, calendar_id, day_number, COALESCE(to_char(post_date, 'YYYY-MM-DD'), ''), post_type,
	COALESCE(theme, ''), COALESCE(caption_short, ''), COALESCE(caption_long, ''), COALESCE(hashtags, '{}'),
	COALESCE(cta, ''), COALESCE(canva_prompt, ''), COALESCE(image_ideas, ''), COALESCE(suggested_product, ''),
	COALESCE(product_image_url, ''), COALESCE(product_image_id::text, ''), COALESCE(instagram_post_id, ''),
	posted_at, created_at, updated_at`

func scanItem(row rowScanner) (*models.CalendarItem, error) {
	var item models.CalendarItem
	err := row.Scan(
		&item.ID,
		&item.CalendarID,
		&item.DayNumber,
		&item.PostDate,
		&item.PostType,
		&item.Theme,
		&item.CaptionShort,
		&item.CaptionLong,
		pq.Array(&item.Hashtags),
		&item.CTA,
		&item.CanvaPrompt,
		&item.ImageIdeas,
		&item.SuggestedProduct,
		&item.ProductImageURL,
		&item.ProductImageID,
		&item.InstagramPostID,
		&item.PostedAt,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *calendarRepository) ListItems(ctx context.Context, calendarID string) ([]*models.CalendarItem, error) {
	query := `SELECT ` + itemColumns + ` FROM calendar_items WHERE calendar_id = $1 ORDER BY day_number`

	rows, err := r.db.QueryContext(ctx, query, calendarID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var items []*models.CalendarItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *calendarRepository) GetItem(ctx context.Context, itemID string) (*models.CalendarItem, error) {
	query := `SELECT ` + itemColumns + ` FROM calendar_items WHERE id = $1`

	item, err := scanItem(r.db.QueryRowContext(ctx, query, itemID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return item, nil
}

func (r *calendarRepository) GetItemOwner(ctx context.Context, itemID string) (*models.CalendarItemOwner, error) {
	query := `
		SELECT ci.id, c.id, bp.id, bp.user_id
		FROM calendar_items ci
		JOIN calendars c ON c.id = ci.calendar_id
		JOIN business_profiles bp ON bp.id = c.business_profile_id
		WHERE ci.id = $1
	`

	var owner models.CalendarItemOwner
	err := r.db.QueryRowContext(ctx, query, itemID).Scan(&owner.ItemID, &owner.CalendarID, &owner.BusinessProfileID, &owner.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &owner, nil
}

func (r *calendarRepository) UpdateItemContent(ctx context.Context, item *models.CalendarItem) error {
	query := `
		UPDATE calendar_items
		SET post_date = NULLIF($1, '')::date,
			post_type = $2,
			theme = $3,
			caption_short = $4,
			caption_long = $5,
			hashtags = $6,
			cta = $7,
			canva_prompt = $8,
			image_ideas = NULLIF($9, ''),
			suggested_product = NULLIF($10, ''),
			product_image_url = NULLIF($11, ''),
			product_image_id = NULLIF($12, '')::uuid,
			updated_at = $13
		WHERE id = $14
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		item.PostDate,
		item.PostType,
		item.Theme,
		item.CaptionShort,
		item.CaptionLong,
		pq.Array(item.Hashtags),
		item.CTA,
		item.CanvaPrompt,
		item.ImageIdeas,
		item.SuggestedProduct,
		item.ProductImageURL,
		item.ProductImageID,
		time.Now(),
		item.ID,
	).Scan(&item.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNoRowsAffected
		}
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *calendarRepository) MarkItemPosted(ctx context.Context, itemID, instagramPostID string, postedAt time.Time) error {
	query := `
		UPDATE calendar_items
		SET instagram_post_id = $1,
			posted_at = $2,
			updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, instagramPostID, postedAt, time.Now(), itemID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
