package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/postpilot/postpilot-api/internal/models"
)

type AnalyticsRepository interface {
	UpsertPost(ctx context.Context, p *models.InstagramPostAnalytics) error
	ListPosts(ctx context.Context, userID string) ([]*models.InstagramPostAnalytics, error)
	ReplaceHashtags(ctx context.Context, userID string, rows []*models.HashtagAnalytics) error
	ListHashtags(ctx context.Context, userID string) ([]*models.HashtagAnalytics, error)
	ReplaceMenuItems(ctx context.Context, userID string, rows []*models.MenuItemAnalytics) error
}

type analyticsRepository struct {
	db *sql.DB
}

func NewAnalyticsRepository(db *sql.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) UpsertPost(ctx context.Context, p *models.InstagramPostAnalytics) error {
	query := `
		INSERT INTO instagram_post_analytics (
			user_id, instagram_post_id, caption, media_type, permalink, posted_at,
			likes, comments, reach, saved, engagement_rate, synced_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (user_id, instagram_post_id) DO UPDATE SET
			caption = EXCLUDED.caption,
			likes = EXCLUDED.likes,
			comments = EXCLUDED.comments,
			reach = EXCLUDED.reach,
			saved = EXCLUDED.saved,
			engagement_rate = EXCLUDED.engagement_rate,
			synced_at = EXCLUDED.synced_at
	`

	_, err := r.db.ExecContext(ctx, query,
		p.UserID,
		p.InstagramPostID,
		p.Caption,
		p.MediaType,
		p.Permalink,
		p.PostedAt,
		p.Likes,
		p.Comments,
		p.Reach,
		p.Saved,
		p.EngagementRate,
		p.SyncedAt,
	)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *analyticsRepository) ListPosts(ctx context.Context, userID string) ([]*models.InstagramPostAnalytics, error) {
	query := `
		SELECT user_id, instagram_post_id, COALESCE(caption, ''), COALESCE(media_type, ''), COALESCE(permalink, ''),
			posted_at, likes, comments, reach, saved, engagement_rate, synced_at
		FROM instagram_post_analytics
		WHERE user_id = $1
		ORDER BY posted_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var out []*models.InstagramPostAnalytics
	for rows.Next() {
		var p models.InstagramPostAnalytics
		err := rows.Scan(&p.UserID, &p.InstagramPostID, &p.Caption, &p.MediaType, &p.Permalink,
			&p.PostedAt, &p.Likes, &p.Comments, &p.Reach, &p.Saved, &p.EngagementRate, &p.SyncedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// ReplaceHashtags rebuilds the user's hashtag aggregates in one transaction.
func (r *analyticsRepository) ReplaceHashtags(ctx context.Context, userID string, rows []*models.HashtagAnalytics) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM hashtag_analytics WHERE user_id = $1`, userID); err != nil {
		slog.Info(err.Error())
		return err
	}

	query := `
		INSERT INTO hashtag_analytics (user_id, hashtag, times_used, total_reach, total_engagement, avg_engagement_rate, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, h := range rows {
		if _, err = tx.ExecContext(ctx, query, userID, h.Hashtag, h.TimesUsed, h.TotalReach, h.TotalEngagement, h.AvgEngagementRate, h.UpdatedAt); err != nil {
			slog.Info(err.Error())
			return err
		}
	}
	return tx.Commit()
}

func (r *analyticsRepository) ListHashtags(ctx context.Context, userID string) ([]*models.HashtagAnalytics, error) {
	query := `
		SELECT user_id, hashtag, times_used, total_reach, total_engagement, avg_engagement_rate, updated_at
		FROM hashtag_analytics
		WHERE user_id = $1
		ORDER BY avg_engagement_rate DESC, times_used DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var out []*models.HashtagAnalytics
	for rows.Next() {
		var h models.HashtagAnalytics
		if err := rows.Scan(&h.UserID, &h.Hashtag, &h.TimesUsed, &h.TotalReach, &h.TotalEngagement, &h.AvgEngagementRate, &h.UpdatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		out = append(out, &h)
	}
	return out, rows.Err()
}

// ReplaceMenuItems rebuilds the user's menu item aggregates in one transaction.
func (r *analyticsRepository) ReplaceMenuItems(ctx context.Context, userID string, rows []*models.MenuItemAnalytics) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM menu_item_analytics WHERE user_id = $1`, userID); err != nil {
		slog.Info(err.Error())
		return err
	}

	query := `
		INSERT INTO menu_item_analytics (user_id, menu_item_id, menu_item_name, post_count, total_engagement, avg_engagement_rate, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, m := range rows {
		if _, err = tx.ExecContext(ctx, query, userID, m.MenuItemID, m.MenuItemName, m.PostCount, m.TotalEngagement, m.AvgEngagementRate, m.UpdatedAt); err != nil {
			slog.Info(err.Error())
			return err
		}
	}
	return tx.Commit()
}
