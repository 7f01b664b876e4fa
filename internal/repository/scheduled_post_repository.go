package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/postpilot/postpilot-api/internal/models"
)

type ScheduledPostRepository interface {
	Create(ctx context.Context, sp *models.ScheduledPost) error
	GetByID(ctx context.Context, id string) (*models.ScheduledPost, error)
	ListByUserID(ctx context.Context, userID string) ([]*models.ScheduledPost, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	MarkFailed(ctx context.Context, id, message string) error
	Remove(ctx context.Context, userID, id string) error
}

type scheduledPostRepository struct {
	db *sql.DB
}

func NewScheduledPostRepository(db *sql.DB) ScheduledPostRepository {
	return &scheduledPostRepository{db: db}
}

const scheduledPostColumns = `
	id, user_id, calendar_item_id, scheduled_time, timezone, COALESCE(image_url, ''),
	status, published_at, COALESCE(error_message, ''), created_at`

func scanScheduledPost(row rowScanner) (*models.ScheduledPost, error) {
	var sp models.ScheduledPost
	err := row.Scan(
		&sp.ID,
		&sp.UserID,
		&sp.CalendarItemID,
		&sp.ScheduledTime,
		&sp.Timezone,
		&sp.ImageURL,
		&sp.Status,
		&sp.PublishedAt,
		&sp.ErrorMessage,
		&sp.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

func (r *scheduledPostRepository) Create(ctx context.Context, sp *models.ScheduledPost) error {
	query := `
		INSERT INTO scheduled_posts (user_id, calendar_item_id, scheduled_time, timezone, image_url, status)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		sp.UserID,
		sp.CalendarItemID,
		sp.ScheduledTime,
		sp.Timezone,
		sp.ImageURL,
		sp.Status,
	).Scan(&sp.ID, &sp.CreatedAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *scheduledPostRepository) GetByID(ctx context.Context, id string) (*models.ScheduledPost, error) {
	query := `SELECT ` + scheduledPostColumns + ` FROM scheduled_posts WHERE id = $1`

	sp, err := scanScheduledPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return sp, nil
}

func (r *scheduledPostRepository) ListByUserID(ctx context.Context, userID string) ([]*models.ScheduledPost, error) {
	query := `SELECT ` + scheduledPostColumns + ` FROM scheduled_posts WHERE user_id = $1 ORDER BY scheduled_time`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.ScheduledPost
	for rows.Next() {
		sp, err := scanScheduledPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, sp)
	}
	return posts, rows.Err()
}

func (r *scheduledPostRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	query := `
		UPDATE scheduled_posts
		SET status = $1,
			published_at = $2,
			error_message = NULL
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, models.ScheduledStatusPublished, publishedAt, id)
	if err != nil {
		slog.Info(err.Error())
	}
	return err
}

func (r *scheduledPostRepository) MarkFailed(ctx context.Context, id, message string) error {
	query := `
		UPDATE scheduled_posts
		SET status = $1,
			error_message = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, models.ScheduledStatusFailed, message, id)
	if err != nil {
		slog.Info(err.Error())
	}
	return err
}

func (r *scheduledPostRepository) Remove(ctx context.Context, userID, id string) error {
	query := `DELETE FROM scheduled_posts WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}
