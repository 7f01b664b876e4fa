package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/postpilot/postpilot-api/internal/models"
)

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*models.BusinessProfile, error)
	GetByUserID(ctx context.Context, userID string) (*models.BusinessProfile, error)
	GetByStripeCustomer(ctx context.Context, customerID string) (*models.BusinessProfile, error)
	SetInstagramConnection(ctx context.Context, userID string, conn models.InstagramConnection) error
	UpdateInstagramToken(ctx context.Context, profileID, encryptedToken string, expiresAt time.Time) error
	ClearInstagramConnection(ctx context.Context, userID string) error
	ListExpiringInstagramTokens(ctx context.Context, before time.Time) ([]*models.BusinessProfile, error)
	ListInstagramConnected(ctx context.Context) ([]*models.BusinessProfile, error)
	SetSubscription(ctx context.Context, userID, customerID, subscriptionID, status string) error
	UpdateSubscriptionStatus(ctx context.Context, subscriptionID, status string) error
}

type profileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) ProfileRepository {
	return &profileRepository{db: db}
}

const profileColumns = `
	id, user_id, business_name, COALESCE(business_type, ''), COALESCE(city, ''),
	COALESCE(neighborhood, ''), COALESCE(primary_offer, ''), COALESCE(brand_vibe, '{}'),
	COALESCE(posting_frequency, ''), COALESCE(primary_goal, ''), COALESCE(business_description, ''),
	COALESCE(products_services, ''), COALESCE(permanent_context, ''), COALESCE(menu_items, '[]'::jsonb),
	COALESCE(instagram_access_token, ''), instagram_token_expires_at, COALESCE(instagram_user_id, ''),
	instagram_posting_enabled, COALESCE(brand_hashtag, ''), COALESCE(subscription_status, ''),
	COALESCE(stripe_customer_id, ''), COALESCE(stripe_subscription_id, ''), created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*models.BusinessProfile, error) {
	var p models.BusinessProfile
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.BusinessName,
		&p.BusinessType,
		&p.City,
		&p.Neighborhood,
		&p.PrimaryOffer,
		pq.Array(&p.BrandVibe),
		&p.PostingFrequency,
		&p.PrimaryGoal,
		&p.BusinessDescription,
		&p.ProductsServices,
		&p.PermanentContext,
		&p.MenuItems,
		&p.InstagramAccessToken,
		&p.InstagramTokenExpiresAt,
		&p.InstagramUserID,
		&p.InstagramPostingEnabled,
		&p.BrandHashtag,
		&p.SubscriptionStatus,
		&p.StripeCustomerID,
		&p.StripeSubscriptionID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) getOne(ctx context.Context, where string, arg any) (*models.BusinessProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM business_profiles WHERE ` + where + ` = $1`
	p, err := scanProfile(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return p, nil
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*models.BusinessProfile, error) {
	return r.getOne(ctx, "id", id)
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*models.BusinessProfile, error) {
	return r.getOne(ctx, "user_id", userID)
}

func (r *profileRepository) GetByStripeCustomer(ctx context.Context, customerID string) (*models.BusinessProfile, error) {
	return r.getOne(ctx, "stripe_customer_id", customerID)
}

func (r *profileRepository) list(ctx context.Context, query string, args ...any) ([]*models.BusinessProfile, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var profiles []*models.BusinessProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *profileRepository) ListExpiringInstagramTokens(ctx context.Context, before time.Time) ([]*models.BusinessProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM business_profiles
		WHERE instagram_access_token IS NOT NULL
		AND instagram_token_expires_at IS NOT NULL
		AND instagram_token_expires_at > NOW()
		AND instagram_token_expires_at < $1`
	return r.list(ctx, query, before)
}

func (r *profileRepository) ListInstagramConnected(ctx context.Context) ([]*models.BusinessProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM business_profiles
		WHERE instagram_access_token IS NOT NULL
		AND instagram_user_id IS NOT NULL
		AND (instagram_token_expires_at IS NULL OR instagram_token_expires_at > NOW())`
	return r.list(ctx, query)
}

func (r *profileRepository) SetInstagramConnection(ctx context.Context, userID string, conn models.InstagramConnection) error {
	query := `
		UPDATE business_profiles
		SET instagram_access_token = $1,
			instagram_token_expires_at = $2,
			instagram_user_id = $3,
			instagram_posting_enabled = TRUE,
			updated_at = $4
		WHERE user_id = $5
	`
	return r.execOne(ctx, query, conn.AccessToken, conn.ExpiresAt, conn.UserID, time.Now(), userID)
}

func (r *profileRepository) UpdateInstagramToken(ctx context.Context, profileID, encryptedToken string, expiresAt time.Time) error {
	query := `
		UPDATE business_profiles
		SET instagram_access_token = $1,
			instagram_token_expires_at = $2,
			updated_at = $3
		WHERE id = $4
	`
	return r.execOne(ctx, query, encryptedToken, expiresAt, time.Now(), profileID)
}

func (r *profileRepository) ClearInstagramConnection(ctx context.Context, userID string) error {
	query := `
		UPDATE business_profiles
		SET instagram_access_token = NULL,
			instagram_token_expires_at = NULL,
			instagram_user_id = NULL,
			instagram_posting_enabled = FALSE,
			updated_at = $1
		WHERE user_id = $2
	`
	return r.execOne(ctx, query, time.Now(), userID)
}

func (r *profileRepository) SetSubscription(ctx context.Context, userID, customerID, subscriptionID, status string) error {
	query := `
		UPDATE business_profiles
		SET stripe_customer_id = $1,
			stripe_subscription_id = NULLIF($2, ''),
			subscription_status = $3,
			updated_at = $4
		WHERE user_id = $5
	`
	return r.execOne(ctx, query, customerID, subscriptionID, status, time.Now(), userID)
}

func (r *profileRepository) UpdateSubscriptionStatus(ctx context.Context, subscriptionID, status string) error {
	query := `
		UPDATE business_profiles
		SET subscription_status = $1,
			updated_at = $2
		WHERE stripe_subscription_id = $3
	`
	return r.execOne(ctx, query, status, time.Now(), subscriptionID)
}

func (r *profileRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}
