package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/postpilot/postpilot-api/internal/models"
)

type ProductImageRepository interface {
	Create(ctx context.Context, img *models.ProductImage) error
	GetByID(ctx context.Context, id string) (*models.ProductImage, error)
	ListByUserID(ctx context.Context, userID string) ([]models.ProductImage, error)
	NextDisplayOrder(ctx context.Context, userID string, menuItemID *string) (int, error)
	SetFeatured(ctx context.Context, userID, id string) error
	UpdateDisplayOrder(ctx context.Context, tx *sql.Tx, userID, id string, order int) error
	Remove(ctx context.Context, userID, id string) error
}

type productImageRepository struct {
	db *sql.DB
}

func NewProductImageRepository(db *sql.DB) ProductImageRepository {
	return &productImageRepository{db: db}
}

const productImageColumns = `
	id, user_id, menu_item_id, image_url, storage_path, product_name,
	COALESCE(description, ''), is_featured, display_order, created_at`

func scanProductImage(row rowScanner) (*models.ProductImage, error) {
	var img models.ProductImage
	err := row.Scan(
		&img.ID,
		&img.UserID,
		&img.MenuItemID,
		&img.ImageURL,
		&img.StoragePath,
		&img.ProductName,
		&img.Description,
		&img.IsFeatured,
		&img.DisplayOrder,
		&img.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *productImageRepository) Create(ctx context.Context, img *models.ProductImage) error {
	query := `
		INSERT INTO product_images (user_id, menu_item_id, image_url, storage_path, product_name, description, is_featured, display_order)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		img.UserID,
		img.MenuItemID,
		img.ImageURL,
		img.StoragePath,
		img.ProductName,
		img.Description,
		img.IsFeatured,
		img.DisplayOrder,
	).Scan(&img.ID, &img.CreatedAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *productImageRepository) GetByID(ctx context.Context, id string) (*models.ProductImage, error) {
	query := `SELECT ` + productImageColumns + ` FROM product_images WHERE id = $1`

	img, err := scanProductImage(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return img, nil
}

func (r *productImageRepository) ListByUserID(ctx context.Context, userID string) ([]models.ProductImage, error) {
	query := `SELECT ` + productImageColumns + ` FROM product_images WHERE user_id = $1 ORDER BY display_order, created_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var images []models.ProductImage
	for rows.Next() {
		img, err := scanProductImage(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		images = append(images, *img)
	}
	return images, rows.Err()
}

func (r *productImageRepository) NextDisplayOrder(ctx context.Context, userID string, menuItemID *string) (int, error) {
	query := `
		SELECT COALESCE(MAX(display_order) + 1, 0)
		FROM product_images
		WHERE user_id = $1 AND menu_item_id IS NOT DISTINCT FROM $2
	`

	var next int
	if err := r.db.QueryRowContext(ctx, query, userID, menuItemID).Scan(&next); err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return next, nil
}

// SetFeatured flips the flag for every image of the same menu item in one statement, so
// at most one of them is featured at any point.
func (r *productImageRepository) SetFeatured(ctx context.Context, userID, id string) error {
	query := `
		UPDATE product_images
		SET is_featured = (id = $1)
		WHERE user_id = $2
		AND menu_item_id IS NOT DISTINCT FROM (
			SELECT menu_item_id FROM product_images WHERE id = $1 AND user_id = $2
		)
		AND EXISTS (SELECT 1 FROM product_images WHERE id = $1 AND user_id = $2)
	`

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

func (r *productImageRepository) UpdateDisplayOrder(ctx context.Context, tx *sql.Tx, userID, id string, order int) error {
	query := `UPDATE product_images SET display_order = $1 WHERE id = $2 AND user_id = $3`

	var res sql.Result
	var err error
	if tx != nil {
		res, err = tx.ExecContext(ctx, query, order, id, userID)
	} else {
		res, err = r.db.ExecContext(ctx, query, order, id, userID)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *productImageRepository) Remove(ctx context.Context, userID, id string) error {
	query := `DELETE FROM product_images WHERE id = $1 AND user_id = $2`
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
