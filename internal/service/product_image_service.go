package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/postpilot/postpilot-api/internal/apperrors"
	"github.com/postpilot/postpilot-api/internal/models"
	"github.com/postpilot/postpilot-api/internal/repository"
	"github.com/postpilot/postpilot-api/internal/transfer"
)

const maxProductImageSize = 10 << 20

var allowedImageTypes = map[string]struct{}{
	"jpg": {}, "png": {}, "webp": {},
}

type ProductImageService interface {
	Upload(ctx context.Context, userID string, meta *transfer.UploadProductImage, file []byte) (*models.ProductImage, error)
	List(ctx context.Context, userID string) ([]models.ProductImage, error)
	SetFeatured(ctx context.Context, userID, id string) error
	Reorder(ctx context.Context, userID string, ids []string) error
	Delete(ctx context.Context, userID, id string) error
}

type productImageService struct {
	tx     repository.Transactor
	images repository.ProductImageRepository
	store  ObjectStore
}

func NewProductImageService(tx repository.Transactor, images repository.ProductImageRepository, store ObjectStore) ProductImageService {
	return &productImageService{tx: tx, images: images, store: store}
}

// SniffImage accepts JPEG, PNG and WebP content only.
func SniffImage(file []byte) (types.Type, error) {
	kind, err := filetype.Match(file)
	if err != nil || kind == types.Unknown {
		return types.Unknown, apperrors.Validation("file", "Unsupported file type")
	}
	if _, ok := allowedImageTypes[kind.Extension]; !ok {
		return types.Unknown, apperrors.Validation("file", fmt.Sprintf("File type %s is not allowed", kind.Extension))
	}
	return kind, nil
}

func (s *productImageService) Upload(ctx context.Context, userID string, meta *transfer.UploadProductImage, file []byte) (*models.ProductImage, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if meta.ProductName == "" {
		return nil, apperrors.Required("productName")
	}
	if len(file) == 0 {
		return nil, apperrors.Validation("file", "No file selected")
	}
	if len(file) > maxProductImageSize {
		return nil, apperrors.Validation("file", "File is larger than 10MB")
	}

	kind, err := SniffImage(file)
	if err != nil {
		return nil, err
	}

	id, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	key := fmt.Sprintf("product-images/%s/%s.%s", userID, id, kind.Extension)

	var menuItemID *string
	if meta.MenuItemID != "" {
		menuItemID = &meta.MenuItemID
	}

	order, err := s.images.NextDisplayOrder(ctx, userID, menuItemID)
	if err != nil {
		return nil, err
	}

	url, err := s.store.Upload(ctx, key, file, kind.MIME.Value)
	if err != nil {
		return nil, fmt.Errorf("error uploading file: %w", err)
	}

	img := &models.ProductImage{
		UserID:       userID,
		MenuItemID:   menuItemID,
		ImageURL:     url,
		StoragePath:  key,
		ProductName:  meta.ProductName,
		Description:  meta.Description,
		DisplayOrder: order,
	}
	if err := s.images.Create(ctx, img); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			slog.Warn("could not remove orphaned upload", "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("error saving product image: %w", err)
	}

	slog.Info("product image uploaded", "user_id", userID, "image_id", img.ID, "key", key)
	return img, nil
}

func (s *productImageService) List(ctx context.Context, userID string) ([]models.ProductImage, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	images, err := s.images.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if images == nil {
		images = []models.ProductImage{}
	}
	return images, nil
}

func (s *productImageService) SetFeatured(ctx context.Context, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if err := s.images.SetFeatured(ctx, userID, id); err != nil {
		return notFoundAs(err, "Product image")
	}
	return nil
}

// Reorder assigns display_order by position in ids.
func (s *productImageService) Reorder(ctx context.Context, userID string, ids []string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if len(ids) == 0 {
		return apperrors.Required("ids")
	}
	return s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		for i, id := range ids {
			if err := s.images.UpdateDisplayOrder(ctx, tx, userID, id, i); err != nil {
				return notFoundAs(err, "Product image")
			}
		}
		return nil
	})
}

func (s *productImageService) Delete(ctx context.Context, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	img, err := s.images.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if img == nil {
		return apperrors.NotFound("Product image")
	}
	if img.UserID != userID {
		return apperrors.Ownership("product image")
	}

	if err := s.images.Remove(ctx, userID, id); err != nil {
		return notFoundAs(err, "Product image")
	}
	if err := s.store.Delete(ctx, img.StoragePath); err != nil {
		slog.Warn("could not delete stored object", "key", img.StoragePath, "error", err)
	}
	return nil
}
