package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postpilot/postpilot-api/internal/apperrors"
	"github.com/postpilot/postpilot-api/internal/models"
	"github.com/postpilot/postpilot-api/internal/transfer"
)

var (
	pngBytes  = append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, make([]byte, 32)...)
	jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, 32)...)
	gifBytes  = append([]byte("GIF89a"), make([]byte, 32)...)
)

func TestSniffImage(t *testing.T) {
	tests := []struct {
		name    string
		file    []byte
		ext     string
		wantErr bool
	}{
		{"png", pngBytes, "png", false},
		{"jpeg", jpegBytes, "jpg", false},
		{"gif not allowed", gifBytes, "", true},
		{"text", []byte("hello world"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := SniffImage(tt.file)
			if tt.wantErr {
				var vErr *apperrors.ValidationError
				assert.ErrorAs(t, err, &vErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ext, kind.Extension)
		})
	}
}

func TestUploadProductImage(t *testing.T) {
	images := &fakeImages{}
	store := &fakeStore{}
	svc := NewProductImageService(&fakeTx{}, images, store)

	img, err := svc.Upload(context.Background(), testUser, &transfer.UploadProductImage{
		ProductName: "Sourdough Loaf",
		MenuItemID:  "m1",
	}, pngBytes)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(img.StoragePath, "product-images/"+testUser+"/"))
	assert.True(t, strings.HasSuffix(img.StoragePath, ".png"))
	assert.Equal(t, "https://cdn.example.com/"+img.StoragePath, img.ImageURL)
	assert.Equal(t, "image/png", store.uploaded[img.StoragePath])
	require.NotNil(t, img.MenuItemID)
	assert.Equal(t, "m1", *img.MenuItemID)
	assert.Len(t, images.images, 1)
}

func TestUploadProductImage_Rejects(t *testing.T) {
	store := &fakeStore{}
	svc := NewProductImageService(&fakeTx{}, &fakeImages{}, store)

	_, err := svc.Upload(context.Background(), testUser, &transfer.UploadProductImage{ProductName: "Roll"}, gifBytes)
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)

	_, err = svc.Upload(context.Background(), testUser, &transfer.UploadProductImage{}, pngBytes)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "productName", vErr.Field)

	assert.Empty(t, store.uploaded)
}

func TestReorderProductImages(t *testing.T) {
	images := &fakeImages{images: []models.ProductImage{
		{ID: "a", UserID: testUser},
		{ID: "b", UserID: testUser},
		{ID: "c", UserID: "other"},
	}}
	tx := &fakeTx{}
	svc := NewProductImageService(tx, images, &fakeStore{})

	require.NoError(t, svc.Reorder(context.Background(), testUser, []string{"b", "a"}))
	assert.Equal(t, map[string]int{"b": 0, "a": 1}, images.orders)
	assert.Equal(t, 1, tx.calls)

	err := svc.Reorder(context.Background(), testUser, []string{"a", "c"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSetFeaturedProductImage(t *testing.T) {
	images := &fakeImages{images: []models.ProductImage{{ID: "a", UserID: testUser}}}
	svc := NewProductImageService(&fakeTx{}, images, &fakeStore{})

	require.NoError(t, svc.SetFeatured(context.Background(), testUser, "a"))
	assert.Equal(t, "a", images.featured)

	err := svc.SetFeatured(context.Background(), "other", "a")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteProductImage(t *testing.T) {
	images := &fakeImages{images: []models.ProductImage{
		{ID: "a", UserID: testUser, StoragePath: "product-images/user-1/a.png"},
	}}
	store := &fakeStore{}
	svc := NewProductImageService(&fakeTx{}, images, store)

	err := svc.Delete(context.Background(), "other", "a")
	var ownErr *apperrors.OwnershipError
	require.ErrorAs(t, err, &ownErr)
	assert.Empty(t, store.deleted)

	require.NoError(t, svc.Delete(context.Background(), testUser, "a"))
	assert.Equal(t, []string{"a"}, images.removed)
	assert.Equal(t, []string{"product-images/user-1/a.png"}, store.deleted)
}
