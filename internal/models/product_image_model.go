package models

import "time"

type ProductImage struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	MenuItemID   *string   `db:"menu_item_id" json:"menu_item_id"`
	ImageURL     string    `db:"image_url" json:"image_url"`
	StoragePath  string    `db:"storage_path" json:"storage_path"`
	ProductName  string    `db:"product_name" json:"product_name"`
	Description  string    `db:"description" json:"description"`
	IsFeatured   bool      `db:"is_featured" json:"is_featured"`
	DisplayOrder int       `db:"display_order" json:"display_order"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
