package transfer

type UploadProductImage struct {
	ProductName string `form:"productName" validate:"required"`
	MenuItemID  string `form:"menuItemId"`
	Description string `form:"description"`
}

type ReorderProductImagesRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid"`
}
