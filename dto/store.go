package dto

// ==================== STORE DTOs ====================

type StoreItemResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PricePoints int    `json:"price_points"`
	ImageSrc    string `json:"image_src"`
	Owned       bool   `json:"owned"`
}

type PurchaseRequest struct {
	ItemID uint `json:"item_id" validate:"required,gt=0"`
	Equip  bool `json:"equip"`
}

func (r PurchaseRequest) Validate() error {
	return GetValidator().Struct(r)
}

type PurchaseResponse struct {
	Status    string `json:"status"` // purchased, already_owned
	NewPoints int    `json:"new_points"`
	Equipped  bool   `json:"equipped"`
}
