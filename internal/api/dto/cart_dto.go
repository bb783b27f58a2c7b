package dto

type AddCartItemDTO struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// UpdateCartItemDTO quantity <= 0 等同移除
type UpdateCartItemDTO struct {
	Quantity int `json:"quantity"`
}
