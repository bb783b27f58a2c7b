package dto

import "github.com/shopspring/decimal"

// ProductDTO 新增與修改商品共用，price 接受字串或數字
type ProductDTO struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  *uint           `json:"category_id"`
	ImageURL    string          `json:"image_url"`
	Active      *bool           `json:"active"`
}

type RestockDTO struct {
	Quantity int `json:"quantity"`
}

type CategoryDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}
