package model

import (
	"github.com/shopspring/decimal"
)

type Category struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"not null;type:varchar(100)" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Active      bool   `gorm:"not null;default:true;index" json:"active"`
	BaseModel
}

// Product 只做軟刪除(Active=false)，歷史訂單會持續引用
type Product struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"not null;type:varchar(150)" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	Price        decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"`
	Stock        int             `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	CategoryID   *uint           `gorm:"index" json:"category_id"`
	Category     *Category       `gorm:"foreignKey:CategoryID" json:"-"`
	ImageURL     string          `gorm:"type:varchar(255)" json:"image_url"`
	Active       bool            `gorm:"not null;default:true;index" json:"active"`
	CategoryName string          `gorm:"->;-:migration" json:"category_name,omitempty"`
	BaseModel
}
