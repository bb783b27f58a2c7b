package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// Order 建立後只允許修改 Status，Total 為建立當下的快照
type Order struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UserID     uint            `gorm:"not null;index" json:"user_id"`
	User       *User           `gorm:"foreignKey:UserID" json:"-"`
	Total      decimal.Decimal `gorm:"not null;type:decimal(12,2)" json:"total"`
	Status     OrderStatus     `gorm:"not null;type:varchar(20);default:pending;index" json:"status"`
	OrderItems []OrderItem     `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	CreatedAt  time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// OrderItem 單價與小計都是下單當下的快照，不隨商品異動
type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"not null;index" json:"order_id"`
	ProductID   uint            `gorm:"not null;index" json:"product_id"`
	Product     *Product        `gorm:"foreignKey:ProductID" json:"-"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"unit_price"`
	Subtotal    decimal.Decimal `gorm:"not null;type:decimal(12,2)" json:"subtotal"`
	ProductName string          `gorm:"->;-:migration" json:"product_name,omitempty"`
}

// OrderSummary 訂單列表用
type OrderSummary struct {
	ID        uint            `json:"id"`
	UserID    uint            `json:"user_id"`
	UserName  string          `json:"user_name,omitempty"`
	Total     decimal.Decimal `json:"total"`
	Status    OrderStatus     `json:"status"`
	ItemCount int             `json:"item_count"`
	CreatedAt time.Time       `json:"created_at"`
}
