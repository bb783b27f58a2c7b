package producer

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

type OrderEvent string

const (
	OrderEventPlaced        OrderEvent = "order.placed"
	OrderEventStatusChanged OrderEvent = "order.status_changed"

	headerEventType = "event_type"
)

// OrderEventPublisher 訂單事件發佈，失敗不影響已提交的訂單
type OrderEventPublisher interface {
	PublishOrderPlaced(ctx context.Context, order *model.Order) error
	PublishStatusChanged(ctx context.Context, orderID uint, status model.OrderStatus) error
}

type OrderPlacedItem struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type OrderPlacedMessage struct {
	OrderID   uint              `json:"order_id"`
	UserID    uint              `json:"user_id"`
	Total     decimal.Decimal   `json:"total"`
	Status    model.OrderStatus `json:"status"`
	Items     []OrderPlacedItem `json:"items"`
	CreatedAt time.Time         `json:"created_at"`
}

type StatusChangedMessage struct {
	OrderID   uint              `json:"order_id"`
	Status    model.OrderStatus `json:"status"`
	ChangedAt time.Time         `json:"changed_at"`
}

type OrderProducer struct {
	producer Producer
	now      func() time.Time
}

func NewOrderProducer(producer Producer) *OrderProducer {
	return &OrderProducer{producer: producer, now: time.Now}
}

func (p *OrderProducer) PublishOrderPlaced(ctx context.Context, order *model.Order) error {
	payload := OrderPlacedMessage{
		OrderID:   order.ID,
		UserID:    order.UserID,
		Total:     order.Total,
		Status:    order.Status,
		Items:     make([]OrderPlacedItem, 0, len(order.OrderItems)),
		CreatedAt: order.CreatedAt,
	}
	for _, item := range order.OrderItems {
		payload.Items = append(payload.Items, OrderPlacedItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}
	msg, err := convertToMessage(OrderEventPlaced, order.ID, payload)
	if err != nil {
		return err
	}
	return p.producer.Produce(ctx, []kafka.Message{msg})
}

func (p *OrderProducer) PublishStatusChanged(ctx context.Context, orderID uint, status model.OrderStatus) error {
	msg, err := convertToMessage(OrderEventStatusChanged, orderID, StatusChangedMessage{
		OrderID:   orderID,
		Status:    status,
		ChangedAt: p.now().UTC(),
	})
	if err != nil {
		return err
	}
	return p.producer.Produce(ctx, []kafka.Message{msg})
}

// 以訂單 ID 當 key，同一張訂單的事件落在同一個 partition
func convertToMessage(event OrderEvent, orderID uint, payload any) (kafka.Message, error) {
	value, err := json.Marshal(payload)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(orderID), 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: headerEventType, Value: []byte(event)},
		},
	}, nil
}

// NoopPublisher 未設定 kafka broker 時使用
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderPlaced(context.Context, *model.Order) error { return nil }

func (NoopPublisher) PublishStatusChanged(context.Context, uint, model.OrderStatus) error {
	return nil
}

var (
	_ OrderEventPublisher = (*OrderProducer)(nil)
	_ OrderEventPublisher = NoopPublisher{}
)
