package events

import "context"

// 注文系イベントのルーティングキー
const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
)

type OrderCreatedEvent struct {
	OrderID        int64  `json:"order_id"`
	UserID         int64  `json:"user_id"`
	TrackingNumber string `json:"tracking_number"`
	Total          int64  `json:"total"`
	ItemCount      int    `json:"item_count"`
}

type OrderStatusChangedEvent struct {
	OrderID int64  `json:"order_id"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// 注文イベントの発行の約束。commit後にベストエフォートで呼ぶ
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
	Close()
}

// ブローカー未設定の環境用
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, routingKey string, payload any) error { return nil }
func (NopPublisher) Close()                                                            {}
