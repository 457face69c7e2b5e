package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// subtotal/tax/totalは作成時に一度だけ計算して以後変更しない
type Order struct {
	ID                int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID            int64       `gorm:"not null;index" json:"user_id"`
	OrderDate         time.Time   `gorm:"not null;index" json:"order_date"`
	ShippingAddressID int64       `gorm:"not null" json:"shipping_address_id"`
	ShippingMethod    string      `gorm:"type:varchar(100)" json:"shipping_method"`
	PaymentMethod     string      `gorm:"type:varchar(100)" json:"payment_method"`
	Subtotal          int64       `gorm:"not null" json:"subtotal"`
	Tax               int64       `gorm:"not null" json:"tax"`
	Total             int64       `gorm:"not null" json:"total"`
	Notes             string      `gorm:"type:text" json:"notes"`
	Status            OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	TrackingNumber    string      `gorm:"type:varchar(36);not null;uniqueIndex" json:"tracking_number"`
	CreatedAt         time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
