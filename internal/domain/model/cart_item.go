package model

import "time"

// カートの明細
// (cart, product, size)で一意。同じ組み合わせの追加は数量加算になる
type CartItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    int64     `gorm:"not null;index;uniqueIndex:idx_cart_product_size" json:"cart_id"`
	ProductID int64     `gorm:"not null;index;uniqueIndex:idx_cart_product_size" json:"product_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	Size      string    `gorm:"type:varchar(20);uniqueIndex:idx_cart_product_size" json:"size"`
	AddedAt   time.Time `gorm:"not null;autoCreateTime" json:"added_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
