package model

import "time"

// 配送先住所。注文ごとに新規作成する（既存との重複排除はしない）
type UserAddress struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       int64     `gorm:"not null;index" json:"user_id"`
	AddressLine1 string    `gorm:"type:varchar(255);not null" json:"address_line1"`
	AddressLine2 string    `gorm:"type:varchar(255)" json:"address_line2"`
	City         string    `gorm:"type:varchar(255);not null" json:"city"`
	State        string    `gorm:"type:varchar(100)" json:"state"`
	PostalCode   string    `gorm:"type:varchar(20);not null" json:"postal_code"`
	Country      string    `gorm:"type:varchar(100);not null" json:"country"`
	IsDefault    bool      `gorm:"not null;default:false" json:"is_default"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
