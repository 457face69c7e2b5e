package model

import "time"

type CartStatus string

const (
	CartStatusActive  CartStatus = "ACTIVE"
	CartStatusOrdered CartStatus = "ORDERED"
)

// 1ユーザーにつきカートは1行。statusがACTIVE⇄ORDEREDで切り替わる
type Cart struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64      `gorm:"not null;uniqueIndex" json:"user_id"`
	Status    CartStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
