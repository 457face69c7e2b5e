package model

import (
	"time"

	"gorm.io/gorm"
)

// Priceは最小通貨単位（セント）のint64
type Product struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Price       int64          `gorm:"not null" json:"price"`
	Stock       int64          `gorm:"not null" json:"stock"`
	Image       string         `gorm:"type:varchar(500)" json:"image"`
	Sale        bool           `gorm:"not null;default:false" json:"sale"`
	Featured    bool           `gorm:"not null;default:false" json:"featured"`
	CategoryID  int64          `gorm:"not null;index" json:"category_id"`
	CreatedAt   time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
