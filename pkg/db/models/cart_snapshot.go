package models

import "time"

// CartSnapshot is the persisted copy of one session's cart: the full JSON array of items.
type CartSnapshot struct {
	CartKey   string    `gorm:"column:cart_key;primaryKey"`
	Payload   string    `gorm:"column:payload;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (CartSnapshot) TableName() string { return "cart_snapshots" }
