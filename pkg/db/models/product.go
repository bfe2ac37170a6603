package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a farmer's listed produce.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FarmerID    uuid.UUID `gorm:"column:farmer_id;type:uuid;not null;index"`
	ProductName string    `gorm:"column:product_name;not null"`
	ProductType string    `gorm:"column:product_type;not null"`
	Quantity    int       `gorm:"column:quantity;not null"`
	Unit        string    `gorm:"column:unit;not null"`
	PricePaisa  int       `gorm:"column:price_paisa;not null"`
	Location    *string   `gorm:"column:location"`
	Image       *string   `gorm:"column:image"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
