package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/fasalbajar/fasalbajar-backend/pkg/enums"
)

// OrderItem is one product line within an order. The farmer decides it, then a
// single supplier claims it and walks it through the delivery sequence.
// FarmerID is denormalized from the product so ownership checks and farmer
// listings never join through products.
type OrderItem struct {
	ID              uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID             `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID       uuid.UUID             `gorm:"column:product_id;type:uuid;not null"`
	FarmerID        uuid.UUID             `gorm:"column:farmer_id;type:uuid;not null;index"`
	ProductName     string                `gorm:"column:product_name;not null"`
	Quantity        int                   `gorm:"column:quantity;not null"`
	PricePaisa      int                   `gorm:"column:price_paisa;not null"`
	SubtotalPaisa   int                   `gorm:"column:subtotal_paisa;not null"`
	Status          enums.OrderItemStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	FarmerNotes     *string               `gorm:"column:farmer_notes"`
	SupplierID      *uuid.UUID            `gorm:"column:supplier_id;type:uuid;index"`
	DeliveryNotes   *string               `gorm:"column:delivery_notes"`
	ProofOfDelivery *string               `gorm:"column:proof_of_delivery"`
	AssignedAt      *time.Time            `gorm:"column:assigned_at"`
	CompletedAt     *time.Time            `gorm:"column:completed_at"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
