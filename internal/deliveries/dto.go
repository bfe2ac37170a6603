package deliveries

import (
	"time"

	"github.com/google/uuid"

	"github.com/fasalbajar/fasalbajar-backend/pkg/db/models"
	"github.com/fasalbajar/fasalbajar-backend/pkg/enums"
	"github.com/fasalbajar/fasalbajar-backend/pkg/pagination"
)

// DeliveryDTO is an order item seen from the supplier's side, joined with the
// shipping destination the supplier needs to plan the run.
type DeliveryDTO struct {
	ID              uuid.UUID             `json:"id"`
	OrderID         uuid.UUID             `json:"order_id"`
	OrderNumber     string                `json:"order_number"`
	ProductName     string                `json:"product_name"`
	Quantity        int                   `json:"quantity"`
	SubtotalPaisa   int                   `json:"subtotal_paisa"`
	Status          enums.OrderItemStatus `json:"status"`
	FarmerID        uuid.UUID             `json:"farmer_id"`
	SupplierID      *uuid.UUID            `json:"supplier_id,omitempty"`
	ShippingAddress string                `json:"shipping_address"`
	City            string                `json:"city"`
	State           string                `json:"state"`
	PinCode         string                `json:"pin_code"`
	DeliveryNotes   *string               `json:"delivery_notes,omitempty"`
	ProofOfDelivery *string               `json:"proof_of_delivery,omitempty"`
	AssignedAt      *time.Time            `json:"assigned_at,omitempty"`
	CompletedAt     *time.Time            `json:"completed_at,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
}

// DeliveryRow is the repo-level join row backing DeliveryDTO.
type DeliveryRow struct {
	models.OrderItem
	OrderNumber     string
	ShippingAddress string
	City            string
	State           string
	PinCode         string
}

// AcceptRequest claims one available delivery.
type AcceptRequest struct {
	OrderItemID uuid.UUID `json:"order_item_id" validate:"required"`
}

// StatusUpdateRequest advances a claimed delivery along the sequence.
type StatusUpdateRequest struct {
	Status          enums.OrderItemStatus `json:"status" validate:"required"`
	DeliveryNotes   *string               `json:"delivery_notes,omitempty"`
	ProofOfDelivery *string               `json:"proof_of_delivery,omitempty"`
}

// ListInput pages supplier-facing delivery queries.
type ListInput struct {
	SupplierID uuid.UUID
	Pagination pagination.Params
}

// ListResult is one page of deliveries plus the cursor for the next page.
type ListResult struct {
	Items      []DeliveryDTO `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

func fromRow(row *DeliveryRow) *DeliveryDTO {
	if row == nil {
		return nil
	}
	return &DeliveryDTO{
		ID:              row.ID,
		OrderID:         row.OrderID,
		OrderNumber:     row.OrderNumber,
		ProductName:     row.ProductName,
		Quantity:        row.Quantity,
		SubtotalPaisa:   row.SubtotalPaisa,
		Status:          row.Status,
		FarmerID:        row.FarmerID,
		SupplierID:      row.SupplierID,
		ShippingAddress: row.ShippingAddress,
		City:            row.City,
		State:           row.State,
		PinCode:         row.PinCode,
		DeliveryNotes:   row.DeliveryNotes,
		ProofOfDelivery: row.ProofOfDelivery,
		AssignedAt:      row.AssignedAt,
		CompletedAt:     row.CompletedAt,
		CreatedAt:       row.CreatedAt,
	}
}

func fromRows(rows []DeliveryRow) []DeliveryDTO {
	out := make([]DeliveryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *fromRow(&rows[i]))
	}
	return out
}
