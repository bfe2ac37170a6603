package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/fasalbajar/fasalbajar-backend/pkg/db/models"
	"github.com/fasalbajar/fasalbajar-backend/pkg/enums"
	"github.com/fasalbajar/fasalbajar-backend/pkg/pagination"
)

// CheckoutItemRequest is one basket line at checkout.
type CheckoutItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// CheckoutRequest is the buyer's order creation payload.
type CheckoutRequest struct {
	Items           []CheckoutItemRequest `json:"items" validate:"required,min=1,dive"`
	ShippingAddress string                `json:"shipping_address" validate:"required"`
	City            string                `json:"city" validate:"required"`
	State           string                `json:"state" validate:"required"`
	PinCode         string                `json:"pin_code" validate:"required"`
	PaymentMethod   enums.PaymentMethod   `json:"payment_method" validate:"required"`
}

// DecisionRequest is the farmer's accept/decline payload for one item.
type DecisionRequest struct {
	Status enums.OrderItemStatus `json:"status" validate:"required"`
	Notes  *string               `json:"notes,omitempty"`
}

// OrderItemDTO is the transport shape for one order line.
type OrderItemDTO struct {
	ID              uuid.UUID             `json:"id"`
	OrderID         uuid.UUID             `json:"order_id"`
	ProductID       uuid.UUID             `json:"product_id"`
	FarmerID        uuid.UUID             `json:"farmer_id"`
	ProductName     string                `json:"product_name"`
	Quantity        int                   `json:"quantity"`
	PricePaisa      int                   `json:"price_paisa"`
	SubtotalPaisa   int                   `json:"subtotal_paisa"`
	Status          enums.OrderItemStatus `json:"status"`
	FarmerNotes     *string               `json:"farmer_notes,omitempty"`
	SupplierID      *uuid.UUID            `json:"supplier_id,omitempty"`
	DeliveryNotes   *string               `json:"delivery_notes,omitempty"`
	ProofOfDelivery *string               `json:"proof_of_delivery,omitempty"`
	AssignedAt      *time.Time            `json:"assigned_at,omitempty"`
	CompletedAt     *time.Time            `json:"completed_at,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
}

// OrderDTO is the transport shape for a buyer's order. DisplayStatus is derived
// from the items at read time; the stored status stays coarse.
type OrderDTO struct {
	ID              uuid.UUID           `json:"id"`
	BuyerID         uuid.UUID           `json:"buyer_id"`
	OrderNumber     string              `json:"order_number"`
	ShippingAddress string              `json:"shipping_address"`
	City            string              `json:"city"`
	State           string              `json:"state"`
	PinCode         string              `json:"pin_code"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	PaymentStatus   enums.PaymentStatus `json:"payment_status"`
	Status          enums.OrderStatus   `json:"status"`
	DisplayStatus   DisplayStatus       `json:"display_status"`
	TotalPaisa      int                 `json:"total_paisa"`
	Items           []OrderItemDTO      `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// ListInput pages a buyer's order history.
type ListInput struct {
	BuyerID    uuid.UUID
	Pagination pagination.Params
}

// ListResult is one page of orders plus the cursor for the next page.
type ListResult struct {
	Items      []OrderDTO `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// ItemListInput pages a farmer's incoming order lines.
type ItemListInput struct {
	FarmerID   uuid.UUID
	Status     *enums.OrderItemStatus
	Pagination pagination.Params
}

// ItemListResult is one page of order items plus the cursor for the next page.
type ItemListResult struct {
	Items      []OrderItemDTO `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

func ItemFromModel(item *models.OrderItem) *OrderItemDTO {
	if item == nil {
		return nil
	}
	return &OrderItemDTO{
		ID:              item.ID,
		OrderID:         item.OrderID,
		ProductID:       item.ProductID,
		FarmerID:        item.FarmerID,
		ProductName:     item.ProductName,
		Quantity:        item.Quantity,
		PricePaisa:      item.PricePaisa,
		SubtotalPaisa:   item.SubtotalPaisa,
		Status:          item.Status,
		FarmerNotes:     item.FarmerNotes,
		SupplierID:      item.SupplierID,
		DeliveryNotes:   item.DeliveryNotes,
		ProofOfDelivery: item.ProofOfDelivery,
		AssignedAt:      item.AssignedAt,
		CompletedAt:     item.CompletedAt,
		CreatedAt:       item.CreatedAt,
	}
}

func itemsFromModels(rows []models.OrderItem) []OrderItemDTO {
	out := make([]OrderItemDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ItemFromModel(&rows[i]))
	}
	return out
}

func FromModel(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}
	return &OrderDTO{
		ID:              order.ID,
		BuyerID:         order.BuyerID,
		OrderNumber:     order.OrderNumber,
		ShippingAddress: order.ShippingAddress,
		City:            order.City,
		State:           order.State,
		PinCode:         order.PinCode,
		PaymentMethod:   order.PaymentMethod,
		PaymentStatus:   order.PaymentStatus,
		Status:          order.Status,
		DisplayStatus:   DeriveDisplayStatus(order, order.Items),
		TotalPaisa:      order.TotalPaisa,
		Items:           itemsFromModels(order.Items),
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func fromModels(rows []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
