package payments

import (
	"time"

	"github.com/google/uuid"

	"github.com/fasalbajar/fasalbajar-backend/pkg/db/models"
	"github.com/fasalbajar/fasalbajar-backend/pkg/enums"
	"github.com/fasalbajar/fasalbajar-backend/pkg/esewa"
)

// InitiateRequest starts an online payment attempt for an order.
type InitiateRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
}

// InitiateResponse carries the signed gateway form plus our transaction record.
type InitiateResponse struct {
	Transaction TransactionDTO        `json:"transaction"`
	Payload     *esewa.PaymentPayload `json:"payload"`
}

// TransactionDTO is the API shape of one payment attempt.
type TransactionDTO struct {
	ID            uuid.UUID           `json:"id"`
	OrderID       uuid.UUID           `json:"order_id"`
	ProductID     uuid.UUID           `json:"product_id"`
	AmountPaisa   int                 `json:"amount_paisa"`
	Status        enums.PaymentStatus `json:"status"`
	FailureReason *string             `json:"failure_reason,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// FromModel maps a persisted transaction onto the API shape.
func FromModel(txn *models.PaymentTransaction) *TransactionDTO {
	if txn == nil {
		return nil
	}
	return &TransactionDTO{
		ID:            txn.ID,
		OrderID:       txn.OrderID,
		ProductID:     txn.ProductID,
		AmountPaisa:   txn.AmountPaisa,
		Status:        txn.Status,
		FailureReason: txn.FailureReason,
		CreatedAt:     txn.CreatedAt,
		UpdatedAt:     txn.UpdatedAt,
	}
}
