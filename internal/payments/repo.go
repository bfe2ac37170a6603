package payments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fasalbajar/fasalbajar-backend/pkg/db/models"
	"github.com/fasalbajar/fasalbajar-backend/pkg/enums"
)

// Repository exposes payment transaction persistence. WithTx rebinds the same
// queries to an open transaction so reconciliation commits atomically with the
// order update.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateTransaction(ctx context.Context, txn *models.PaymentTransaction) error
	FindByProductID(ctx context.Context, productID uuid.UUID) (*models.PaymentTransaction, error)
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	SupersedePending(ctx context.Context, orderID uuid.UUID, reason string) (int64, error)
	MarkCompleted(ctx context.Context, id uuid.UUID) (int64, error)
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) (int64, error)
	SetOrderPaid(ctx context.Context, orderID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a payments repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.PaymentTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) FindByProductID(ctx context.Context, productID uuid.UUID) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	if err := r.db.WithContext(ctx).First(&txn, "product_id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.created_at ASC")
		}).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// SupersedePending fails any still-pending attempts for the order so at most
// one live attempt exists per order.
func (r *repository) SupersedePending(ctx context.Context, orderID uuid.UUID, reason string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PaymentTransaction{}).
		Where("order_id = ? AND status = ?", orderID, enums.PaymentStatusPending).
		Updates(map[string]any{
			"status":         enums.PaymentStatusFailed,
			"failure_reason": reason,
		})
	return res.RowsAffected, res.Error
}

// MarkCompleted settles a pending attempt. Zero rows means the row already
// reached a terminal status.
func (r *repository) MarkCompleted(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PaymentTransaction{}).
		Where("id = ? AND status = ?", id, enums.PaymentStatusPending).
		Updates(map[string]any{
			"status":         enums.PaymentStatusCompleted,
			"failure_reason": nil,
		})
	return res.RowsAffected, res.Error
}

// MarkFailed fails a pending attempt with the gateway's verdict.
func (r *repository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PaymentTransaction{}).
		Where("id = ? AND status = ?", id, enums.PaymentStatusPending).
		Updates(map[string]any{
			"status":         enums.PaymentStatusFailed,
			"failure_reason": reason,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) SetOrderPaid(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"payment_status": enums.PaymentStatusCompleted,
			"status":         enums.OrderStatusConfirmed,
		}).Error
}
