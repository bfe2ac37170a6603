package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fasalbajar/fasalbajar-backend/pkg/db/models"
	"github.com/fasalbajar/fasalbajar-backend/pkg/enums"
)

// Repository defines the persistence surface used by the order service.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrder(ctx context.Context, order *models.Order) error
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrdersByBuyer(ctx context.Context, input ListInput) ([]models.Order, string, error)

	FindItem(ctx context.Context, id uuid.UUID) (*models.OrderItem, error)
	ListItemsByFarmer(ctx context.Context, input ItemListInput) ([]models.OrderItem, string, error)
	UpdateItemStatusFrom(ctx context.Context, itemID uuid.UUID, from, to enums.OrderItemStatus, notes *string) (int64, error)

	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	DecrementProductStock(ctx context.Context, productID uuid.UUID, qty int) (int64, error)
}
