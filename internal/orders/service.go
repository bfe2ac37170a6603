package orders

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fasalbajar/fasalbajar-backend/internal/notifications"
	"github.com/fasalbajar/fasalbajar-backend/pkg/db"
	"github.com/fasalbajar/fasalbajar-backend/pkg/db/models"
	"github.com/fasalbajar/fasalbajar-backend/pkg/enums"
	pkgerrors "github.com/fasalbajar/fasalbajar-backend/pkg/errors"
)

const (
	orderNumberPrefix   = "FB"
	orderNumberAttempts = 3
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type notifier interface {
	Publish(ctx context.Context, event notifications.Event)
}

// Service defines order operations for buyers and farmers.
type Service interface {
	Checkout(ctx context.Context, buyerID uuid.UUID, req CheckoutRequest) (*OrderDTO, error)
	ListMine(ctx context.Context, input ListInput) (*ListResult, error)
	Get(ctx context.Context, buyerID, orderID uuid.UUID) (*OrderDTO, error)
	ListFarmerItems(ctx context.Context, input ItemListInput) (*ItemListResult, error)
	DecideItem(ctx context.Context, farmerID, itemID uuid.UUID, req DecisionRequest) (*OrderItemDTO, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	notifier notifier
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner, notifier notifier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &service{repo: repo, tx: tx, notifier: notifier}, nil
}

func (s *service) Checkout(ctx context.Context, buyerID uuid.UUID, req CheckoutRequest) (*OrderDTO, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	if !req.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	for _, field := range []string{req.ShippingAddress, req.City, req.State, req.PinCode} {
		if strings.TrimSpace(field) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping_address, city, state, and pin_code are required")
		}
	}
	seen := map[uuid.UUID]struct{}{}
	for _, line := range req.Items {
		if line.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required on every item")
		}
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive on every item")
		}
		if _, dup := seen[line.ProductID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate product in basket")
		}
		seen[line.ProductID] = struct{}{}
	}

	var order *models.Order
	var lastErr error
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order, lastErr = s.runCheckoutTx(ctx, buyerID, req)
		if lastErr == nil {
			break
		}
		if !db.IsUniqueViolation(lastErr, "idx_orders_order_number") {
			return nil, lastErr
		}
	}
	if lastErr != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, lastErr, "allocate order number")
	}

	s.notifyFarmers(ctx, order)
	return FromModel(order), nil
}

func (s *service) runCheckoutTx(ctx context.Context, buyerID uuid.UUID, req CheckoutRequest) (*models.Order, error) {
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		items := make([]models.OrderItem, 0, len(req.Items))
		total := 0
		for _, line := range req.Items {
			product, err := repo.FindProduct(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
			}

			rows, err := repo.DecrementProductStock(ctx, product.ID, line.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve stock")
			}
			if rows == 0 {
				return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("insufficient stock for %s", product.ProductName))
			}

			subtotal := product.PricePaisa * line.Quantity
			total += subtotal
			items = append(items, models.OrderItem{
				ProductID:     product.ID,
				FarmerID:      product.FarmerID,
				ProductName:   product.ProductName,
				Quantity:      line.Quantity,
				PricePaisa:    product.PricePaisa,
				SubtotalPaisa: subtotal,
				Status:        enums.OrderItemStatusPending,
			})
		}

		number, err := newOrderNumber(time.Now().UTC())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order number")
		}

		order = &models.Order{
			BuyerID:         buyerID,
			OrderNumber:     number,
			ShippingAddress: strings.TrimSpace(req.ShippingAddress),
			City:            strings.TrimSpace(req.City),
			State:           strings.TrimSpace(req.State),
			PinCode:         strings.TrimSpace(req.PinCode),
			PaymentMethod:   req.PaymentMethod,
			PaymentStatus:   enums.PaymentStatusPending,
			Status:          enums.OrderStatusPending,
			TotalPaisa:      total,
			Items:           items,
		}
		if err := repo.CreateOrder(ctx, order); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) notifyFarmers(ctx context.Context, order *models.Order) {
	notified := map[uuid.UUID]struct{}{}
	for _, item := range order.Items {
		if _, done := notified[item.FarmerID]; done {
			continue
		}
		notified[item.FarmerID] = struct{}{}
		s.notifier.Publish(ctx, notifications.Event{
			Type:            enums.NotificationOrderPlaced,
			RecipientUserID: item.FarmerID,
			Title:           "New order received",
			Body:            fmt.Sprintf("Order %s includes your produce", order.OrderNumber),
		})
	}
}

func (s *service) ListMine(ctx context.Context, input ListInput) (*ListResult, error) {
	rows, nextCursor, err := s.repo.ListOrdersByBuyer(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return &ListResult{Items: fromModels(rows), NextCursor: nextCursor}, nil
}

func (s *service) Get(ctx context.Context, buyerID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.BuyerID != buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to buyer")
	}
	return FromModel(order), nil
}

func (s *service) ListFarmerItems(ctx context.Context, input ItemListInput) (*ItemListResult, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	rows, nextCursor, err := s.repo.ListItemsByFarmer(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order items")
	}
	return &ItemListResult{Items: itemsFromModels(rows), NextCursor: nextCursor}, nil
}

func (s *service) DecideItem(ctx context.Context, farmerID, itemID uuid.UUID, req DecisionRequest) (*OrderItemDTO, error) {
	if req.Status != enums.OrderItemStatusAccepted && req.Status != enums.OrderItemStatusDeclined {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be accepted or declined")
	}

	item, err := s.repo.FindItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order item")
	}
	if item.FarmerID != farmerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order item does not belong to farmer")
	}
	if item.Status == req.Status {
		return ItemFromModel(item), nil
	}
	if !item.Status.CanTransitionTo(req.Status) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move item from %s to %s", item.Status, req.Status))
	}

	rows, err := s.repo.UpdateItemStatusFrom(ctx, itemID, item.Status, req.Status, req.Notes)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item status")
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "item was updated concurrently")
	}

	item.Status = req.Status
	if req.Notes != nil {
		item.FarmerNotes = req.Notes
	}

	if order, err := s.repo.FindOrder(ctx, item.OrderID); err == nil {
		s.notifier.Publish(ctx, notifications.Event{
			Type:            enums.NotificationItemDecided,
			RecipientUserID: order.BuyerID,
			Title:           fmt.Sprintf("Order item %s", req.Status),
			Body:            fmt.Sprintf("%s in order %s was %s by the farmer", item.ProductName, order.OrderNumber, req.Status),
		})
	}

	return ItemFromModel(item), nil
}

// newOrderNumber builds FB-YYYYMMDD-XXXXXX with a random six-digit suffix.
func newOrderNumber(now time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%06d", orderNumberPrefix, now.Format("20060102"), n.Int64()), nil
}
