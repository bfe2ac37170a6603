package deliveries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fasalbajar/fasalbajar-backend/internal/notifications"
	"github.com/fasalbajar/fasalbajar-backend/pkg/db/models"
	"github.com/fasalbajar/fasalbajar-backend/pkg/enums"
	pkgerrors "github.com/fasalbajar/fasalbajar-backend/pkg/errors"
	"github.com/fasalbajar/fasalbajar-backend/pkg/pagination"
)

// supplierStatuses are the states a supplier may move a claimed item into.
var supplierStatuses = map[enums.OrderItemStatus]struct{}{
	enums.OrderItemStatusPickupInProgress: {},
	enums.OrderItemStatusPickedUp:         {},
	enums.OrderItemStatusInTransit:        {},
	enums.OrderItemStatusDelivered:        {},
	enums.OrderItemStatusFailed:           {},
	enums.OrderItemStatusCancelled:        {},
}

type deliveryRepository interface {
	ListAvailable(ctx context.Context, serviceArea string, p pagination.Params) ([]DeliveryRow, string, error)
	ListBySupplier(ctx context.Context, supplierID uuid.UUID, active bool, p pagination.Params) ([]DeliveryRow, string, error)
	FindItem(ctx context.Context, id uuid.UUID) (*models.OrderItem, error)
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ClaimItem(ctx context.Context, itemID, supplierID uuid.UUID, at time.Time) (int64, error)
	AdvanceItem(ctx context.Context, itemID, supplierID uuid.UUID, from, to enums.OrderItemStatus, updates map[string]any) (int64, error)
}

type supplierProfileReader interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.SupplierDetail, error)
}

type notifier interface {
	Publish(ctx context.Context, event notifications.Event)
}

// Service defines the supplier delivery workflow.
type Service interface {
	ListAvailable(ctx context.Context, input ListInput) (*ListResult, error)
	Accept(ctx context.Context, supplierID uuid.UUID, req AcceptRequest) (*DeliveryDTO, error)
	UpdateStatus(ctx context.Context, supplierID, itemID uuid.UUID, req StatusUpdateRequest) (*DeliveryDTO, error)
	ListActive(ctx context.Context, input ListInput) (*ListResult, error)
	ListHistory(ctx context.Context, input ListInput) (*ListResult, error)
}

type service struct {
	repo     deliveryRepository
	profiles supplierProfileReader
	notifier notifier
}

// NewService builds a delivery service with the required dependencies.
func NewService(repo deliveryRepository, profiles supplierProfileReader, notifier notifier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("deliveries repository required")
	}
	if profiles == nil {
		return nil, fmt.Errorf("supplier profile reader required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &service{repo: repo, profiles: profiles, notifier: notifier}, nil
}

func (s *service) ListAvailable(ctx context.Context, input ListInput) (*ListResult, error) {
	profile, err := s.loadProfile(ctx, input.SupplierID)
	if err != nil {
		return nil, err
	}

	rows, nextCursor, err := s.repo.ListAvailable(ctx, profile.ServiceArea, input.Pagination)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list available deliveries")
	}
	return &ListResult{Items: fromRows(rows), NextCursor: nextCursor}, nil
}

func (s *service) Accept(ctx context.Context, supplierID uuid.UUID, req AcceptRequest) (*DeliveryDTO, error) {
	if req.OrderItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order_item_id is required")
	}
	if _, err := s.loadProfile(ctx, supplierID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rows, err := s.repo.ClaimItem(ctx, req.OrderItemID, supplierID, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim delivery")
	}
	if rows == 0 {
		item, err := s.repo.FindItem(ctx, req.OrderItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order item")
		}
		if item.SupplierID != nil {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "delivery already assigned")
		}
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order item is not available for delivery")
	}

	item, err := s.repo.FindItem(ctx, req.OrderItemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order item")
	}

	s.notifyDelivery(ctx, item, "Delivery assigned",
		fmt.Sprintf("A supplier accepted the delivery of %s", item.ProductName))
	return s.toDTO(ctx, item)
}

func (s *service) UpdateStatus(ctx context.Context, supplierID, itemID uuid.UUID, req StatusUpdateRequest) (*DeliveryDTO, error) {
	if _, ok := supplierStatuses[req.Status]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery status")
	}

	item, err := s.repo.FindItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery")
	}
	if item.SupplierID == nil || *item.SupplierID != supplierID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "delivery does not belong to supplier")
	}
	if !item.Status.CanTransitionTo(req.Status) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move delivery from %s to %s", item.Status, req.Status))
	}

	updates := map[string]any{}
	if req.DeliveryNotes != nil {
		updates["delivery_notes"] = *req.DeliveryNotes
	}
	if req.ProofOfDelivery != nil {
		updates["proof_of_delivery"] = *req.ProofOfDelivery
	}
	now := time.Now().UTC()
	if req.Status.IsTerminal() {
		updates["completed_at"] = now
	}

	rows, err := s.repo.AdvanceItem(ctx, itemID, supplierID, item.Status, req.Status, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update delivery status")
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "delivery was updated concurrently")
	}

	item.Status = req.Status
	if req.DeliveryNotes != nil {
		item.DeliveryNotes = req.DeliveryNotes
	}
	if req.ProofOfDelivery != nil {
		item.ProofOfDelivery = req.ProofOfDelivery
	}
	if req.Status.IsTerminal() {
		item.CompletedAt = &now
	}

	s.notifyDelivery(ctx, item, "Delivery update",
		fmt.Sprintf("%s is now %s", item.ProductName, req.Status))
	if req.Status == enums.OrderItemStatusDelivered {
		s.notifier.Publish(ctx, notifications.Event{
			Type:            enums.NotificationDeliveryUpdated,
			RecipientUserID: item.FarmerID,
			Title:           "Produce delivered",
			Body:            fmt.Sprintf("%s reached the buyer", item.ProductName),
		})
	}

	return s.toDTO(ctx, item)
}

func (s *service) ListActive(ctx context.Context, input ListInput) (*ListResult, error) {
	rows, nextCursor, err := s.repo.ListBySupplier(ctx, input.SupplierID, true, input.Pagination)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list active deliveries")
	}
	return &ListResult{Items: fromRows(rows), NextCursor: nextCursor}, nil
}

func (s *service) ListHistory(ctx context.Context, input ListInput) (*ListResult, error) {
	rows, nextCursor, err := s.repo.ListBySupplier(ctx, input.SupplierID, false, input.Pagination)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list delivery history")
	}
	return &ListResult{Items: fromRows(rows), NextCursor: nextCursor}, nil
}

func (s *service) loadProfile(ctx context.Context, supplierID uuid.UUID) (*models.SupplierDetail, error) {
	profile, err := s.profiles.FindByUserID(ctx, supplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "supplier profile required")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier profile")
	}
	return profile, nil
}

func (s *service) notifyDelivery(ctx context.Context, item *models.OrderItem, title, body string) {
	order, err := s.repo.FindOrder(ctx, item.OrderID)
	if err != nil {
		return
	}
	s.notifier.Publish(ctx, notifications.Event{
		Type:            enums.NotificationDeliveryUpdated,
		RecipientUserID: order.BuyerID,
		Title:           title,
		Body:            body,
	})
}

func (s *service) toDTO(ctx context.Context, item *models.OrderItem) (*DeliveryDTO, error) {
	order, err := s.repo.FindOrder(ctx, item.OrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load parent order")
	}
	return fromRow(&DeliveryRow{
		OrderItem:       *item,
		OrderNumber:     order.OrderNumber,
		ShippingAddress: order.ShippingAddress,
		City:            order.City,
		State:           order.State,
		PinCode:         order.PinCode,
	}), nil
}
