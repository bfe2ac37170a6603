package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fasalbajar/fasalbajar-backend/internal/notifications"
	"github.com/fasalbajar/fasalbajar-backend/pkg/db/models"
	"github.com/fasalbajar/fasalbajar-backend/pkg/enums"
	pkgerrors "github.com/fasalbajar/fasalbajar-backend/pkg/errors"
	"github.com/fasalbajar/fasalbajar-backend/pkg/esewa"
)

const supersededReason = "superseded by a newer payment attempt"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type notifier interface {
	Publish(ctx context.Context, event notifications.Event)
}

// gateway is the slice of the eSewa client the service needs.
type gateway interface {
	NewTransactionUUID() uuid.UUID
	BuildPaymentPayload(ctx context.Context, transactionUUID uuid.UUID, amountPaisa int) (*esewa.PaymentPayload, error)
	CheckStatus(ctx context.Context, transactionUUID uuid.UUID, amountPaisa int) (*esewa.StatusResult, error)
}

// Service drives online payment initiation and reconciliation.
type Service interface {
	Initiate(ctx context.Context, buyerID uuid.UUID, req InitiateRequest) (*InitiateResponse, error)
	CheckStatus(ctx context.Context, buyerID, productID uuid.UUID) (*TransactionDTO, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	gateway  gateway
	notifier notifier
}

// NewService builds a payment service with the required dependencies.
func NewService(repo Repository, tx txRunner, gw gateway, notifier notifier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if gw == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &service{repo: repo, tx: tx, gateway: gw, notifier: notifier}, nil
}

func (s *service) Initiate(ctx context.Context, buyerID uuid.UUID, req InitiateRequest) (*InitiateResponse, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if req.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order_id is required")
	}

	order, err := s.repo.FindOrder(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.BuyerID != buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to buyer")
	}
	if order.PaymentMethod != enums.PaymentMethodOnline {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order is not payable online")
	}
	if order.Status == enums.OrderStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is cancelled")
	}
	if order.PaymentStatus == enums.PaymentStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already paid")
	}

	amount, err := payableAmount(order.Items)
	if err != nil {
		return nil, err
	}

	txn := &models.PaymentTransaction{
		ID:          uuid.New(),
		OrderID:     order.ID,
		BuyerID:     buyerID,
		ProductID:   s.gateway.NewTransactionUUID(),
		AmountPaisa: amount,
		Status:      enums.PaymentStatusPending,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.SupersedePending(ctx, order.ID, supersededReason); err != nil {
			return err
		}
		return repo.CreateTransaction(ctx, txn)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment attempt")
	}

	payload, err := s.gateway.BuildPaymentPayload(ctx, txn.ProductID, amount)
	if err != nil {
		_, _ = s.repo.MarkFailed(ctx, txn.ID, "gateway payload rejected")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build payment payload")
	}

	return &InitiateResponse{Transaction: *FromModel(txn), Payload: payload}, nil
}

func (s *service) CheckStatus(ctx context.Context, buyerID, productID uuid.UUID) (*TransactionDTO, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id is required")
	}

	txn, err := s.repo.FindByProductID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment transaction")
	}
	if txn.BuyerID != buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "transaction does not belong to buyer")
	}
	if txn.Status.IsTerminal() {
		return FromModel(txn), nil
	}

	result, err := s.gateway.CheckStatus(ctx, txn.ProductID, txn.AmountPaisa)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query payment gateway")
	}

	switch result.Status {
	case esewa.StatusComplete:
		return s.settle(ctx, txn)
	case esewa.StatusPending:
		return FromModel(txn), nil
	default:
		reason := string(result.Status)
		if _, err := s.repo.MarkFailed(ctx, txn.ID, reason); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment failure")
		}
		txn.Status = enums.PaymentStatusFailed
		txn.FailureReason = &reason
		return FromModel(txn), nil
	}
}

// settle marks the transaction and the order paid in one transaction, then
// notifies the buyer and the farmers whose items are now confirmed.
func (s *service) settle(ctx context.Context, txn *models.PaymentTransaction) (*TransactionDTO, error) {
	var settled bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		rows, err := repo.MarkCompleted(ctx, txn.ID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return nil
		}
		settled = true
		return repo.SetOrderPaid(ctx, txn.OrderID)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settle payment")
	}

	txn.Status = enums.PaymentStatusCompleted
	txn.FailureReason = nil
	if settled {
		s.notifySettled(ctx, txn)
	}
	return FromModel(txn), nil
}

func (s *service) notifySettled(ctx context.Context, txn *models.PaymentTransaction) {
	s.notifier.Publish(ctx, notifications.Event{
		Type:            enums.NotificationPaymentSettled,
		RecipientUserID: txn.BuyerID,
		Title:           "Payment received",
		Body:            "Your payment was confirmed and the order is now being processed",
	})

	order, err := s.repo.FindOrder(ctx, txn.OrderID)
	if err != nil {
		return
	}
	seen := map[uuid.UUID]struct{}{}
	for _, item := range order.Items {
		if item.Status == enums.OrderItemStatusDeclined {
			continue
		}
		if _, ok := seen[item.FarmerID]; ok {
			continue
		}
		seen[item.FarmerID] = struct{}{}
		s.notifier.Publish(ctx, notifications.Event{
			Type:            enums.NotificationPaymentSettled,
			RecipientUserID: item.FarmerID,
			Title:           "Order paid",
			Body:            fmt.Sprintf("Order %s was paid and is ready to fulfil", order.OrderNumber),
		})
	}
}

// payableAmount sums the lines the buyer still owes for. Declined lines drop
// out; at least one farmer must have accepted before payment opens.
func payableAmount(items []models.OrderItem) (int, error) {
	var total int
	var accepted int
	for _, item := range items {
		switch item.Status {
		case enums.OrderItemStatusDeclined, enums.OrderItemStatusCancelled, enums.OrderItemStatusFailed:
			continue
		case enums.OrderItemStatusPending:
			total += item.SubtotalPaisa
		default:
			total += item.SubtotalPaisa
			accepted++
		}
	}
	if accepted == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeStateConflict, "no accepted items to pay for")
	}
	if total <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeStateConflict, "nothing left to pay")
	}
	return total, nil
}
